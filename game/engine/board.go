package engine

import (
	"fmt"
	"math/rand"
)

// NewBoard returns PairCount values, each twice, in a uniformly random order
func NewBoard(r *rand.Rand) Board {
	board := make(Board, 0, TileCount)
	for v := 1; v <= PairCount; v++ {
		board = append(board, Tile{Value: v}, Tile{Value: v})
	}

	// Fisher-Yates
	for i := len(board) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		board[i], board[j] = board[j], board[i]
	}
	return board
}

// NewBoardFromValues builds an unshuffled board, checking the pair invariant
func NewBoardFromValues(values []int) (Board, error) {
	if len(values) != TileCount {
		return nil, fmt.Errorf("board must have %d tiles, got %d", TileCount, len(values))
	}

	counts := make(map[int]int, PairCount)
	board := make(Board, len(values))
	for i, v := range values {
		if v < 1 || v > PairCount {
			return nil, fmt.Errorf("tile %d: value %d outside 1..%d", i, v, PairCount)
		}
		counts[v]++
		board[i] = Tile{Value: v}
	}
	for v, n := range counts {
		if n != 2 {
			return nil, fmt.Errorf("value %d appears %d times, want 2", v, n)
		}
	}
	return board, nil
}

// Values returns the pair values in position order
func (b Board) Values() []int {
	values := make([]int, len(b))
	for i, t := range b {
		values[i] = t.Value
	}
	return values
}

// PositionToCell converts a board index to row/col
func PositionToCell(pos int) (row, col int) {
	return pos / GridCols, pos % GridCols
}

// CellToPosition converts row/col to a board index, or -1 when off the grid
func CellToPosition(row, col int) int {
	if row < 0 || row >= GridRows || col < 0 || col >= GridCols {
		return -1
	}
	return row*GridCols + col
}
