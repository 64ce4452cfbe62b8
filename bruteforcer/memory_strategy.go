package main

import "sort"

// MemoryStrategy remembers every value it has seen and only guesses when it
// has no known pair to complete.
type MemoryStrategy struct {
	seen map[int]int // position -> value
}

func NewMemoryStrategy() *MemoryStrategy {
	return &MemoryStrategy{seen: make(map[int]int)}
}

// Reset forgets everything; the board is reshuffled on restart
func (s *MemoryStrategy) Reset() {
	s.seen = make(map[int]int)
}

// Observe records values revealed by a click
func (s *MemoryStrategy) Observe(changes []TileChange) {
	for _, ch := range changes {
		if ch.Matched {
			delete(s.seen, ch.Position)
			continue
		}
		if ch.Value != 0 {
			s.seen[ch.Position] = ch.Value
		}
	}
}

// NextClick picks the next position, or -1 when nothing can be clicked
func (s *MemoryStrategy) NextClick(state *GameState) int {
	if state.Phase == "one_selected" && state.Selected >= 0 && state.Selected < len(state.Tiles) {
		want := state.Tiles[state.Selected].Value
		for _, pos := range s.known() {
			if s.seen[pos] == want && pos != state.Selected {
				return pos
			}
		}
		return s.firstUnseen(state)
	}

	byValue := make(map[int]int)
	for _, pos := range s.known() {
		v := s.seen[pos]
		if other, ok := byValue[v]; ok {
			return other
		}
		byValue[v] = pos
	}
	return s.firstUnseen(state)
}

func (s *MemoryStrategy) known() []int {
	positions := make([]int, 0, len(s.seen))
	for pos := range s.seen {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// firstUnseen scans in board order so runs are reproducible
func (s *MemoryStrategy) firstUnseen(state *GameState) int {
	fallback := -1
	for _, t := range state.Tiles {
		if t.Matched || t.FaceUp {
			continue
		}
		if _, ok := s.seen[t.Position]; !ok {
			return t.Position
		}
		if fallback < 0 {
			fallback = t.Position
		}
	}
	return fallback
}
