package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	StartNewGame()
	Restart()

	// Input
	Click(pos int) ClickResult
	OnMismatchTimerFired() ClickResult
	OnClockTick()

	// Queries
	GetState() *GameState
	GetBoard() Board
	GetPhase() Phase
	GetScore() int
	GetElapsedSeconds() int
	GetMatchedPairs() int
	IsWon() bool

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error
}

// Option customizes a GameEngine
type Option func(*GameEngine)

// WithRand sets the random source used to shuffle boards
func WithRand(r *rand.Rand) Option {
	return func(e *GameEngine) {
		e.rng = r
	}
}

// WithBoardFunc replaces board generation, e.g. with a fixed layout
func WithBoardFunc(fn func() Board) Option {
	return func(e *GameEngine) {
		e.boardFunc = fn
	}
}

// WithEventHandler registers the consumer notification callback
func WithEventHandler(fn func(Event)) Option {
	return func(e *GameEngine) {
		e.onEvent = fn
	}
}

// WithNow overrides the wall clock used for timestamps
func WithNow(now func() time.Time) Option {
	return func(e *GameEngine) {
		e.now = now
	}
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use: clicks and scheduler callbacks must arrive on one goroutine.
type GameEngine struct {
	config    *GameConfig
	sched     Scheduler
	rng       *rand.Rand
	boardFunc func() Board
	onEvent   func(Event)
	now       func() time.Time

	board        Board
	phase        Phase
	selected     int
	pending      [2]int
	matchedPairs int
	score        int
	elapsed      int
	moves        int
	mismatches   int
	message      string
	startedAt    time.Time
	finishedAt   *time.Time

	// generation is bumped on every new game; timer callbacks carry the
	// generation they were armed in and are dropped if it has moved on.
	generation   uint64
	flipTimer    Timer
	clockTimer   Timer
	clockRunning bool
}

// NewEngine creates a new game engine and starts the first game
func NewEngine(config *GameConfig, sched Scheduler, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fmt.Errorf("scheduler cannot be nil")
	}

	e := &GameEngine{
		config:   config,
		sched:    sched,
		now:      time.Now,
		selected: NoSelection,
		pending:  [2]int{NoSelection, NoSelection},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.boardFunc == nil {
		e.boardFunc = func() Board { return NewBoard(e.rng) }
	}

	e.newGame(EventNewGame)
	return e, nil
}

// StartNewGame reshuffles the board and zeroes all counters
func (e *GameEngine) StartNewGame() {
	e.newGame(EventNewGame)
}

// Restart stops the clock and any pending flip-back, then starts a new game
func (e *GameEngine) Restart() {
	e.stopTimers()
	e.newGame(EventRestart)
}

func (e *GameEngine) newGame(kind EventType) {
	// Cancel before re-arming so a timer from the old game can never run
	// against the new board.
	e.stopTimers()
	e.generation++

	e.board = e.boardFunc()
	for i := range e.board {
		e.board[i].FaceUp = false
		e.board[i].Matched = false
	}
	e.phase = PhaseIdle
	e.selected = NoSelection
	e.pending = [2]int{NoSelection, NoSelection}
	e.matchedPairs = 0
	e.score = 0
	e.elapsed = 0
	e.moves = 0
	e.mismatches = 0
	e.message = e.config.Messages.Welcome
	e.startedAt = e.now()
	e.finishedAt = nil

	e.startClock()
	e.emit(kind, nil)
}

// Click handles a tile activation at pos
func (e *GameEngine) Click(pos int) ClickResult {
	if reason := e.ignoreReason(pos); reason != "" {
		return e.result(OutcomeIgnored, reason, nil)
	}

	tile := &e.board[pos]
	tile.FaceUp = true

	if e.selected == NoSelection {
		e.selected = pos
		e.phase = PhaseOneSelected
		e.message = e.config.Messages.Selected
		changes := []TileChange{e.change(pos)}
		e.emit(EventSelected, changes)
		return e.result(OutcomeSelected, "", changes)
	}

	first := e.selected
	e.moves++

	if e.board[first].Value == tile.Value {
		e.board[first].Matched = true
		tile.Matched = true
		e.selected = NoSelection
		e.matchedPairs++
		e.score += e.config.MatchBonus
		e.phase = PhaseIdle
		e.message = e.config.Messages.Match

		changes := []TileChange{e.change(first), e.change(pos)}
		e.emit(EventMatch, changes)
		if e.matchedPairs == PairCount {
			e.win()
		}
		return e.result(OutcomeMatch, "", changes)
	}

	// Mismatch: both stay face up and the selection is held until flip-back.
	e.mismatches++
	e.phase = PhaseResolvingMismatch
	e.pending = [2]int{first, pos}
	e.message = e.config.Messages.Mismatch
	gen := e.generation
	e.flipTimer = e.sched.AfterFunc(e.config.FlipBackDelay(), func() {
		e.flipBack(gen)
	})

	changes := []TileChange{e.change(pos)}
	e.emit(EventMismatch, changes)
	return e.result(OutcomeMismatch, "", changes)
}

// OnMismatchTimerFired hides the pending pair now. The scheduled flip-back
// calls the same path, so consumers only need this when driving time themselves.
func (e *GameEngine) OnMismatchTimerFired() ClickResult {
	if e.flipTimer != nil {
		e.flipTimer.Stop()
	}
	return e.flipBack(e.generation)
}

func (e *GameEngine) flipBack(gen uint64) ClickResult {
	if gen != e.generation || e.phase != PhaseResolvingMismatch {
		return e.result(OutcomeIgnored, ReasonNoMismatch, nil)
	}

	changes := make([]TileChange, 0, 2)
	for _, pos := range e.pending {
		e.board[pos].FaceUp = false
		changes = append(changes, e.change(pos))
	}
	e.pending = [2]int{NoSelection, NoSelection}
	e.selected = NoSelection
	e.score -= e.config.MismatchPenalty
	e.phase = PhaseIdle
	e.flipTimer = nil
	e.message = e.config.Messages.FlipBack

	e.emit(EventFlipBack, changes)
	return e.result(OutcomeFlipBack, "", changes)
}

// OnClockTick adds one second to the elapsed time while the clock runs
func (e *GameEngine) OnClockTick() {
	if !e.clockRunning || e.phase == PhaseWon {
		return
	}
	e.elapsed++
	e.emit(EventTick, nil)
}

func (e *GameEngine) startClock() {
	if !e.config.EnableClock {
		return
	}
	e.clockRunning = true
	e.armClock(e.generation)
}

func (e *GameEngine) armClock(gen uint64) {
	e.clockTimer = e.sched.AfterFunc(ClockInterval, func() {
		if gen != e.generation || !e.clockRunning {
			return
		}
		e.OnClockTick()
		if e.clockRunning {
			e.armClock(gen)
		}
	})
}

func (e *GameEngine) stopClock() {
	e.clockRunning = false
	if e.clockTimer != nil {
		e.clockTimer.Stop()
		e.clockTimer = nil
	}
}

func (e *GameEngine) stopTimers() {
	e.stopClock()
	if e.flipTimer != nil {
		e.flipTimer.Stop()
		e.flipTimer = nil
	}
}

func (e *GameEngine) win() {
	e.phase = PhaseWon
	e.stopClock()
	finished := e.now()
	e.finishedAt = &finished
	e.message = e.victoryMessage()
	e.emit(EventWon, nil)
}

func (e *GameEngine) victoryMessage() string {
	msg := fmt.Sprintf(e.config.Messages.Victory, e.score)
	if e.config.EnableClock {
		msg += fmt.Sprintf(" Time: %ds", e.elapsed)
	}
	return msg
}

// ignoreReason returns why a click at pos must be dropped, or ""
func (e *GameEngine) ignoreReason(pos int) string {
	switch {
	case pos < 0 || pos >= len(e.board):
		return ReasonOutOfRange
	case e.phase == PhaseWon:
		return ReasonGameWon
	case e.phase == PhaseResolvingMismatch:
		return ReasonResolving
	case e.board[pos].Matched:
		return ReasonMatched
	case pos == e.selected:
		return ReasonSelected
	}
	return ""
}

func (e *GameEngine) change(pos int) TileChange {
	t := e.board[pos]
	c := TileChange{Position: pos, FaceUp: t.FaceUp, Matched: t.Matched}
	if t.FaceUp {
		c.Value = t.Value
	}
	return c
}

func (e *GameEngine) result(outcome Outcome, reason string, changes []TileChange) ClickResult {
	return ClickResult{
		Outcome: outcome,
		Reason:  reason,
		Changes: changes,
		Score:   e.score,
		Phase:   e.phase,
		Won:     e.phase == PhaseWon,
	}
}

func (e *GameEngine) emit(kind EventType, changes []TileChange) {
	if e.onEvent == nil {
		return
	}
	e.onEvent(Event{
		Type:           kind,
		Changes:        changes,
		Score:          e.score,
		ElapsedSeconds: e.elapsed,
		MatchedPairs:   e.matchedPairs,
		Message:        e.message,
		Timestamp:      e.now(),
	})
}

// GetState returns a snapshot of the current game
func (e *GameEngine) GetState() *GameState {
	tiles := make([]TileView, len(e.board))
	for i, t := range e.board {
		row, col := PositionToCell(i)
		tiles[i] = TileView{Position: i, Row: row, Col: col, FaceUp: t.FaceUp, Matched: t.Matched}
		if t.FaceUp {
			tiles[i].Value = t.Value
		}
	}

	state := &GameState{
		Tiles:          tiles,
		Phase:          e.phase,
		Selected:       e.selected,
		MatchedPairs:   e.matchedPairs,
		TotalPairs:     PairCount,
		Score:          e.score,
		ElapsedSeconds: e.elapsed,
		ClockEnabled:   e.config.EnableClock,
		Moves:          e.moves,
		Mismatches:     e.mismatches,
		Won:            e.phase == PhaseWon,
		Message:        e.message,
		ConfigName:     e.config.Name,
		StartedAt:      e.startedAt,
		FinishedAt:     e.finishedAt,
	}
	if e.phase == PhaseResolvingMismatch {
		state.Pending = []int{e.pending[0], e.pending[1]}
	}
	return state
}

// GetBoard returns a copy of the board, including face-down values
func (e *GameEngine) GetBoard() Board {
	board := make(Board, len(e.board))
	copy(board, e.board)
	return board
}

// GetPhase returns the current state machine phase
func (e *GameEngine) GetPhase() Phase {
	return e.phase
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.score
}

// GetElapsedSeconds returns the clock value
func (e *GameEngine) GetElapsedSeconds() int {
	return e.elapsed
}

// GetMatchedPairs returns the number of resolved pairs
func (e *GameEngine) GetMatchedPairs() int {
	return e.matchedPairs
}

// IsWon returns whether every pair has been found
func (e *GameEngine) IsWon() bool {
	return e.phase == PhaseWon
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.stopTimers()
	e.config = config
	e.newGame(EventNewGame)
	return nil
}
