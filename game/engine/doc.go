// Package engine provides the core game logic for the memory match game.
//
// The engine package implements the game mechanics including:
//   - Board generation: eight pair values, each twice, shuffled onto a 4x4 grid
//   - Selection and match resolution as a small state machine
//   - The delayed flip-back of a mismatched pair
//   - The optional elapsed-time clock
//   - Win detection and scoring
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a render-safe snapshot (face-down
// values are hidden), while GameConfig holds a rule preset loaded from JSON.
//
// Usage:
//
//	sched := engine.NewManualScheduler()
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig(), sched,
//		engine.WithEventHandler(func(ev engine.Event) { render(ev) }))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res := gameEngine.Click(0)
//	res = gameEngine.Click(5)
//	if res.Outcome == engine.OutcomeMismatch {
//		sched.Advance(750 * time.Millisecond) // pair flips back
//	}
//
// Timing:
//
// The engine never starts goroutines. Flip-back and clock ticks are deferred
// through a Scheduler supplied by the consumer, which must deliver callbacks
// on the same goroutine that delivers clicks. Every new game bumps an internal
// generation so callbacks armed by an earlier game are ignored.
//
// Game Rules:
//
// Clicking a face-down tile reveals it. A second tile with the same value
// scores the match bonus and both stay up; a different value leaves both up
// until the flip-back delay passes, then hides them and applies the mismatch
// penalty. Clicks on matched tiles, on the selected tile, or while a mismatch
// is resolving are ignored. Matching all eight pairs wins the game.
package engine
