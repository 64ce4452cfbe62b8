// Package loop serializes access to a game engine. Each session owns one
// Loop; HTTP handlers, WebSocket clients and timers all hand their work to
// it, so the engine only ever runs on the loop goroutine.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ErrStopped is returned when work is handed to a loop that has shut down
var ErrStopped = errors.New("loop stopped")

const defaultQueueSize = 64

// Loop runs queued functions one at a time on a single goroutine
type Loop struct {
	name  string
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a loop. Call Start before posting work.
func New(name string) *Loop {
	return &Loop{
		name:  name,
		tasks: make(chan func(), defaultQueueSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start runs the loop in its own goroutine
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			l.exec(fn)
		case <-l.quit:
			return
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("loop", l.name).Interface("panic", r).Msg("Recovered panic in loop task")
		}
	}()
	fn()
}

// Stop shuts the loop down and waits for the running task to finish.
// Queued tasks that have not started are dropped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
	l.startOnce.Do(func() {
		// never started; nothing to wait for
		close(l.done)
	})
	<-l.done
}

// Stopped reports whether Stop has been called
func (l *Loop) Stopped() bool {
	select {
	case <-l.quit:
		return true
	default:
		return false
	}
}

// Post queues fn without waiting for it to run
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.quit:
		return ErrStopped
	default:
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.quit:
		return ErrStopped
	}
}

// Do runs fn on the loop and waits for it to finish. If ctx ends after fn
// was queued, fn may still run later.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case <-l.quit:
		return ErrStopped
	default:
	}

	select {
	case l.tasks <- task:
	case <-l.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// Run may have exited between our send and the task starting
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loopTimer wraps a wall-clock timer whose callback is delivered through the
// loop. cancelled is checked on the loop goroutine, so a Stop issued there
// wins even when the timer already fired and the callback is still queued.
type loopTimer struct {
	t         *time.Timer
	cancelled atomic.Bool
}

func (lt *loopTimer) Stop() bool {
	if lt.cancelled.Swap(true) {
		return false
	}
	return lt.t.Stop()
}

// AfterFunc implements engine.Scheduler by posting f onto the loop
func (l *Loop) AfterFunc(d time.Duration, f func()) engine.Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		err := l.Post(func() {
			if lt.cancelled.Load() {
				return
			}
			lt.cancelled.Store(true)
			f()
		})
		if err != nil {
			log.Debug().Str("loop", l.name).Msg("Dropped timer callback on stopped loop")
		}
	})
	return lt
}

var _ engine.Scheduler = (*Loop)(nil)
