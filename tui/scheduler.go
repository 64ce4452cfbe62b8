package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// timerFiredMsg is delivered by tea.Tick when a scheduled callback is due
type timerFiredMsg struct {
	id uint64
}

// teaScheduler runs engine timers on the bubbletea update loop. AfterFunc
// only records the callback; the model turns queued timers into tea.Tick
// commands and runs the callback when the tick message comes back.
type teaScheduler struct {
	nextID  uint64
	pending map[uint64]func()
	queued  []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{pending: make(map[uint64]func())}
}

type teaTimer struct {
	s  *teaScheduler
	id uint64
}

func (t teaTimer) Stop() bool {
	if _, ok := t.s.pending[t.id]; !ok {
		return false
	}
	delete(t.s.pending, t.id)
	return true
}

// AfterFunc implements engine.Scheduler
func (s *teaScheduler) AfterFunc(d time.Duration, f func()) engine.Timer {
	s.nextID++
	id := s.nextID
	s.pending[id] = f
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{id: id}
	}))
	return teaTimer{s: s, id: id}
}

// fire runs the callback for id unless it was stopped
func (s *teaScheduler) fire(id uint64) {
	f, ok := s.pending[id]
	if !ok {
		return
	}
	delete(s.pending, id)
	f()
}

// drain returns the tick commands queued since the last call
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.queued) == 0 {
		return nil
	}
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

var _ engine.Scheduler = (*teaScheduler)(nil)
