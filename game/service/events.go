package service

import (
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/metrics"
)

// EventSink receives every engine event of every session. It runs on the
// session loop, so it must not block.
type EventSink func(sessionID string, ev engine.Event, state *engine.GameState)

// Notifier pushes session events to connected clients
type Notifier interface {
	Notify(sessionID string, ev engine.Event, state *engine.GameState)
}

// NewEventSink records metrics for each event and forwards it to the
// notifiers. Nil notifiers are skipped.
func NewEventSink(notifiers ...Notifier) EventSink {
	return func(sessionID string, ev engine.Event, state *engine.GameState) {
		configName := ""
		if state != nil {
			configName = state.ConfigName
		}

		switch ev.Type {
		case engine.EventNewGame, engine.EventRestart:
			metrics.GamesStarted.WithLabelValues(configName).Inc()
		case engine.EventFlipBack:
			metrics.FlipBacks.Inc()
		case engine.EventWon:
			metrics.GamesWon.WithLabelValues(configName).Inc()
			if state != nil && state.ClockEnabled {
				metrics.WinSeconds.Observe(float64(ev.ElapsedSeconds))
			}
			log.Info().
				Str("session", sessionID).
				Int("score", ev.Score).
				Int("elapsed", ev.ElapsedSeconds).
				Msg("Game won")
		}

		for _, n := range notifiers {
			if n != nil {
				n.Notify(sessionID, ev, state)
			}
		}
	}
}
