// Package metrics holds the Prometheus collectors for the game server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Clicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memorygame_clicks_total",
			Help: "Tile clicks handled, by outcome",
		},
		[]string{"outcome"},
	)
	FlipBacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memorygame_flip_backs_total",
			Help: "Mismatched pairs hidden again after the flip-back delay",
		},
	)
	GamesWon = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memorygame_games_won_total",
			Help: "Games finished with every pair matched, by preset",
		},
		[]string{"config"},
	)
	GamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memorygame_games_started_total",
			Help: "New games and restarts, by preset",
		},
		[]string{"config"},
	)
	WinSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memorygame_win_elapsed_seconds",
			Help:    "Clock value at the moment a timed game is won",
			Buckets: []float64{15, 30, 45, 60, 90, 120, 180, 300},
		},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "memorygame_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)
	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "memorygame_websocket_clients",
			Help: "Connected WebSocket clients across all sessions",
		},
	)
	DroppedMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memorygame_websocket_dropped_total",
			Help: "Event messages dropped because the hub or a client was backed up",
		},
	)
)

func init() {
	prometheus.MustRegister(Clicks)
	prometheus.MustRegister(FlipBacks)
	prometheus.MustRegister(GamesWon)
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(WinSeconds)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(WebSocketClients)
	prometheus.MustRegister(DroppedMessages)
}
