package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/loop"
	"github.com/wricardo/mcp-training/memorygame/game/metrics"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const maxIDAttempts = 16

// Option configures a Manager
type Option func(*Manager)

// WithEventSink sets where engine events of every session are published
func WithEventSink(sink service.EventSink) Option {
	return func(m *Manager) {
		m.sink = sink
	}
}

// WithEngineOptions passes extra options to every engine the manager creates
func WithEngineOptions(opts ...engine.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// Manager handles game session lifecycle
type Manager struct {
	sessions   map[string]*service.Session
	sink       service.EventSink
	engineOpts []engine.Option
	mu         sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session with the given ID and configuration. An empty
// ID gets a random 4-character one.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
	}
	if strings.TrimSpace(id) != id {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		for i := 0; i < maxIDAttempts; i++ {
			candidate := m.generateSessionID()
			if !m.sessionExists(candidate) {
				id = candidate
				break
			}
		}
		if id == "" {
			return nil, fmt.Errorf("could not allocate a session ID after %d attempts", maxIDAttempts)
		}
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	l := loop.New(id)
	l.Start()

	eng, err := m.startEngine(id, config, l)
	if err != nil {
		l.Stop()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	session := service.NewSession(id, eng, l, config)
	m.sessions[strings.ToLower(id)] = session
	metrics.ActiveSessions.Set(float64(len(m.sessions)))

	return session, nil
}

// startEngine builds the engine on its loop so that the first timer it arms
// already belongs to the loop goroutine.
func (m *Manager) startEngine(id string, config *engine.GameConfig, l *loop.Loop) (*engine.GameEngine, error) {
	var eng *engine.GameEngine
	var err error

	opts := append([]engine.Option{}, m.engineOpts...)
	if m.sink != nil {
		opts = append(opts, engine.WithEventHandler(func(ev engine.Event) {
			if eng == nil {
				// Still inside NewEngine; the new_game event is published below
				return
			}
			m.sink(id, ev, eng.GetState())
		}))
	}

	doErr := l.Do(context.Background(), func() {
		eng, err = engine.NewEngine(config, l, opts...)
		if err != nil || m.sink == nil {
			return
		}
		state := eng.GetState()
		m.sink(id, engine.Event{
			Type:      engine.EventNewGame,
			Message:   state.Message,
			Timestamp: state.StartedAt,
		}, state)
	})
	if doErr != nil {
		return nil, doErr
	}
	return eng, err
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session and stops its loop
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if exists {
		delete(m.sessions, lowerID)
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	session.Close()
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	session, err := m.Get(id)
	if err != nil {
		return err
	}
	session.Touch()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*service.Session
	for id, session := range m.sessions {
		if session.LastAccessedAt().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, session)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, session := range expired {
		session.Close()
		log.Info().Str("session", session.ID).Msg("Session expired")
	}

	return len(expired)
}

// RunCleanup expires idle sessions every interval until ctx is done
func (m *Manager) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CleanupExpiredSessions(maxAge); n > 0 {
				log.Info().Int("removed", n).Int("remaining", m.Count()).Msg("Expired idle sessions")
			}
		}
	}
}

// Shutdown stops every session loop and empties the registry
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*service.Session)
	metrics.ActiveSessions.Set(0)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	// Generate 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
