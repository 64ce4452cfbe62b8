package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/loop"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Click(ctx context.Context, sessionID string, position int) (*ClickResponse, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
}

// Session represents an active game session. The engine is only touched
// from the session's loop; use Do rather than calling Engine directly.
type Session struct {
	ID        string
	Engine    engine.Engine
	Loop      *loop.Loop
	Config    *engine.GameConfig
	CreatedAt time.Time

	mu             sync.Mutex
	lastAccessedAt time.Time
}

// NewSession wraps an engine and the loop that drives it
func NewSession(id string, eng engine.Engine, l *loop.Loop, config *engine.GameConfig) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		Engine:         eng,
		Loop:           l,
		Config:         config,
		CreatedAt:      now,
		lastAccessedAt: now,
	}
}

// Do runs fn against the engine on the session loop. Sessions without a
// loop run fn inline.
func (s *Session) Do(ctx context.Context, fn func(eng engine.Engine)) error {
	if s.Loop == nil {
		fn(s.Engine)
		return nil
	}
	return s.Loop.Do(ctx, func() { fn(s.Engine) })
}

// Touch records an access
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastAccessedAt = time.Now()
	s.mu.Unlock()
}

// SetLastAccessedAt overrides the access time, mostly for expiry tests
func (s *Session) SetLastAccessedAt(t time.Time) {
	s.mu.Lock()
	s.lastAccessedAt = t
	s.mu.Unlock()
}

// LastAccessedAt returns the time of the most recent access
func (s *Session) LastAccessedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessedAt
}

// Close stops the session loop, cancelling every pending timer callback
func (s *Session) Close() {
	if s.Loop != nil {
		s.Loop.Stop()
	}
}
