package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/metrics"
)

// gameServiceImpl implements the GameService interface. Engine access goes
// through each session's loop, so the service itself holds no lock.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return engine.PresetTimed
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				if ids := s.availableConfigIDs(); len(ids) > 0 {
					return nil, fmt.Errorf("config '%s' not found, available configs %v: %w", configName, ids, ErrConfigNotFound)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info().Str("session", session.ID).Str("config", configID).Msg("Session created")

	info, err := s.sessionInfo(ctx, session)
	if err != nil {
		return nil, err
	}
	info.ConfigName = configID
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(ctx, session)
}

// ListSessions returns all active sessions ordered by creation time
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		info, err := s.sessionInfo(ctx, sess)
		if err != nil {
			// Deleted between List and now
			continue
		}
		result = append(result, info)
	}

	return result, nil
}

// DeleteSession removes a session and stops its loop
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Info().Str("session", sessionID).Msg("Session deleted")
	return nil
}

// Click activates the tile at position
func (s *gameServiceImpl) Click(ctx context.Context, sessionID string, position int) (*ClickResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	resp := &ClickResponse{Position: position}
	err = sess.Do(ctx, func(eng engine.Engine) {
		resp.ClickResult = eng.Click(position)
		resp.GameState = eng.GetState()
	})
	if err != nil {
		return nil, fmt.Errorf("click on session %s: %w", sessionID, err)
	}
	resp.Message = resp.GameState.Message
	if resp.Outcome == engine.OutcomeIgnored {
		resp.Message = resp.Reason
	}

	metrics.Clicks.WithLabelValues(string(resp.Outcome)).Inc()
	log.Debug().
		Str("session", sessionID).
		Int("position", position).
		Str("outcome", string(resp.Outcome)).
		Str("reason", resp.Reason).
		Int("score", resp.Score).
		Msg("Click")

	return resp, nil
}

// Restart starts a fresh game in the session
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var state *engine.GameState
	err = sess.Do(ctx, func(eng engine.Engine) {
		eng.Restart()
		state = eng.GetState()
	})
	if err != nil {
		return nil, fmt.Errorf("restart session %s: %w", sessionID, err)
	}

	log.Info().Str("session", sessionID).Msg("Game restarted")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var state *engine.GameState
	if err := sess.Do(ctx, func(eng engine.Engine) { state = eng.GetState() }); err != nil {
		return nil, fmt.Errorf("read state of session %s: %w", sessionID, err)
	}
	return state, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(ctx context.Context, sess *Session) (*SessionInfo, error) {
	var state *engine.GameState
	if err := sess.Do(ctx, func(eng engine.Engine) { state = eng.GetState() }); err != nil {
		return nil, fmt.Errorf("read state of session %s: %w", sess.ID, err)
	}

	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		GameState:      state,
		GameConfig:     sess.Config,
	}, nil
}

func (s *gameServiceImpl) availableConfigIDs() []string {
	configs, err := s.configs.ListConfigs()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(configs))
	for _, cfg := range configs {
		ids = append(ids, cfg.ConfigID)
	}
	return ids
}
