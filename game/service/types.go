package service

import (
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ClickResponse contains the result of a click and the state after it
type ClickResponse struct {
	engine.ClickResult
	Position  int               `json:"position"`
	Message   string            `json:"message"`
	GameState *engine.GameState `json:"game_state"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename        string `json:"filename"`
	ConfigID        string `json:"config_id"` // The identifier to use for session creation
	Name            string `json:"name"`
	Description     string `json:"description"`
	MatchBonus      int    `json:"match_bonus"`
	MismatchPenalty int    `json:"mismatch_penalty"`
	FlipBackDelayMs int    `json:"flip_back_delay_ms"`
	EnableClock     bool   `json:"enable_clock"`
}

// NewConfigInfo summarizes a config under the given identifier
func NewConfigInfo(id, filename string, config *engine.GameConfig) *ConfigInfo {
	return &ConfigInfo{
		Filename:        filename,
		ConfigID:        id,
		Name:            config.Name,
		Description:     config.Description,
		MatchBonus:      config.MatchBonus,
		MismatchPenalty: config.MismatchPenalty,
		FlipBackDelayMs: config.FlipBackDelayMs,
		EnableClock:     config.EnableClock,
	}
}
