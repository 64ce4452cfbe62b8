package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Preset names shipped with the game
const (
	PresetTimed   = "timed"
	PresetRelaxed = "relaxed"
)

// ValidateGameConfig validates a game configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate scoring
	if config.MatchBonus <= 0 || config.MatchBonus > MaxMatchBonus {
		return fmt.Errorf("config validation: match_bonus must be between 1 and %d, got %d", MaxMatchBonus, config.MatchBonus)
	}
	if config.MismatchPenalty < 0 || config.MismatchPenalty > MaxMismatchPenalty {
		return fmt.Errorf("config validation: mismatch_penalty must be between 0 and %d, got %d", MaxMismatchPenalty, config.MismatchPenalty)
	}

	// Validate timing
	if config.FlipBackDelayMs <= 0 || config.FlipBackDelayMs > MaxFlipBackDelayMs {
		return fmt.Errorf("config validation: flip_back_delay_ms must be between 1 and %d, got %d", MaxFlipBackDelayMs, config.FlipBackDelayMs)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for score")
	}
	if countVerbs(config.Messages.Victory) != 1 {
		return fmt.Errorf("config validation: messages.victory must contain exactly one verb")
	}

	return nil
}

// countVerbs counts format verbs, skipping the literal %%
func countVerbs(format string) int {
	count := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			i++
			continue
		}
		count++
	}
	return count
}

// ParseGameConfig decodes and validates a JSON game configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns the timed preset: +10 per match, -1 per mismatch,
// elapsed-time clock on.
func DefaultConfig() *GameConfig {
	return TimedConfig()
}

// TimedConfig is the preset with the elapsed-time clock
func TimedConfig() *GameConfig {
	config := &GameConfig{
		Name:            PresetTimed,
		Description:     "Classic 4x4 board with a running clock; mismatches cost 1 point",
		MatchBonus:      DefaultMatchBonus,
		MismatchPenalty: DefaultMismatchPenalty,
		FlipBackDelayMs: int(DefaultFlipBackDelay.Milliseconds()),
		EnableClock:     true,
	}
	setDefaultMessages(config)
	return config
}

// RelaxedConfig is the untimed preset with the heavier penalty
func RelaxedConfig() *GameConfig {
	config := &GameConfig{
		Name:            PresetRelaxed,
		Description:     "Untimed 4x4 board; mismatches cost 2 points",
		MatchBonus:      DefaultMatchBonus,
		MismatchPenalty: 2,
		FlipBackDelayMs: int(DefaultFlipBackDelay.Milliseconds()),
		EnableClock:     false,
	}
	setDefaultMessages(config)
	return config
}

// BuiltinConfigs returns fresh copies of every shipped preset keyed by name
func BuiltinConfigs() map[string]*GameConfig {
	return map[string]*GameConfig{
		PresetTimed:   TimedConfig(),
		PresetRelaxed: RelaxedConfig(),
	}
}

func setDefaultMessages(config *GameConfig) {
	config.Messages.Welcome = "Find all 8 pairs!"
	config.Messages.Selected = "Pick a second tile"
	config.Messages.Match = "Match!"
	config.Messages.Mismatch = "No match"
	config.Messages.FlipBack = "Try again"
	config.Messages.Victory = "Congratulations! You won! Your score: %d"
}
