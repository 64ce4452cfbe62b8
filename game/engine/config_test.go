package engine

import (
	"fmt"
	"testing"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *GameConfig)
		wantErr bool
	}{
		{"timed preset", func(c *GameConfig) {}, false},
		{"missing name", func(c *GameConfig) { c.Name = "" }, true},
		{"missing description", func(c *GameConfig) { c.Description = "" }, true},
		{"zero bonus", func(c *GameConfig) { c.MatchBonus = 0 }, true},
		{"bonus too large", func(c *GameConfig) { c.MatchBonus = MaxMatchBonus + 1 }, true},
		{"negative penalty", func(c *GameConfig) { c.MismatchPenalty = -1 }, true},
		{"zero penalty allowed", func(c *GameConfig) { c.MismatchPenalty = 0 }, false},
		{"zero delay", func(c *GameConfig) { c.FlipBackDelayMs = 0 }, true},
		{"delay too long", func(c *GameConfig) { c.FlipBackDelayMs = MaxFlipBackDelayMs + 1 }, true},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, true},
		{"victory without score", func(c *GameConfig) { c.Messages.Victory = "You won!" }, true},
		{"victory with two verbs", func(c *GameConfig) { c.Messages.Victory = "%s scored %d" }, true},
		{"victory with literal percent", func(c *GameConfig) { c.Messages.Victory = "100%% done: %d" }, false},
		{"victory with escaped verb only", func(c *GameConfig) { c.Messages.Victory = "100%%d" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := TimedConfig()
			tt.modify(config)
			err := ValidateGameConfig(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGameConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestBuiltinConfigs(t *testing.T) {
	configs := BuiltinConfigs()
	if len(configs) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(configs))
	}
	for name, config := range configs {
		if config.Name != name {
			t.Errorf("preset keyed %q has name %q", name, config.Name)
		}
		if err := ValidateGameConfig(config); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}

	if !configs[PresetTimed].EnableClock {
		t.Error("timed preset should enable the clock")
	}
	if configs[PresetRelaxed].EnableClock {
		t.Error("relaxed preset should not enable the clock")
	}
	if configs[PresetRelaxed].MismatchPenalty != 2 {
		t.Errorf("relaxed penalty = %d, want 2", configs[PresetRelaxed].MismatchPenalty)
	}
}

func TestFlipBackDelay(t *testing.T) {
	config := TimedConfig()
	if got := config.FlipBackDelay(); got != DefaultFlipBackDelay {
		t.Errorf("FlipBackDelay() = %v, want %v", got, DefaultFlipBackDelay)
	}
	config.FlipBackDelayMs = 0
	if got := config.FlipBackDelay(); got != DefaultFlipBackDelay {
		t.Errorf("FlipBackDelay() with zero = %v, want default", got)
	}
}

func TestParseGameConfig(t *testing.T) {
	valid := `{
		"name": "quick",
		"description": "Short flip-back",
		"match_bonus": 5,
		"mismatch_penalty": 1,
		"flip_back_delay_ms": 300,
		"enable_clock": true,
		"messages": {"welcome": "Go!", "victory": "100%% done: %d"}
	}`

	t.Run("valid", func(t *testing.T) {
		config, err := ParseGameConfig([]byte(valid))
		if err != nil {
			t.Fatalf("ParseGameConfig() error = %v", err)
		}
		if config.MatchBonus != 5 || config.FlipBackDelayMs != 300 {
			t.Errorf("unexpected config: %+v", config)
		}
		if got := fmt.Sprintf(config.Messages.Victory, 80); got != "100% done: 80" {
			t.Errorf("victory = %q", got)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := ParseGameConfig([]byte(`{"name":`)); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("fails validation", func(t *testing.T) {
		if _, err := ParseGameConfig([]byte(`{"name":"x"}`)); err == nil {
			t.Error("expected validation error")
		}
	})
}
