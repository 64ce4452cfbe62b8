// Command validate checks the game preset JSON files in a configs directory
// (../configs by default, or the first argument). It checks:
//   - JSON structure, with unknown fields rejected
//   - The rules enforced by the engine (scoring ranges, flip-back delay, messages)
//   - That the file name matches the preset name, since the name is the preset ID
//   - Scoring sanity: a penalty at or above the bonus makes guessing a losing game
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	validateScoring(&config, &result)

	stem := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if config.Name != stem {
		result.fail("name %q does not match file name %q; sessions select presets by file name", config.Name, stem)
	}

	return result
}

// validateScoring reports the score range of a preset and rejects penalties
// that make random play a guaranteed loss
func validateScoring(config *engine.GameConfig, result *ValidationResult) {
	best := engine.PairCount * config.MatchBonus
	result.info("✓ Scoring: +%d per match, -%d per mismatch (perfect game: %d)",
		config.MatchBonus, config.MismatchPenalty, best)

	if config.MismatchPenalty >= config.MatchBonus {
		result.fail("mismatch_penalty (%d) must be below match_bonus (%d)",
			config.MismatchPenalty, config.MatchBonus)
		return
	}

	// Mismatches that still leave a non-negative final score
	if config.MismatchPenalty > 0 {
		result.info("✓ Break-even after %d mismatches", best/config.MismatchPenalty)
	}

	clock := "off"
	if config.EnableClock {
		clock = "on"
	}
	result.info("✓ Flip-back %dms, clock %s", config.FlipBackDelayMs, clock)
}

// main scans the configs directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
