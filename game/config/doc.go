// Package config loads game rule presets.
//
// Presets are JSON files in a config directory, named <id>.json, where the id
// is what clients pass when creating a session. The built-in "timed" and
// "relaxed" presets are always available; a file with the same id replaces
// the built-in one.
//
// Usage:
//
//	configMgr, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := configMgr.LoadConfig("relaxed")
//	infos, err := configMgr.ListConfigs()
//
// Loaded configs are parsed with engine.ParseGameConfig and cached for
// the life of the manager. Invalid files are skipped by ListConfigs and
// reported as ErrInvalidConfig by LoadConfig.
package config
