// Package config loads blockstorm settings from TOML.
//
// Settings are read from a single file and layered over built-in defaults:
// keys missing from the file keep their default values. A missing file is
// not an error. A few settings can be overridden from the environment:
//
//	BLOCKSTORM_LOG_LEVEL      log.level
//	BLOCKSTORM_STORE_PATH     store.path
//	BLOCKSTORM_HISTORY_MAX    history.max_entries
//
// # Basic Usage
//
//	cfg, err := config.Load("blockstorm.toml")
//	if err != nil {
//		return err
//	}
//	e := engine.New(engine.WithDragConfig(cfg.Drag.Resolver()))
//
// # Live Reload
//
// A Watcher reloads the file when it changes and hands the new settings to
// its callback. Invalid files are reported through the error callback and
// the previous settings stay in effect.
//
//	w, _ := config.NewWatcher("blockstorm.toml", func(cfg *config.Config) {
//		_ = e.SetDragConfig(cfg.Drag.Resolver())
//	})
//	defer w.Close()
package config
