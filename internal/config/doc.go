// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for drillrun.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation. A file watcher reloads the config when it
// changes on disk, skipping invalid writes.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DRILLRUN_*)
//   - ~/.drillrun/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Watch for changes:
//
//	w, _ := config.NewWatcher(path, 200*time.Millisecond, onReload)
//	w.Watch()
//	defer w.Close()
package config
