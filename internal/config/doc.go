// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for kbochat.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (applied by the cli package)
//   - Environment variables (KBOCHAT_API_URL, KBOCHAT_THEME, KBOCHAT_LOG_LEVEL, KBOCHAT_LOG_FILE)
//   - ~/.kbochat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	path, _ := config.ConfigPath()
//	cfg, err := config.LoadFromPath(path)
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.API.BaseURL)
//
// Watch reloads the file on change so a running TUI can pick up new
// display settings.
package config
