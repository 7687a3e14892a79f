// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the kbochat command tree.
//
// # Commands Overview
//
//	kbochat [tui]          full-screen chat (default)
//	kbochat ask <question> one question, answer printed to stdout
//	kbochat repl           line-mode chat with input history
//	kbochat health         backend health check
//	kbochat search <query> similar matchup documents (-k limit)
//	kbochat config         show, locate or reset the config file
//
// # Global Flags
//
//	--api-url    answer service base URL
//	--config     config file (default ~/.kbochat/config.toml)
//	--log-file   log file
//	--log-level  trace, debug, info, warn, error, off
//
// Flags take precedence over KBOCHAT_* environment variables, which take
// precedence over the config file.
//
// # Exit Codes
//
// Execute returns 1 when a command fails. A failed ask still prints the
// apology message first.
package cli
