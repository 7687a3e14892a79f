// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/kbochat-tui/internal/api"
	"github.com/jeranaias/kbochat-tui/internal/config"
	"github.com/jeranaias/kbochat-tui/internal/model"
)

// =============================================================================
// ANSWER MESSAGES
// =============================================================================

// AnswerMsg settles one submission. Reply is either the mapped answer or the
// apology message; the ask command never reports failure any other way.
type AnswerMsg struct {
	Ticket model.Ticket
	Reply  model.Message
}

// =============================================================================
// BACKEND STATUS MESSAGES
// =============================================================================

// HealthMsg reports the result of a health check.
type HealthMsg struct {
	Status *api.HealthStatus
	Err    error
}

// healthTickMsg schedules the next health check.
type healthTickMsg struct{}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg carries a configuration reloaded from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}
