// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

// submitInput sends the draft as a question.
// Blank drafts and submissions while a question is pending are ignored and
// leave both the draft and the conversation untouched.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	draft := m.input.Value()

	ticket, err := m.conversation.Begin(draft)
	if err != nil {
		log.Debug().Err(err).Msg("chat: submit ignored")
		return m, nil
	}

	if last, ok := m.conversation.Last(); ok {
		log.Debug().Str("ticket", ticket.ID()).Str("question", last.Preview(40)).Msg("chat: question submitted")
	}

	m.input.Reset()
	m.input.Blur()
	m.statusMsg = ""

	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		AskCmd(m.backend, ticket, draft),
		m.spinner.Tick,
	)
}

// insertNewline grows the draft by one line break.
func (m Model) insertNewline() (tea.Model, tea.Cmd) {
	if m.conversation.Pending() {
		return m, nil
	}
	m.input.InsertString("\n")
	return m, nil
}
