// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/kbochat-tui/internal/api"
	"github.com/jeranaias/kbochat-tui/internal/model"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
// It is the only writer of the conversation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case AnswerMsg:
		return m.handleAnswer(msg)

	case spinner.TickMsg:
		if !m.conversation.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateViewport()
		return m, cmd

	case HealthMsg:
		return m.handleHealth(msg)

	case healthTickMsg:
		return m, m.healthCmd()

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keyMap.Newline):
		return m.insertNewline()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Copy):
		return m.copyLastAnswer()

	case key.Matches(msg, m.keyMap.ToggleSources):
		return m.toggleSources()

	case key.Matches(msg, m.keyMap.Redraw):
		return m, tea.ClearScreen
	}

	// The composer is disabled while a question is pending.
	if m.conversation.Pending() {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// layout sizes the composer, the transcript and the markdown wrap width
// from the current window size.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	// Border takes two columns.
	inputWidth := m.width - 2
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.SetWidth(inputWidth)

	reserved := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())
	vpHeight := m.height - reserved
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight

	if err := m.markdown.SetWordWrap(m.wrapWidth()); err != nil {
		log.Warn().Err(err).Msg("chat: resize markdown renderer")
	}
}

// wrapWidth is the markdown wrap width for assistant answers.
func (m *Model) wrapWidth() int {
	// Row margin, bubble border and bubble padding.
	w := m.width - 6
	if m.ui.WordWrap > 0 && m.ui.WordWrap < w {
		w = m.ui.WordWrap
	}
	return w
}

// handleAnswer settles the pending submission with its reply.
func (m Model) handleAnswer(msg AnswerMsg) (tea.Model, tea.Cmd) {
	if err := m.conversation.Settle(msg.Ticket, msg.Reply); err != nil {
		log.Warn().Err(err).Str("ticket", msg.Ticket.ID()).Msg("chat: dropped answer")
		return m, nil
	}

	if m.ui.ExpandSources && msg.Reply.HasSources() {
		if last, ok := m.conversation.Last(); ok {
			m.expanded[last.ID] = true
		}
	}

	m.statusMsg = ""
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, m.input.Focus()
}

func (m Model) handleHealth(msg HealthMsg) (tea.Model, tea.Cmd) {
	next := HealthOffline
	if msg.Err == nil && msg.Status.Healthy() {
		next = HealthOnline
	}
	if next != m.health {
		ev := log.Info().Bool("online", next == HealthOnline)
		if msg.Err != nil {
			ev = ev.Err(msg.Err)
		}
		ev.Msg("chat: backend status changed")
	}
	m.health = next

	return m, tea.Tick(healthInterval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	m.ui = msg.Config.UI

	if m.ui.Theme != m.theme.Name {
		m.theme = m.theme.WithName(m.ui.Theme)
		m.spinner.Style = m.theme.Spinner
	}
	if err := m.markdown.SetStyle(m.theme.MarkdownStyle()); err != nil {
		log.Warn().Err(err).Str("theme", m.ui.Theme).Msg("chat: keep previous markdown style")
	}
	m.layout()
	m.updateViewport()
	m.statusMsg = "설정을 다시 불러왔습니다"
	return m, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

// copyLastAnswer copies the last assistant answer to the clipboard.
func (m Model) copyLastAnswer() (tea.Model, tea.Cmd) {
	last, ok := m.conversation.LastAssistant()
	if !ok || last.IsBlank() {
		m.statusMsg = "복사할 답변이 없습니다"
		return m, nil
	}

	if err := m.copyText(last.Content); err != nil {
		log.Warn().Err(err).Msg("chat: clipboard write failed")
		m.statusMsg = "클립보드 복사 실패"
		return m, nil
	}

	m.statusMsg = fmt.Sprintf("답변을 복사했습니다 (%d자)", len([]rune(last.Content)))
	return m, nil
}

// toggleSources opens or closes the citation list of the latest answer that
// has citations.
func (m Model) toggleSources() (tea.Model, tea.Cmd) {
	msg, ok := m.conversation.LastWithSources()
	if !ok {
		return m, nil
	}
	m.expanded[msg.ID] = !m.expanded[msg.ID]
	m.updateViewport()
	return m, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// AskCmd sends question to backend and reports exactly one AnswerMsg for
// ticket. Failures become the apology message.
func AskCmd(backend Backend, ticket model.Ticket, question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := backend.Ask(context.Background(), question)
		if err != nil {
			log.Warn().Err(err).Str("ticket", ticket.ID()).Msg("chat: question failed")
		}
		return AnswerMsg{Ticket: ticket, Reply: api.Settlement(resp, err)}
	}
}

// HealthCmd checks the backend once. The client applies its own deadline.
func HealthCmd(backend Backend) tea.Cmd {
	return func() tea.Msg {
		status, err := backend.Health(context.Background())
		return HealthMsg{Status: status, Err: err}
	}
}

func (m Model) healthCmd() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	return HealthCmd(m.backend)
}
