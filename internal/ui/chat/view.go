// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kbochat-tui/internal/model"
	"github.com/jeranaias/kbochat-tui/internal/render"
	"github.com/jeranaias/kbochat-tui/internal/util"
)

const (
	// HeaderTitle and HeaderSubtitle are shown in the top bar.
	HeaderTitle    = "⚾ KBO 매치업 챗봇"
	HeaderSubtitle = "규칙 기반 엔진 + RAG 하이브리드 시스템"

	// LoadingText follows the spinner while a question is pending.
	LoadingText = "답변 생성 중..."

	composerHeight = 3
)

// =============================================================================
// MAIN VIEW
// =============================================================================

// renderChat renders the full chat view: header, transcript, composer, status bar.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// updateViewport re-renders the transcript into the viewport, following the
// bottom when the user had not scrolled away from it.
func (m *Model) updateViewport() {
	follow := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var status string
	switch m.health {
	case HealthOnline:
		status = m.theme.StatusOnline.Render("● 연결됨")
	case HealthOffline:
		status = m.theme.StatusOffline.Render("● 연결 끊김")
	default:
		status = m.theme.StatusUnknown.Render("○ 확인 중")
	}

	// Padding takes two columns; the status keeps its place on the right.
	room := width - 2 - lipgloss.Width(status) - 1
	title := HeaderTitle + "  " + HeaderSubtitle
	if util.StringWidth(title) > room {
		title = util.TruncateWidth(title, room)
	}
	left := m.theme.HeaderTitle.Render(title)
	if strings.HasPrefix(title, HeaderTitle+"  ") {
		left = m.theme.HeaderTitle.Render(HeaderTitle) + "  " +
			m.theme.HeaderSubtitle.Render(strings.TrimPrefix(title, HeaderTitle+"  "))
	}

	gap := room - lipgloss.Width(left)
	if gap < 0 {
		gap = 0
	}
	content := left + strings.Repeat(" ", gap+1) + status

	return m.theme.Header.Width(width).MaxHeight(1).Render(content)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders every message in order, followed by the loading
// row while a question is pending.
func (m *Model) renderTranscript() string {
	messages := m.conversation.Messages()
	parts := make([]string, 0, len(messages)+1)
	for _, msg := range messages {
		parts = append(parts, m.renderMessage(msg))
	}
	if m.conversation.Pending() {
		parts = append(parts, m.renderLoading())
	}
	return strings.Join(parts, "\n")
}

// renderMessage renders a single message based on its role.
func (m *Model) renderMessage(msg model.Message) string {
	if msg.IsUser() {
		return m.renderUserMessage(msg)
	}
	return m.renderAssistantMessage(msg)
}

// renderUserMessage renders the user's text literally in a right-aligned bubble.
func (m *Model) renderUserMessage(msg model.Message) string {
	width := m.viewWidth()

	// Bubble border and padding take six columns.
	maxWidth := width*3/4 - 6
	if maxWidth < 10 {
		maxWidth = 10
	}
	textWidth := 0
	for _, line := range strings.Split(msg.Content, "\n") {
		if w := util.StringWidth(line); w > textWidth {
			textWidth = w
		}
	}
	if textWidth > maxWidth {
		textWidth = maxWidth
	}
	if textWidth < 1 {
		textWidth = 1
	}

	bubble := m.theme.UserBubble.Width(textWidth + 4).Render(msg.Content)

	marginLeft := width - lipgloss.Width(bubble) - 1
	if marginLeft < 0 {
		marginLeft = 0
	}
	return lipgloss.NewStyle().
		MarginLeft(marginLeft).
		MarginTop(1).
		Render(bubble)
}

// renderAssistantMessage renders the meta line, the answer and the citation
// disclosure of an assistant message.
func (m *Model) renderAssistantMessage(msg model.Message) string {
	var parts []string

	if meta := m.metaLine(msg); meta != "" {
		parts = append(parts, meta)
	}

	if msg.IsError {
		parts = append(parts, m.theme.ErrorBubble.Render(msg.Content))
	} else {
		body := m.markdown.RenderCached(msg.ID, msg.Content)
		parts = append(parts, m.theme.AssistantBubble.Render(body))
	}

	if d := render.Disclosure(msg, m.expanded[msg.ID], m.theme); d != "" {
		parts = append(parts, d)
	}

	return lipgloss.NewStyle().
		MarginLeft(1).
		MarginTop(1).
		Render(strings.Join(parts, "\n"))
}

// metaLine is the badge line above an answer. Timestamps can be hidden.
func (m *Model) metaLine(msg model.Message) string {
	if m.ui.ShowTimestamps {
		return render.MetaLine(msg, m.theme)
	}
	if msg.Source == model.SourceNone {
		return ""
	}
	return render.BadgeFor(msg.Source).Render(m.theme.Badge)
}

// renderLoading is the spinner row shown while waiting for an answer.
func (m *Model) renderLoading() string {
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(m.spinner.View() + " " + m.theme.ThinkingText.Render(LoadingText))
}

func (m *Model) viewWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

// =============================================================================
// COMPOSER
// =============================================================================

func (m Model) renderInput() string {
	container := m.theme.InputContainer
	if m.conversation.Pending() {
		container = m.theme.InputContainerDisabled
	}
	return container.Render(m.input.View())
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var content string
	if m.statusMsg != "" {
		content = m.statusMsg
	} else {
		hints := make([]string, 0, len(m.keyMap.ShortHelp()))
		for _, b := range m.keyMap.ShortHelp() {
			h := b.Help()
			hints = append(hints, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
		}
		content = strings.Join(hints, "  ")
	}

	return m.theme.StatusBar.Width(width).MaxHeight(1).Render(content)
}
