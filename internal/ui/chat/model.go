// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/kbochat-tui/internal/api"
	"github.com/jeranaias/kbochat-tui/internal/config"
	"github.com/jeranaias/kbochat-tui/internal/model"
	"github.com/jeranaias/kbochat-tui/internal/render"
	"github.com/jeranaias/kbochat-tui/internal/ui/styles"
)

// =============================================================================
// BACKEND
// =============================================================================

// Backend is the answer service as seen by the chat view.
// *api.Client implements it.
type Backend interface {
	Ask(ctx context.Context, question string) (*api.ChatResponse, error)
	Health(ctx context.Context) (*api.HealthStatus, error)
}

// HealthState is the last known backend status.
type HealthState int

const (
	HealthUnknown HealthState = iota
	HealthOnline
	HealthOffline
)

// healthInterval is the delay between background health checks.
const healthInterval = 30 * time.Second

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme    *styles.Theme
	markdown *render.Markdown
	ui       config.UIConfig

	// Dimensions
	width  int
	height int

	// Conversation
	conversation *model.Conversation
	backend      Backend

	// UI Components
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Citation disclosures opened by the user, by message ID
	expanded map[string]bool

	// Status
	health    HealthState
	statusMsg string

	copyText func(string) error
}

// New creates a chat model talking to backend. theme should already match
// ui.Theme; see styles.NewThemeNamed.
func New(theme *styles.Theme, backend Backend, ui config.UIConfig) Model {
	ta := textarea.New()
	ta.Placeholder = "KBO 선수 매치업에 대해 질문해보세요..."
	ta.Prompt = "┃ "
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(composerHeight)
	ta.FocusedStyle.CursorLine = ta.FocusedStyle.CursorLine.UnsetBackground()
	// Enter submits; newlines come from the Newline binding only.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = styles.LineSpinner.Bubble()
	sp.Style = theme.Spinner

	md, err := render.NewMarkdown(theme.MarkdownStyle(), render.DefaultWordWrap)
	if err != nil {
		log.Warn().Err(err).Str("theme", theme.Name).Msg("chat: falling back to plain markdown style")
		md, _ = render.NewMarkdown("notty", render.DefaultWordWrap)
	}

	m := Model{
		theme:        theme,
		markdown:     md,
		ui:           ui,
		conversation: model.NewConversation(),
		backend:      backend,
		viewport:     vp,
		input:        ta,
		spinner:      sp,
		keyMap:       DefaultKeyMap(),
		expanded:     make(map[string]bool),
		copyText:     clipboard.WriteAll,
	}
	m.updateViewport()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the first health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.healthCmd())
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Conversation returns the conversation store.
func (m *Model) Conversation() *model.Conversation {
	return m.conversation
}

// Draft returns the current composer text.
func (m *Model) Draft() string {
	return m.input.Value()
}

// Pending reports whether a question is awaiting its answer.
func (m *Model) Pending() bool {
	return m.conversation.Pending()
}

// Health returns the last known backend status.
func (m *Model) Health() HealthState {
	return m.health
}

// StatusMessage returns the transient status bar message.
func (m *Model) StatusMessage() string {
	return m.statusMsg
}

// SetClipboard replaces the clipboard writer used by the copy shortcut.
func (m *Model) SetClipboard(fn func(string) error) {
	m.copyText = fn
}

// Expanded reports whether the citation disclosure of message id is open.
func (m *Model) Expanded(id string) bool {
	return m.expanded[id]
}
