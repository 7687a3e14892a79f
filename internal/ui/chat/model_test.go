// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kbochat-tui/internal/api"
	"github.com/jeranaias/kbochat-tui/internal/config"
	"github.com/jeranaias/kbochat-tui/internal/model"
	"github.com/jeranaias/kbochat-tui/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeBackend answers every question with resp/err and records what it was asked.
type fakeBackend struct {
	mu        sync.Mutex
	resp      *api.ChatResponse
	err       error
	questions []string

	health    *api.HealthStatus
	healthErr error
}

func (f *fakeBackend) Ask(_ context.Context, question string) (*api.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, question)
	return f.resp, f.err
}

func (f *fakeBackend) Health(context.Context) (*api.HealthStatus, error) {
	return f.health, f.healthErr
}

func (f *fakeBackend) asked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.questions...)
}

func ragResponse() *api.ChatResponse {
	return &api.ChatResponse{
		Answer: "x",
		Source: "rag",
		Sources: []model.Citation{
			{Season: 2024, Pitcher: "A", Batter: "B", ContentPreview: "c"},
		},
	}
}

func newTestModel(t *testing.T, backend Backend) Model {
	t.Helper()
	m := New(styles.NewTheme(), backend, config.Default().UI)
	m.SetClipboard(func(string) error { return nil })
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyAltEnter = tea.KeyMsg{Type: tea.KeyEnter, Alt: true}
	keyCtrlJ    = tea.KeyMsg{Type: tea.KeyCtrlJ}
	keyCtrlO    = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyCtrlY    = tea.KeyMsg{Type: tea.KeyCtrlY}
)

// runCmd executes cmd, expanding batches, and returns every message produced.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findAnswer(t *testing.T, cmd tea.Cmd) AnswerMsg {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		if answer, ok := msg.(AnswerMsg); ok {
			return answer
		}
	}
	t.Fatal("command produced no AnswerMsg")
	return AnswerMsg{}
}

// submit types text, presses enter and settles with the backend's answer.
func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = typeText(t, m, text)
	m, cmd := send(t, m, keyEnter)
	m, _ = send(t, m, findAnswer(t, cmd))
	return m
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestSubmit_UserThenAnswer(t *testing.T) {
	backend := &fakeBackend{resp: ragResponse()}
	m := newTestModel(t, backend)

	m = typeText(t, m, "김광현 vs 최정")
	m, cmd := send(t, m, keyEnter)

	conv := m.Conversation()
	if conv.Len() != 2 {
		t.Fatalf("expected greeting + user message, got %d messages", conv.Len())
	}
	last, _ := conv.Last()
	if !last.IsUser() || last.Content != "김광현 vs 최정" {
		t.Errorf("unexpected user message: %+v", last)
	}
	if !m.Pending() {
		t.Error("expected pending after submit")
	}
	if m.Draft() != "" {
		t.Errorf("expected cleared draft, got %q", m.Draft())
	}
	if m.input.Focused() {
		t.Error("composer should be disabled while pending")
	}
	if !strings.Contains(m.renderTranscript(), LoadingText) {
		t.Error("expected loading row while pending")
	}

	m, _ = send(t, m, findAnswer(t, cmd))

	if conv.Len() != 3 {
		t.Fatalf("expected 3 messages after settlement, got %d", conv.Len())
	}
	answer, _ := conv.Last()
	if answer.Role != model.RoleAssistant || answer.Source != model.SourceRAG || answer.Content != "x" {
		t.Errorf("unexpected answer: %+v", answer)
	}
	if m.Pending() {
		t.Error("expected idle after settlement")
	}
	if !m.input.Focused() {
		t.Error("composer should be refocused after settlement")
	}
	if strings.Contains(m.renderTranscript(), LoadingText) {
		t.Error("loading row should be gone after settlement")
	}
	if got := backend.asked(); len(got) != 1 || got[0] != "김광현 vs 최정" {
		t.Errorf("backend asked %v", got)
	}
}

func TestSubmit_BlankDraftIgnored(t *testing.T) {
	drafts := []string{"", "   ", "\t"}

	for _, draft := range drafts {
		t.Run("draft="+draft, func(t *testing.T) {
			backend := &fakeBackend{resp: ragResponse()}
			m := newTestModel(t, backend)
			m.input.SetValue(draft)

			m, cmd := send(t, m, keyEnter)

			if cmd != nil {
				t.Error("blank draft should not start a request")
			}
			if m.Conversation().Len() != 1 {
				t.Errorf("conversation changed: %d messages", m.Conversation().Len())
			}
			if m.Pending() {
				t.Error("blank draft should not set pending")
			}
			if len(backend.asked()) != 0 {
				t.Error("backend should not be called")
			}
		})
	}
}

func TestSubmit_WhilePendingIgnored(t *testing.T) {
	backend := &fakeBackend{resp: ragResponse()}
	m := newTestModel(t, backend)

	m = typeText(t, m, "first")
	m, _ = send(t, m, keyEnter)
	if !m.Pending() {
		t.Fatal("expected pending")
	}

	// Typing is ignored while the composer is disabled.
	m = typeText(t, m, "ignored")
	if m.Draft() != "" {
		t.Errorf("draft changed while pending: %q", m.Draft())
	}

	m.input.SetValue("second")
	for i := 0; i < 3; i++ {
		var cmd tea.Cmd
		m, cmd = send(t, m, keyEnter)
		if cmd != nil {
			t.Errorf("submit %d while pending returned a command", i)
		}
	}
	if m.Conversation().Len() != 2 {
		t.Errorf("expected 2 messages, got %d", m.Conversation().Len())
	}
	if m.Draft() != "second" {
		t.Errorf("ignored submit should keep the draft, got %q", m.Draft())
	}
}

func TestNewlineKeys(t *testing.T) {
	keys := map[string]tea.KeyMsg{
		"alt+enter": keyAltEnter,
		"ctrl+j":    keyCtrlJ,
	}

	for name, k := range keys {
		t.Run(name, func(t *testing.T) {
			m := newTestModel(t, &fakeBackend{resp: ragResponse()})

			m = typeText(t, m, "a")
			m, cmd := send(t, m, k)
			m = typeText(t, m, "b")

			if cmd != nil {
				t.Error("newline key should not start a request")
			}
			if m.Draft() != "a\nb" {
				t.Errorf("expected draft %q, got %q", "a\nb", m.Draft())
			}
			if m.Conversation().Len() != 1 || m.Pending() {
				t.Error("newline key must not submit")
			}
		})
	}
}

func TestSubmit_MultilineDraftSentRaw(t *testing.T) {
	backend := &fakeBackend{resp: ragResponse()}
	m := newTestModel(t, backend)

	m = typeText(t, m, "첫 줄")
	m, _ = send(t, m, keyAltEnter)
	m = typeText(t, m, "둘째 줄")
	m, cmd := send(t, m, keyEnter)
	findAnswer(t, cmd)

	last := m.Conversation().Messages()[1]
	if last.Content != "첫 줄\n둘째 줄" {
		t.Errorf("user message content = %q", last.Content)
	}
	if got := backend.asked(); len(got) != 1 || got[0] != "첫 줄\n둘째 줄" {
		t.Errorf("backend asked %q", got)
	}
}

// =============================================================================
// SETTLEMENT TESTS
// =============================================================================

func TestAnswer_NetworkFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	m := newTestModel(t, backend)

	m = submit(t, m, "질문")

	last, _ := m.Conversation().Last()
	if !last.IsError || last.Source != model.SourceError || last.Content != model.ApologyText {
		t.Errorf("expected apology message, got %+v", last)
	}
	if m.Pending() {
		t.Error("pending should be cleared after a failure")
	}
	if !m.input.Focused() {
		t.Error("composer should be refocused after a failure")
	}
	if !strings.Contains(m.renderTranscript(), "오류") {
		t.Error("expected error badge in transcript")
	}
}

func TestAnswer_StaleIgnored(t *testing.T) {
	m := newTestModel(t, &fakeBackend{resp: ragResponse()})

	m, _ = send(t, m, AnswerMsg{Reply: model.NewAssistantMessage("late", model.SourceRule, nil)})

	if m.Conversation().Len() != 1 {
		t.Errorf("unsolicited answer was appended: %d messages", m.Conversation().Len())
	}
}

func TestAnswer_SettlesOnce(t *testing.T) {
	m := newTestModel(t, &fakeBackend{resp: ragResponse()})

	m = typeText(t, m, "q")
	m, cmd := send(t, m, keyEnter)
	answer := findAnswer(t, cmd)

	m, _ = send(t, m, answer)
	m, _ = send(t, m, answer)

	if m.Conversation().Len() != 3 {
		t.Errorf("duplicate answer was appended: %d messages", m.Conversation().Len())
	}
}

func TestAnswer_ExpandSourcesSetting(t *testing.T) {
	ui := config.Default().UI
	ui.ExpandSources = true
	m := New(styles.NewTheme(), &fakeBackend{resp: ragResponse()}, ui)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = submit(t, m, "q")

	last, _ := m.Conversation().Last()
	if !m.Expanded(last.ID) {
		t.Error("answers with citations should open when expand_sources is set")
	}
}

// =============================================================================
// SHORTCUT TESTS
// =============================================================================

func TestQuitKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	}
	for _, k := range keys {
		m := newTestModel(t, &fakeBackend{})
		_, cmd := send(t, m, k)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestToggleSources(t *testing.T) {
	m := newTestModel(t, &fakeBackend{resp: ragResponse()})

	// Nothing to toggle yet.
	m, _ = send(t, m, keyCtrlO)

	m = submit(t, m, "q")
	last, _ := m.Conversation().Last()
	if m.Expanded(last.ID) {
		t.Fatal("citations should start collapsed")
	}

	m, _ = send(t, m, keyCtrlO)
	if !m.Expanded(last.ID) {
		t.Error("ctrl+o should expand the latest citations")
	}

	m, _ = send(t, m, keyCtrlO)
	if m.Expanded(last.ID) {
		t.Error("second ctrl+o should collapse again")
	}
}

func TestCopyLastAnswer(t *testing.T) {
	m := newTestModel(t, &fakeBackend{resp: ragResponse()})
	var copied string
	m.SetClipboard(func(s string) error {
		copied = s
		return nil
	})

	m, _ = send(t, m, keyCtrlY)
	if copied != model.GreetingText {
		t.Errorf("expected greeting copied, got %q", copied)
	}

	m = submit(t, m, "q")
	m, _ = send(t, m, keyCtrlY)
	if copied != "x" {
		t.Errorf("expected latest answer copied, got %q", copied)
	}
	if m.StatusMessage() == "" {
		t.Error("expected a status message after copy")
	}

	m.SetClipboard(func(string) error { return errors.New("no clipboard") })
	m, _ = send(t, m, keyCtrlY)
	if m.StatusMessage() != "클립보드 복사 실패" {
		t.Errorf("unexpected status %q", m.StatusMessage())
	}
}

// =============================================================================
// BACKGROUND MESSAGE TESTS
// =============================================================================

func TestHealthMsg(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	if m.Health() != HealthUnknown {
		t.Fatalf("expected unknown health, got %v", m.Health())
	}

	m, cmd := send(t, m, HealthMsg{Status: &api.HealthStatus{Status: "healthy", EngineInitialized: true}})
	if m.Health() != HealthOnline {
		t.Errorf("expected online, got %v", m.Health())
	}
	if cmd == nil {
		t.Error("expected the next health check to be scheduled")
	}
	if !strings.Contains(m.renderHeader(), "연결됨") {
		t.Error("header should show the online status")
	}

	m, _ = send(t, m, HealthMsg{Err: errors.New("refused")})
	if m.Health() != HealthOffline {
		t.Errorf("expected offline, got %v", m.Health())
	}

	m, _ = send(t, m, HealthMsg{Status: &api.HealthStatus{Status: "healthy"}})
	if m.Health() != HealthOffline {
		t.Error("uninitialized engine should count as offline")
	}
}

func TestHealthCmd(t *testing.T) {
	backend := &fakeBackend{health: &api.HealthStatus{Status: "healthy", EngineInitialized: true}}

	msg, ok := HealthCmd(backend)().(HealthMsg)
	if !ok {
		t.Fatal("expected HealthMsg")
	}
	if msg.Err != nil || !msg.Status.Healthy() {
		t.Errorf("unexpected health result: %+v", msg)
	}
}

func TestConfigReloaded(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	greeting, _ := m.Conversation().Last()
	clock := greeting.Timestamp.Format("15:04")

	if !strings.Contains(m.renderTranscript(), clock) {
		t.Fatal("timestamps should be shown by default")
	}

	cfg := config.Default()
	cfg.UI.ShowTimestamps = false
	m, _ = send(t, m, ConfigReloadedMsg{Config: cfg})

	if strings.Contains(m.renderTranscript(), clock) {
		t.Error("timestamps should be hidden after reload")
	}
	if !strings.Contains(m.renderTranscript(), "시스템") {
		t.Error("badge should stay visible without timestamps")
	}
	if m.StatusMessage() == "" {
		t.Error("expected a reload status message")
	}
}

func TestConfigReloaded_Theme(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	if m.theme.Name != "auto" {
		t.Fatalf("expected auto theme, got %q", m.theme.Name)
	}

	cfg := config.Default()
	cfg.UI.Theme = "light"
	m, _ = send(t, m, ConfigReloadedMsg{Config: cfg})
	if m.theme.Name != "light" || m.theme.IsDark {
		t.Errorf("palette should switch to light, got %q dark=%v", m.theme.Name, m.theme.IsDark)
	}

	cfg = config.Default()
	cfg.UI.Theme = "notty"
	m, _ = send(t, m, ConfigReloadedMsg{Config: cfg})
	if got := m.markdown.Style(); got != "notty" {
		t.Errorf("markdown style = %q, want notty", got)
	}
	if strings.Contains(m.View(), "\x1b[38") {
		t.Error("notty theme should not emit foreground colors")
	}
}
