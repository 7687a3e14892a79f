// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for kbochat.
package styles

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Name is the configured theme: auto, dark, light or notty.
	Name string

	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// What the terminal reported, kept so WithName never queries it again.
	detectedDark    bool
	detectedProfile termenv.Profile

	renderer *lipgloss.Renderer

	// Header
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	StatusOnline   lipgloss.Style
	StatusOffline  lipgloss.Style
	StatusUnknown  lipgloss.Style

	// Message rows
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	Timestamp       lipgloss.Style
	Badge           lipgloss.Style

	// Citation disclosure
	DisclosureSummary lipgloss.Style
	CitationHeader    lipgloss.Style
	CitationPreview   lipgloss.Style

	// Composer
	InputContainer         lipgloss.Style
	InputContainerDisabled lipgloss.Style

	// Loading row and footer
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a theme that follows the terminal.
func NewTheme() *Theme {
	return NewThemeNamed("auto")
}

// NewThemeNamed creates a theme for a configured name. "dark" and "light"
// pick that side of every adaptive color, "notty" drops colors, and anything
// else follows the terminal.
func NewThemeNamed(name string) *Theme {
	t := &Theme{
		detectedDark:    termenv.HasDarkBackground(),
		detectedProfile: termenv.ColorProfile(),
	}
	return t.WithName(name)
}

// WithName returns a theme for name that reuses the terminal detection of t.
// The running TUI calls it on config reload.
func (t *Theme) WithName(name string) *Theme {
	nt := &Theme{
		Name:            strings.ToLower(name),
		IsDark:          t.detectedDark,
		ColorProfile:    t.detectedProfile,
		detectedDark:    t.detectedDark,
		detectedProfile: t.detectedProfile,
	}
	switch nt.Name {
	case "dark":
		nt.IsDark = true
	case "light":
		nt.IsDark = false
	case "notty":
		nt.ColorProfile = termenv.Ascii
	default:
		nt.Name = "auto"
	}

	nt.renderer = lipgloss.NewRenderer(os.Stdout)
	nt.renderer.SetColorProfile(nt.ColorProfile)
	nt.renderer.SetHasDarkBackground(nt.IsDark)
	nt.initStyles()
	return nt
}

// MarkdownStyle returns the glamour standard style matching the terminal.
func (t *Theme) MarkdownStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = t.renderer.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = t.renderer.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = t.renderer.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.StatusOnline = t.renderer.NewStyle().Foreground(Emerald)
	t.StatusOffline = t.renderer.NewStyle().Foreground(Rose)
	t.StatusUnknown = t.renderer.NewStyle().Foreground(TextMuted)

	t.UserBubble = t.renderer.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2)

	t.AssistantBubble = t.renderer.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.ErrorBubble = t.renderer.NewStyle().
		Foreground(ErrorBubbleFg).
		Background(ErrorBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ErrorBubbleBorder).
		Padding(0, 2)

	t.Timestamp = t.renderer.NewStyle().Foreground(TextMuted)

	t.Badge = t.renderer.NewStyle().
		Foreground(BadgeText).
		Bold(true).
		Padding(0, 1)

	t.DisclosureSummary = t.renderer.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.CitationHeader = t.renderer.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.CitationPreview = t.renderer.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(2)

	t.InputContainer = t.renderer.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan)

	t.InputContainerDisabled = t.renderer.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.Spinner = t.renderer.NewStyle().Foreground(Purple)
	t.ThinkingText = t.renderer.NewStyle().Foreground(TextSecondary).Italic(true)

	t.StatusBar = t.renderer.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.ShortcutKey = t.renderer.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = t.renderer.NewStyle().Foreground(TextMuted)
}

// =============================================================================
// SPINNER
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Bubble converts the config into a bubbles spinner.
func (s SpinnerConfig) Bubble() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Duration()}
}

// LineSpinner - Simple line rotation
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}
