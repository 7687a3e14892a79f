// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns conversation messages into terminal text.
// It is shared by the full-screen TUI and the line-mode commands.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kbochat-tui/internal/model"
	"github.com/jeranaias/kbochat-tui/internal/ui/styles"
)

// =============================================================================
// SOURCE BADGES
// =============================================================================

// Badge is the label/color pair shown next to an answer.
type Badge struct {
	Label string
	Color lipgloss.Color
}

var badges = map[model.Source]Badge{
	model.SourceRule:   {Label: "규칙 엔진", Color: styles.BadgeRule},
	model.SourceRAG:    {Label: "RAG", Color: styles.BadgeRAG},
	model.SourceHybrid: {Label: "하이브리드", Color: styles.BadgeHybrid},
	model.SourceSystem: {Label: "시스템", Color: styles.BadgeSystem},
	model.SourceError:  {Label: "오류", Color: styles.BadgeError},
}

// BadgeFor resolves the badge for source. Missing or unknown sources get the
// system badge.
func BadgeFor(source model.Source) Badge {
	if b, ok := badges[source]; ok {
		return b
	}
	return badges[model.SourceSystem]
}

// Render draws the badge with base as the text style.
func (b Badge) Render(base lipgloss.Style) string {
	return base.Background(b.Color).Render(b.Label)
}

// =============================================================================
// META LINE
// =============================================================================

// Clock formats a message time the way the transcript shows it (24h HH:MM).
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// MetaLine renders "badge  HH:MM" for an assistant message. It is empty for
// user messages and for assistant messages without a source tag.
func MetaLine(msg model.Message, theme *styles.Theme) string {
	if msg.IsUser() || msg.Source == model.SourceNone {
		return ""
	}
	return BadgeFor(msg.Source).Render(theme.Badge) + " " + theme.Timestamp.Render(Clock(msg.Timestamp))
}

// =============================================================================
// CITATION DISCLOSURE
// =============================================================================

// DisclosureSummary is the label of the citation disclosure.
func DisclosureSummary(count int) string {
	return fmt.Sprintf("📚 참고 문서 (%d개)", count)
}

// CitationHeader is the "season - pitcher vs batter" line of one citation.
func CitationHeader(c model.Citation) string {
	return fmt.Sprintf("%d시즌 - %s vs %s", c.Season, c.Pitcher, c.Batter)
}

// Disclosure renders the citation list of msg. Collapsed shows the summary only.
// It returns "" when the message has no citations.
func Disclosure(msg model.Message, expanded bool, theme *styles.Theme) string {
	if msg.IsUser() || !msg.HasSources() {
		return ""
	}

	marker := "▶"
	if expanded {
		marker = "▼"
	}
	summary := theme.DisclosureSummary.Render(marker + " " + DisclosureSummary(len(msg.Sources)))
	if !expanded {
		return summary
	}

	var b strings.Builder
	b.WriteString(summary)
	for _, c := range msg.Sources {
		b.WriteString("\n  ")
		b.WriteString(theme.CitationHeader.Render(CitationHeader(c)))
		if preview := strings.TrimSpace(c.ContentPreview); preview != "" {
			b.WriteString("\n  ")
			b.WriteString(theme.CitationPreview.Render(preview))
		}
	}
	return b.String()
}
