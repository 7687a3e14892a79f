// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultWordWrap is used when no width is known yet.
	DefaultWordWrap = 80

	minWordWrap = 20
)

// Markdown renders assistant answers with glamour.
// Rendered output is cached per message ID; messages never change after they
// are appended, so the cache is only dropped when the style or width changes.
type Markdown struct {
	style    string
	wordWrap int
	term     *glamour.TermRenderer
	cache    map[string]string
}

// NewMarkdown creates a renderer for a glamour standard style
// ("dark", "light", "notty", ...) wrapping at wordWrap columns.
func NewMarkdown(style string, wordWrap int) (*Markdown, error) {
	md := &Markdown{style: style}
	if err := md.rebuild(wordWrap); err != nil {
		return nil, err
	}
	return md, nil
}

// Style returns the glamour style name.
func (md *Markdown) Style() string {
	return md.style
}

// WordWrap returns the current wrap width.
func (md *Markdown) WordWrap() int {
	return md.wordWrap
}

// SetWordWrap changes the wrap width. Unchanged widths are a no-op.
func (md *Markdown) SetWordWrap(width int) error {
	if clampWrap(width) == md.wordWrap {
		return nil
	}
	return md.rebuild(width)
}

// SetStyle switches the glamour style.
func (md *Markdown) SetStyle(style string) error {
	if style == md.style {
		return nil
	}
	old := md.style
	md.style = style
	if err := md.rebuild(md.wordWrap); err != nil {
		md.style = old
		return err
	}
	return nil
}

func (md *Markdown) rebuild(width int) error {
	width = clampWrap(width)
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(md.style),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return errors.Wrapf(err, "create markdown renderer (style %q)", md.style)
	}
	md.term = term
	md.wordWrap = width
	md.cache = make(map[string]string)
	return nil
}

// Render renders content. On a glamour failure the raw content is returned.
func (md *Markdown) Render(content string) string {
	out, err := md.term.Render(content)
	if err != nil {
		log.Warn().Err(err).Msg("render: markdown failed, showing raw text")
		return content
	}
	return strings.Trim(out, "\n")
}

// RenderCached renders content under key, reusing an earlier result.
func (md *Markdown) RenderCached(key, content string) string {
	if key == "" {
		return md.Render(content)
	}
	if out, ok := md.cache[key]; ok {
		return out
	}
	out := md.Render(content)
	md.cache[key] = out
	return out
}

func clampWrap(width int) int {
	if width <= 0 {
		return DefaultWordWrap
	}
	if width < minWordWrap {
		return minWordWrap
	}
	return width
}
