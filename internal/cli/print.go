// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/kbochat-tui/internal/model"
	"github.com/jeranaias/kbochat-tui/internal/render"
	"github.com/jeranaias/kbochat-tui/internal/ui/styles"
)

// =============================================================================
// LINE-MODE PRINTER
// =============================================================================

// printer writes assistant messages for the line-mode commands. Answers are
// rendered as markdown only when the output is a terminal.
type printer struct {
	out      io.Writer
	theme    *styles.Theme
	markdown *render.Markdown
}

// newPrinter creates a printer for out. rich enables glamour output.
func newPrinter(out io.Writer, theme *styles.Theme, rich bool, wordWrap int) *printer {
	p := &printer{out: out, theme: theme}
	if !rich {
		return p
	}
	md, err := render.NewMarkdown(theme.MarkdownStyle(), wordWrap)
	if err != nil {
		log.Warn().Err(err).Msg("cli: markdown disabled")
		return p
	}
	p.markdown = md
	return p
}

// Message prints the badge line, the answer and every citation.
// There is no way to open a disclosure later in line mode, so citations are
// always listed.
func (p *printer) Message(msg model.Message) {
	if meta := render.MetaLine(msg, p.theme); meta != "" {
		fmt.Fprintln(p.out, meta)
	}

	content := msg.Content
	if p.markdown != nil && !msg.IsError {
		content = p.markdown.Render(content)
	}
	fmt.Fprintln(p.out, strings.TrimRight(content, "\n"))

	if d := render.Disclosure(msg, true, p.theme); d != "" {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, d)
	}
}
