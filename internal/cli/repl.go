// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/kbochat-tui/internal/api"
	"github.com/jeranaias/kbochat-tui/internal/config"
	"github.com/jeranaias/kbochat-tui/internal/model"
	"github.com/jeranaias/kbochat-tui/internal/ui/styles"
	"github.com/jeranaias/kbochat-tui/internal/util"
)

const (
	replPrompt         = "질문> "
	replContinuePrompt = "...> "
)

// asker is the part of the answer service the line-mode commands need.
type asker interface {
	Ask(ctx context.Context, question string) (*api.ChatResponse, error)
}

// lineReader reads one edited line per prompt.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "repl_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads a line and records non-blank input in the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with 0600 permissions.
func (c *ChatCLI) SaveHistory() {
	var buf bytes.Buffer
	if _, err := c.line.WriteHistory(&buf); err != nil {
		log.Warn().Err(err).Msg("repl: read history")
		return
	}
	if err := util.AtomicWriteFile(c.historyFile, buf.Bytes(), 0o600); err != nil {
		log.Warn().Err(err).Msg("repl: save history")
	}
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	_ = c.line.Close()
}

// =============================================================================
// REPL COMMAND
// =============================================================================

func newREPLCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Line-mode chat with input history",
		Long: `Line-mode chat. End a line with \ to continue the question on the next line.
Type /quit or press Ctrl+D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setupLineLogging(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer a.close()

			in := NewChatCLI()
			defer in.Close()

			out := cmd.OutOrStdout()
			p := newPrinter(out, styles.NewThemeNamed(a.cfg.UI.Theme), IsTerminalWriter(out), a.wrapWidth())
			return runREPL(cmd.Context(), in, a.client(), p)
		},
	}
}

// runREPL drives one conversation from in until EOF, Ctrl+C or /quit.
// Each question is settled with exactly one printed answer.
func runREPL(ctx context.Context, in lineReader, backend asker, p *printer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conv := model.NewConversation()
	if greeting, ok := conv.Last(); ok {
		p.Message(greeting)
	}

	for {
		question, err := readQuestion(in)
		if err == io.EOF || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(p.out)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read input")
		}

		switch strings.TrimSpace(question) {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(p.out, `질문을 입력하고 Enter를 누르세요. 줄 끝에 \ 를 붙이면 다음 줄로 이어집니다. /quit 종료`)
			continue
		}

		ticket, err := conv.Begin(question)
		if err != nil {
			// Blank input.
			continue
		}

		fmt.Fprintln(p.out, p.theme.ThinkingText.Render("답변 생성 중..."))
		resp, err := backend.Ask(ctx, question)
		if err != nil {
			log.Warn().Err(err).Msg("repl: question failed")
		}
		if err := conv.Settle(ticket, api.Settlement(resp, err)); err != nil {
			return err
		}

		reply, _ := conv.Last()
		fmt.Fprintln(p.out)
		p.Message(reply)
		fmt.Fprintln(p.out)
	}
}

// readQuestion reads one question. Lines ending in a backslash continue on
// the next line; the backslash becomes a newline.
func readQuestion(in lineReader) (string, error) {
	var lines []string
	prompt := replPrompt
	for {
		line, err := in.Prompt(prompt)
		if err != nil {
			if len(lines) > 0 && err == io.EOF {
				return strings.Join(lines, "\n"), nil
			}
			return "", err
		}
		if strings.HasSuffix(line, `\`) {
			lines = append(lines, strings.TrimSuffix(line, `\`))
			prompt = replContinuePrompt
			continue
		}
		lines = append(lines, line)
		return strings.Join(lines, "\n"), nil
	}
}
