// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/kbochat-tui/internal/api"
	"github.com/jeranaias/kbochat-tui/internal/ui/styles"
)

func newAskCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer",
		Example: `  kbochat ask "2024년 김광현 vs 최정 매치업 알려줘"
  kbochat ask 양현종이 삼진을 많이 잡을 수 있는 타자는?`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setupLineLogging(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer a.close()

			question := strings.Join(args, " ")
			rich := IsTerminalWriter(cmd.OutOrStdout())
			p := newPrinter(cmd.OutOrStdout(), styles.NewThemeNamed(a.cfg.UI.Theme), rich, a.wrapWidth())
			return runAsk(cmd.Context(), a.client(), p, question)
		},
	}
}

// runAsk sends question once and prints the settled message. A failed call
// prints the apology and returns errReported.
func runAsk(ctx context.Context, client asker, p *printer, question string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(question) == "" {
		return api.ErrEmptyQuestion
	}

	resp, err := client.Ask(ctx, question)
	p.Message(api.Settlement(resp, err))
	if err != nil {
		log.Warn().Err(err).Msg("ask: question failed")
		return errReported
	}
	return nil
}
