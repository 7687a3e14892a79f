// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/kbochat-tui/internal/config"
	"github.com/jeranaias/kbochat-tui/internal/ui/chat"
	"github.com/jeranaias/kbochat-tui/internal/ui/styles"
)

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}
}

// runTUI runs the chat program until the user quits. The config file is
// watched meanwhile and display changes are pushed into the program.
func runTUI(ctx context.Context, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !IsTTY() || !IsStdoutTTY() {
		return errors.New("the chat view needs a terminal; use 'kbochat ask' or 'kbochat repl' instead")
	}

	if err := a.setupFileLogging(); err != nil {
		return err
	}
	defer a.close()

	client := a.client()
	log.Info().Str("api", client.BaseURL()).Str("version", Version).Msg("tui: starting")

	m := chat.New(styles.NewThemeNamed(a.cfg.UI.Theme), client, a.cfg.UI)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	eg, childCtx := errgroup.WithContext(ctx)
	childCtx, cancel := context.WithCancel(childCtx)
	defer cancel()

	eg.Go(func() error {
		err := config.Watch(childCtx, a.configPath, func(cfg *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: cfg})
		})
		if err != nil {
			// A missing config directory only disables live reload.
			log.Warn().Err(err).Msg("tui: config reload disabled")
		}
		return nil
	})

	eg.Go(func() error {
		defer cancel()
		_, err := p.Run()
		log.Debug().Err(err).Msg("tui: program finished")
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return errors.Wrap(err, "run chat view")
		}
		return nil
	})

	return eg.Wait()
}
