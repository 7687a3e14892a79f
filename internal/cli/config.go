// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/kbochat-tui/internal/config"
)

// newConfigCommand groups the config subcommands. Without one it shows the
// effective configuration.
//
//	kbochat config          effective configuration as TOML
//	kbochat config path     config file location
//	kbochat config reset    write the defaults to the config file
//
// Only show reads the file, so path and reset still work when it is broken.
func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or reset the configuration",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.resolvePath()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, a)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration (file, environment and flags)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfig(cmd, a)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.configPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Write the default configuration to the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.SaveTOML(config.Default(), a.configPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "기본 설정을 저장했습니다: %s\n", a.configPath)
				return nil
			},
		},
	)
	return cmd
}

func showConfig(cmd *cobra.Command, a *app) error {
	if err := a.load(); err != nil {
		return err
	}
	data, err := a.cfg.Encode()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", a.configPath)
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
