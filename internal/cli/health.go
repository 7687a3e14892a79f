// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the answer service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setupLineLogging(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			client := a.client()
			status, err := client.Health(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "%s  연결 실패\n", client.BaseURL())
				return err
			}

			engine := "초기화되지 않음"
			if status.EngineInitialized {
				engine = "초기화됨"
			}
			fmt.Fprintf(out, "%s  상태: %s  엔진: %s\n", client.BaseURL(), status.Status, engine)
			if !status.Healthy() {
				return errReported
			}
			return nil
		},
	}
}
