// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/kbochat-tui/internal/api"
	"github.com/jeranaias/kbochat-tui/internal/render"
	"github.com/jeranaias/kbochat-tui/internal/ui/styles"
	"github.com/jeranaias/kbochat-tui/internal/util"
)

// searchPreviewRunes caps each printed document.
const searchPreviewRunes = 200

// searcher is the part of the answer service the search command needs.
type searcher interface {
	Search(ctx context.Context, query string, k int) (*api.SearchResponse, error)
}

func newSearchCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List the matchup documents most similar to a query",
		Example: `  kbochat search 김광현 최정
  kbochat search -k 10 "2사 만루 슬라이더"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setupLineLogging(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer a.close()

			theme := styles.NewThemeNamed(a.cfg.UI.Theme)
			return runSearch(cmd.Context(), a.client(), cmd.OutOrStdout(), theme, strings.Join(args, " "), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "k", api.DefaultSearchLimit, "number of documents")
	return cmd
}

// runSearch prints each retrieved document as a citation header followed by
// a preview of its content.
func runSearch(ctx context.Context, client searcher, out io.Writer, theme *styles.Theme, query string, k int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(query) == "" {
		return api.ErrEmptyQuestion
	}

	resp, err := client.Search(ctx, query, k)
	if err != nil {
		log.Warn().Err(err).Msg("search: request failed")
		fmt.Fprintln(out, "검색에 실패했습니다.")
		return errReported
	}

	fmt.Fprintln(out, theme.DisclosureSummary.Render(fmt.Sprintf("🔎 검색 결과 (%d개)", len(resp.Results))))
	for i, r := range resp.Results {
		header := fmt.Sprintf("문서 %d", i+1)
		if c := r.Citation(); c.Season != 0 || c.Pitcher != "" || c.Batter != "" {
			header = render.CitationHeader(c)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  "+theme.CitationHeader.Render(header))
		if preview := strings.TrimSpace(r.Content); preview != "" {
			fmt.Fprintln(out, "  "+theme.CitationPreview.Render(util.TruncateRunes(preview, searchPreviewRunes)))
		}
	}
	return nil
}
