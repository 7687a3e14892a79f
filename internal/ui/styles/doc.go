// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the kbochat TUI.

Colors are Lip Gloss AdaptiveColor values so the palette follows the terminal
background. Answer source badges are the exception: their fixed colors identify
the answering engine and stay the same everywhere.

Each Theme renders through its own lipgloss.Renderer, so a configured "dark"
or "light" theme overrides the detected background for the whole palette and
"notty" turns colors off.

# Theme

	theme := styles.NewThemeNamed(cfg.UI.Theme) // auto, dark, light or notty
	row := theme.UserBubble.Render("2024년 김광현 vs 최정 매치업 알려줘")
	mdStyle := theme.MarkdownStyle() // "dark", "light" or "notty"
*/
package styles
