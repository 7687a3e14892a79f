// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view for kbochat.

# Key Components

## Model (model.go)

The Model struct is the Bubble Tea model holding the conversation, the
composer textarea, the transcript viewport and the loading spinner.

## Update Loop (update.go, input.go)

Update is the only writer of the conversation. Submitting a draft calls
Conversation.Begin and starts AskCmd, which reports back with exactly one
AnswerMsg; handleAnswer settles the conversation with it and refocuses the
composer. Blank drafts and submissions while pending are ignored.

## View Rendering (view.go)

Header with backend status, transcript rows (user bubbles on the right,
answers on the left with a source badge, markdown body and citation
disclosure), the composer and a status bar with shortcuts.

# Keyboard Shortcuts

	Enter               send the draft
	Alt+Enter, Ctrl+J   insert a newline (shift+enter where the terminal reports it)
	Ctrl+O              open or close the latest citation list
	Ctrl+Y              copy the latest answer
	PgUp, PgDn          scroll
	Ctrl+L              redraw
	Esc, Ctrl+C         quit
*/
package chat
