// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by kbochat packages.
//
// String helpers measure display columns with go-runewidth so Hangul player
// names line up in the header and status bar. AtomicWriteFile is used for the
// config file and the REPL history.
//
//	title := util.TruncateWidth("⚾ KBO 매치업 챗봇", width)
//	err := util.AtomicWriteFile(path, data, 0o600)
package util
