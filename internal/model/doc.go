// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: append-only message list with the Idle/Pending submission gate
//   - Message: single message with role, content, timestamp and answer metadata
//   - Citation: supporting document attached to an answer
//   - Source: answer source tag (rule, rag, hybrid, system, error)
//   - Ticket: handle for the one outstanding question
//
// # Usage
//
//	conv := model.NewConversation() // starts with the greeting
//	ticket, err := conv.Begin("2024년 김광현 vs 최정 매치업 알려줘")
//	if err != nil {
//	    return // blank draft or already pending
//	}
//	// ... ask the backend ...
//	_ = conv.Settle(ticket, model.NewAssistantMessage(answer, model.SourceRAG, nil))
package model
