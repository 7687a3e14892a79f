// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// =============================================================================
// SOURCE TYPE
// =============================================================================

// Source tags where an assistant answer came from.
type Source string

const (
	SourceNone   Source = ""
	SourceRule   Source = "rule"
	SourceRAG    Source = "rag"
	SourceHybrid Source = "hybrid"
	SourceSystem Source = "system"
	SourceError  Source = "error"
)

// Known reports whether s is one of the tags the transcript has a badge for.
func (s Source) Known() bool {
	switch s {
	case SourceRule, SourceRAG, SourceHybrid, SourceSystem, SourceError:
		return true
	}
	return false
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a supporting document returned with an answer.
// It is display data only.
type Citation struct {
	Season         int    `json:"season"`
	Pitcher        string `json:"pitcher"`
	Batter         string `json:"batter"`
	ContentPreview string `json:"content_preview"`
}

// UnmarshalJSON decodes a citation leniently. Fields come from vector-store
// metadata passed through untouched, so season may be a number, a numeric
// string or null, and text fields may be null or numbers. Anything that
// cannot be read is left at its zero value instead of failing the answer.
func (c *Citation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Season         json.RawMessage `json:"season"`
		Pitcher        json.RawMessage `json:"pitcher"`
		Batter         json.RawMessage `json:"batter"`
		ContentPreview json.RawMessage `json:"content_preview"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object: keep an empty citation.
		*c = Citation{}
		return nil
	}
	*c = Citation{
		Season:         lenientInt(raw.Season),
		Pitcher:        lenientString(raw.Pitcher),
		Batter:         lenientString(raw.Batter),
		ContentPreview: lenientString(raw.ContentPreview),
	}
	return nil
}

func lenientInt(data json.RawMessage) int {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
		return 0
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i
		}
	}
	return 0
}

func lenientString(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String()
	}
	return ""
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

const (
	// GreetingText opens every new conversation.
	GreetingText = "안녕하세요! ⚾ KBO 매치업 분석 챗봇입니다.\n\n" +
		"다음과 같은 질문을 해보세요:\n" +
		"• 2024년 김광현 vs 최정 매치업 알려줘\n" +
		"• 양현종이 삼진을 많이 잡을 수 있는 타자는?\n" +
		"• 2사 만루에서 원태인이 나성범에게 슬라이더를 던지면?"

	// ApologyText replaces the answer when the ask call fails.
	ApologyText = "죄송합니다. 오류가 발생했습니다. 다시 시도해주세요."
)

// Message represents a single message in a conversation.
// Messages are values; once appended to a Conversation they are never changed.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Answer metadata (assistant messages only)
	Source    Source          `json:"source,omitempty"`
	Sources   []Citation      `json:"sources,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
	DebugInfo json.RawMessage `json:"debug_info,omitempty"`
}

// NewUserMessage creates a user message holding the raw draft text.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an answer message.
func NewAssistantMessage(content string, source Source, sources []Citation) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Source:    source,
		Sources:   cloneCitations(sources),
	}
}

// NewErrorMessage creates the apology shown when a question could not be answered.
func NewErrorMessage() Message {
	msg := NewAssistantMessage(ApologyText, SourceError, nil)
	msg.IsError = true
	return msg
}

// NewGreetingMessage creates the system-sourced greeting.
func NewGreetingMessage() Message {
	return NewAssistantMessage(GreetingText, SourceSystem, nil)
}

// IsUser returns true for messages typed by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// HasSources returns true if the message carries at least one citation.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}

// IsBlank returns true if the content is empty or whitespace only.
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Content) == ""
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// clone returns a copy that shares no mutable state with m.
func (m Message) clone() Message {
	m.Sources = cloneCitations(m.Sources)
	if m.DebugInfo != nil {
		m.DebugInfo = append(json.RawMessage(nil), m.DebugInfo...)
	}
	return m
}

func cloneCitations(in []Citation) []Citation {
	if len(in) == 0 {
		return nil
	}
	out := make([]Citation, len(in))
	copy(out, in)
	return out
}
