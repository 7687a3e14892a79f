// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmuntal/stateless"
)

// =============================================================================
// GATE STATES
// =============================================================================

const (
	stateIdle    = "idle"
	statePending = "pending"

	triggerSubmit = "submit"
	triggerSettle = "settle"
)

var (
	// ErrEmptyDraft is returned by Begin for empty or whitespace-only drafts.
	ErrEmptyDraft = errors.New("draft is empty")

	// ErrPending is returned by Begin while a question is outstanding.
	ErrPending = errors.New("a question is already pending")

	// ErrNotPending is returned by Settle when no question is outstanding.
	ErrNotPending = errors.New("no question is pending")

	// ErrStaleTicket is returned by Settle for a ticket other than the outstanding one.
	ErrStaleTicket = errors.New("ticket does not match the pending question")
)

// Ticket identifies one outstanding question. Begin issues it and Settle consumes it.
type Ticket struct {
	id string
}

// ID returns the ticket identifier, empty for the zero Ticket.
func (t Ticket) ID() string {
	return t.id
}

// IsZero reports whether t was never issued.
func (t Ticket) IsZero() bool {
	return t.id == ""
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the append-only message list for one session plus the
// Idle/Pending gate. It has a single writer (the UI loop) and no locking.
type Conversation struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	messages []Message
	gate     *stateless.StateMachine
	ticket   Ticket
}

// NewConversation creates a conversation seeded with the greeting message.
func NewConversation() *Conversation {
	c := &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		messages:  make([]Message, 0, 16),
		gate:      newGate(),
	}
	c.Append(NewGreetingMessage())
	return c
}

func newGate() *stateless.StateMachine {
	sm := stateless.NewStateMachine(stateIdle)
	sm.Configure(stateIdle).
		Permit(triggerSubmit, statePending)
	sm.Configure(statePending).
		Permit(triggerSettle, stateIdle)
	return sm
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

// Append adds a message to the end of the conversation.
// Earlier entries are never touched.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg.clone())
	c.UpdatedAt = time.Now()
}

// SetPending opens or closes the submission gate. Setting the current value is a no-op.
func (c *Conversation) SetPending(pending bool) {
	switch {
	case pending && !c.Pending():
		_ = c.gate.Fire(triggerSubmit)
	case !pending && c.Pending():
		_ = c.gate.Fire(triggerSettle)
		c.ticket = Ticket{}
	}
}

// Pending returns true while a question is outstanding.
func (c *Conversation) Pending() bool {
	return c.gate.MustState() == statePending
}

// Messages returns a copy of the message list in creation order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	for i, msg := range c.messages {
		out[i] = msg.clone()
	}
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recent message.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1].clone(), true
}

// LastAssistant returns the most recent assistant message.
func (c *Conversation) LastAssistant() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i].clone(), true
		}
	}
	return Message{}, false
}

// LastWithSources returns the most recent message that carries citations.
func (c *Conversation) LastWithSources() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].HasSources() {
			return c.messages[i].clone(), true
		}
	}
	return Message{}, false
}

// =============================================================================
// SUBMISSION LIFECYCLE
// =============================================================================

// Begin starts a submission: it appends the user message with the raw draft,
// closes the gate and returns the ticket the answer must be settled with.
// Nothing changes when the draft is blank or a question is already pending.
func (c *Conversation) Begin(draft string) (Ticket, error) {
	if strings.TrimSpace(draft) == "" {
		return Ticket{}, ErrEmptyDraft
	}
	if ok, err := c.gate.CanFire(triggerSubmit); err != nil || !ok {
		return Ticket{}, ErrPending
	}

	if err := c.gate.Fire(triggerSubmit); err != nil {
		return Ticket{}, errors.Wrap(err, "open submission")
	}
	c.Append(NewUserMessage(draft))
	c.ticket = Ticket{id: uuid.NewString()}
	return c.ticket, nil
}

// Settle appends the single reply for ticket and reopens the gate.
// A ticket can be settled once; later calls return ErrNotPending or ErrStaleTicket.
func (c *Conversation) Settle(ticket Ticket, reply Message) error {
	if !c.Pending() {
		return ErrNotPending
	}
	if ticket.IsZero() || ticket != c.ticket {
		return ErrStaleTicket
	}

	reply.Role = RoleAssistant
	c.Append(reply)
	c.ticket = Ticket{}
	return c.gate.Fire(triggerSettle)
}
