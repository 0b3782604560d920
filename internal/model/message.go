// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/xst-ai/xst-tui/internal/util"
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

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE STATUS
// =============================================================================

// Status tracks the delivery state of a locally appended message.
//
// Server-delivered messages are always confirmed. Optimistically appended
// user messages start pending and transition to confirmed when the send
// endpoint replies, or to failed when it does not, so failed sends are
// visibly distinguishable instead of silently looking delivered.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation thread.
type Message struct {
	// Identity: client-generated UUID for optimistic sends,
	// server-assigned otherwise.
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// Delivery state, client-side only. Never sent to the server.
	Status Status `json:"-"`
}

// NewUserMessage creates an optimistic user message with a fresh client ID.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
		Status:    StatusPending,
	}
}

// NewAssistantMessage creates an assistant message from a send reply.
// The backend returns only the reply text, so the client assigns the
// identity and timestamp, mirroring what a reload would fetch.
func NewAssistantMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
		Status:    StatusConfirmed,
	}
}

// IsUser returns true for user-authored messages.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Preview returns a truncated single-line preview of the message content.
// Rune-based truncation keeps multi-byte characters intact.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.FirstLine(m.Content), maxLen)
}
