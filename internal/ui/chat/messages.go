// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/xst-ai/xst-tui/internal/model"

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// MeResultMsg carries the current identity and power balance.
type MeResultMsg struct {
	User *model.User
	Err  error
}

// PowerUpdatedMsg signals that the balance may have changed server-side.
// It carries no payload; listeners re-fetch /api/me. This mirrors how the
// recharge flow only learns about completion by asking again.
type PowerUpdatedMsg struct{}

// ConversationsMsg carries the refreshed conversation list.
type ConversationsMsg struct {
	Conversations []model.Conversation
	Err           error
}

// ConversationCreatedMsg carries the ID of a freshly created conversation.
type ConversationCreatedMsg struct {
	ID  string
	Err error
}

// MessagesLoadedMsg carries the history for one conversation.
type MessagesLoadedMsg struct {
	ConversationID string
	Messages       []model.Message
	Err            error
}

// SendResultMsg carries the outcome of a send. LocalID identifies the
// optimistic user message so its status can be resolved.
type SendResultMsg struct {
	ConversationID string
	LocalID        string
	Reply          string
	Err            error
}

// UploadResultMsg carries the stored URL of an uploaded image.
type UploadResultMsg struct {
	URL string
	Err error
}

// PayPreparedMsg carries the payment QR code link.
type PayPreparedMsg struct {
	QRCodeURL string
	Err       error
}

// LogoutDoneMsg signals that the session has been invalidated.
type LogoutDoneMsg struct {
	Err error
}

// SessionExpiredMsg signals that the backend rejected the session.
// The top-level model returns to the login screen.
type SessionExpiredMsg struct{}
