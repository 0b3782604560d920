// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "github.com/xst-ai/xst-tui/internal/model"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CredentialsRequest is the body for /api/login and /api/register.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SendMessageRequest is the body for /api/message/send.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

// PrepareRequest is the body for /api/pay/prepare.
type PrepareRequest struct {
	Amount int    `json:"amount"`
	Method string `json:"method"`
}

// Payment methods accepted by /api/pay/prepare.
const (
	PayMethodAlipay = "alipay"
	PayMethodWechat = "wechat"
)

// RechargeAmounts is the fixed set of amounts the recharge flow offers.
var RechargeAmounts = []int{5, 20, 50}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// MeResponse is the body of a successful /api/me.
type MeResponse struct {
	User model.User `json:"user"`
}

// ConversationsResponse is the body of GET /api/conversation.
type ConversationsResponse struct {
	Conversations []model.Conversation `json:"conversations"`
}

// CreateConversationResponse is the body of POST /api/conversation.
type CreateConversationResponse struct {
	ConversationID string `json:"conversationId"`
}

// MessagesResponse is the body of /api/message/list.
type MessagesResponse struct {
	Messages []model.Message `json:"messages"`
}

// SendMessageResponse is the body of /api/message/send.
type SendMessageResponse struct {
	Reply string `json:"reply"`
}

// UploadResponse is the body of a successful /api/upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// PrepareResponse is the body of /api/pay/prepare.
type PrepareResponse struct {
	QRCodeURL string `json:"qrcodeUrl"`
}

// errorResponse is the backend's error envelope on non-2xx statuses.
type errorResponse struct {
	Error string `json:"error"`
}
