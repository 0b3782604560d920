// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/xst-ai/xst-tui/internal/api"
)

// requestTimeout bounds every backend call fired from the UI. Message
// sends wait longer because the assistant reply is generated inline.
const (
	requestTimeout = 30 * time.Second
	sendTimeout    = 120 * time.Second
)

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

// fetchMeCmd loads the current identity and power balance.
func fetchMeCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, err := client.Me(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("fetch identity failed")
			if api.IsUnauthorized(err) {
				return SessionExpiredMsg{}
			}
			return MeResultMsg{Err: err}
		}
		return MeResultMsg{User: user}
	}
}

// fetchConversationsCmd refreshes the conversation list.
func fetchConversationsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		conversations, err := client.Conversations(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("fetch conversations failed")
			if api.IsUnauthorized(err) {
				return SessionExpiredMsg{}
			}
		}
		return ConversationsMsg{Conversations: conversations, Err: err}
	}
}

// createConversationCmd creates a new empty conversation.
func createConversationCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		id, err := client.CreateConversation(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("create conversation failed")
			if api.IsUnauthorized(err) {
				return SessionExpiredMsg{}
			}
		}
		return ConversationCreatedMsg{ID: id, Err: err}
	}
}

// loadMessagesCmd fetches the history for a conversation.
func loadMessagesCmd(client *api.Client, conversationID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		messages, err := client.Messages(ctx, conversationID)
		if err != nil {
			log.Warn().Err(err).Str("conversation", conversationID).Msg("load messages failed")
			if api.IsUnauthorized(err) {
				return SessionExpiredMsg{}
			}
		}
		return MessagesLoadedMsg{ConversationID: conversationID, Messages: messages, Err: err}
	}
}

// sendMessageCmd posts content and waits for the assistant reply.
func sendMessageCmd(client *api.Client, conversationID, localID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		reply, err := client.Send(ctx, conversationID, content)
		if err != nil {
			log.Warn().Err(err).Str("conversation", conversationID).Msg("send failed")
			if api.IsUnauthorized(err) {
				return SessionExpiredMsg{}
			}
		}
		return SendResultMsg{
			ConversationID: conversationID,
			LocalID:        localID,
			Reply:          reply,
			Err:            err,
		}
	}
}

// uploadCmd sends an image file to the backend.
func uploadCmd(client *api.Client, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return UploadResultMsg{Err: err}
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		url, err := client.Upload(ctx, path, file)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("upload failed")
			if api.IsUnauthorized(err) {
				return SessionExpiredMsg{}
			}
		}
		return UploadResultMsg{URL: url, Err: err}
	}
}

// preparePayCmd requests a payment QR code link.
func preparePayCmd(client *api.Client, amount int, method string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		qrURL, err := client.PreparePayment(ctx, amount, method)
		if err != nil {
			log.Warn().Err(err).Int("amount", amount).Str("method", method).Msg("prepare payment failed")
			if api.IsUnauthorized(err) {
				return SessionExpiredMsg{}
			}
		}
		return PayPreparedMsg{QRCodeURL: qrURL, Err: err}
	}
}

// logoutCmd invalidates the session server-side.
func logoutCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.Logout(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("logout failed")
		}
		return LogoutDoneMsg{Err: err}
	}
}
