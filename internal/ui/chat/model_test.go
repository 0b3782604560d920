// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/config"
	"github.com/xst-ai/xst-tui/internal/model"
	"github.com/xst-ai/xst-tui/internal/ui/components"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

func newTestChat() Model {
	cfg := config.Default()
	cfg.SetDefaults()
	m := New(styles.NewTheme(), api.NewClient("http://127.0.0.1:1"), cfg)
	m.resize(100, 30)
	return m
}

func TestGatePassesOnMeResult(t *testing.T) {
	m := newTestChat()
	assert.Contains(t, m.View(), "loading your account")

	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	require.NotNil(t, m.User())
	assert.Equal(t, 50, m.User().Power)
	assert.NotContains(t, m.View(), "loading your account")
}

func TestGateShowsError(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{Err: errors.New("boom")})
	assert.Contains(t, m.View(), "could not load your account")
}

func TestPowerUpdatedTriggersRefetch(t *testing.T) {
	m := newTestChat()
	_, cmd := m.Update(PowerUpdatedMsg{})
	assert.NotNil(t, cmd, "power update must trigger an identity re-fetch")
}

func TestConversationsSelectFirst(t *testing.T) {
	m := newTestChat()
	m, cmd := m.Update(ConversationsMsg{Conversations: []model.Conversation{
		{ID: "c1", Title: "first"},
		{ID: "c2", Title: "second"},
	}})

	assert.Equal(t, "c1", m.ActiveConversation())
	assert.NotNil(t, cmd, "selecting a conversation loads its messages")
}

func TestMessagesLoadedForStaleConversationIgnored(t *testing.T) {
	m := newTestChat()
	m.activeConv = "c2"

	m, _ = m.Update(MessagesLoadedMsg{
		ConversationID: "c1",
		Messages:       []model.Message{model.NewAssistantMessage("old")},
	})
	assert.Empty(t, m.messages)
}

func TestSubmitOptimisticThenConfirmed(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	m.activeConv = "c1"

	m.composer.input.SetValue("hello")
	m, cmd := m.submit()
	require.NotNil(t, cmd)
	require.Len(t, m.messages, 1)
	assert.Equal(t, model.StatusPending, m.messages[0].Status)
	assert.True(t, m.sending)

	localID := m.messages[0].ID
	m, _ = m.Update(SendResultMsg{ConversationID: "c1", LocalID: localID, Reply: "hi there"})
	require.Len(t, m.messages, 2)
	assert.Equal(t, model.StatusConfirmed, m.messages[0].Status)
	assert.Equal(t, model.RoleAssistant, m.messages[1].Role)
	assert.False(t, m.sending)
}

func TestSendFailureMarksMessageFailed(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	m.activeConv = "c1"

	m.composer.input.SetValue("hello")
	m, _ = m.submit()
	localID := m.messages[0].ID

	m, _ = m.Update(SendResultMsg{ConversationID: "c1", LocalID: localID, Err: errors.New("boom")})
	require.Len(t, m.messages, 1, "no assistant reply on failure")
	assert.Equal(t, model.StatusFailed, m.messages[0].Status)
	assert.True(t, m.toasts.HasToasts())
}

func TestSubmitWarnsButProceedsOnLowPower(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 5}})
	m.activeConv = "c1"

	m.composer.input.SetValue("hello")
	m, cmd := m.submit()
	require.NotNil(t, cmd, "low power never blocks the send")
	require.Len(t, m.messages, 1)
	assert.Equal(t, model.StatusPending, m.messages[0].Status)
	assert.True(t, m.toasts.HasToasts(), "warning toast shown")
	assert.False(t, m.showRecharge)
}

func TestSubmitWithoutConversation(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})

	m.composer.input.SetValue("hello")
	m, cmd := m.submit()
	assert.Nil(t, cmd)
	assert.Empty(t, m.messages)
	assert.True(t, m.toasts.HasToasts())
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	m.activeConv = "c1"

	m.composer.input.SetValue("   ")
	m, cmd := m.submit()
	assert.Nil(t, cmd)
	assert.Empty(t, m.messages)
}

func TestUploadResultAttachesURL(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	m.activeConv = "c1"
	m.uploading = true

	m, _ = m.Update(UploadResultMsg{URL: "/uploads/cat.png"})
	assert.False(t, m.uploading)
	assert.Equal(t, "/uploads/cat.png", m.composer.Attachment())

	// The next send carries the text and the URL on separate lines.
	m.composer.input.SetValue("look at this")
	m, cmd := m.submit()
	require.NotNil(t, cmd)
	require.Len(t, m.messages, 1)
	assert.Equal(t, "look at this\n/uploads/cat.png", m.messages[0].Content)
	assert.Empty(t, m.composer.Attachment(), "send consumes the attachment")
}

func TestUploadFailureKeepsPreviousAttachment(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	m.activeConv = "c1"
	m.composer.ConfirmUpload("/uploads/old.png")
	m.uploading = true

	m, _ = m.Update(UploadResultMsg{Err: api.ErrRateLimited})
	assert.False(t, m.uploading)
	assert.Empty(t, m.messages)
	assert.True(t, m.toasts.HasToasts())
	assert.Equal(t, "/uploads/old.png", m.composer.Attachment())
}

func TestRechargePreparedOpensLinkAndCloses(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})

	// Open modal, confirm with defaults.
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.True(t, m.showRecharge)

	m, cmd := m.handleRechargeKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, components.RechargePreparing, m.recharge.State())

	// Success hands off to the browser and closes the modal; the link
	// lands in a toast for copy/paste.
	m, _ = m.Update(PayPreparedMsg{QRCodeURL: "https://pay.example.com/qr/1"})
	assert.False(t, m.showRecharge)
	assert.True(t, m.toasts.HasToasts())
	assert.Contains(t, m.View(), "pay.example.com")
}

func TestRechargePreparedAfterCloseIgnored(t *testing.T) {
	m := newTestChat()
	m.showRecharge = true
	m.recharge.BeginPrepare()

	m, _ = m.handleRechargeKey(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.showRecharge)

	// The answer for the abandoned prepare changes nothing.
	m, _ = m.Update(PayPreparedMsg{QRCodeURL: "https://pay.example.com/qr/1"})
	assert.False(t, m.showRecharge)
	assert.False(t, m.toasts.HasToasts())
}

func TestRechargePrepareErrorReturnsToChoosing(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	m.showRecharge = true
	m.recharge.BeginPrepare()

	m, _ = m.Update(PayPreparedMsg{Err: errors.New("payment unavailable")})
	assert.True(t, m.showRecharge, "the modal stays open on failure")
	assert.Equal(t, components.RechargeChoosing, m.recharge.State())
	assert.Contains(t, m.View(), "payment unavailable")
}

func TestRechargeEscCloses(t *testing.T) {
	m := newTestChat()
	m.showRecharge = true

	m, _ = m.handleRechargeKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showRecharge)
}

func TestEmptyThreadPlaceholder(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	m.activeConv = "c1"
	m.refreshThread()

	assert.Contains(t, m.View(), "No messages yet")
}

func TestNoConversationPlaceholder(t *testing.T) {
	m := newTestChat()
	m, _ = m.Update(MeResultMsg{User: &model.User{Email: "a@b.c", Power: 50}})
	m, _ = m.Update(ConversationsMsg{})
	m.refreshThread()

	assert.Contains(t, m.View(), "no conversation found")
}

func TestRenderMessageImageSegment(t *testing.T) {
	m := newTestChat()
	msg := model.NewAssistantMessage("here you go\nhttps://cdn.example.com/cat.png")

	rendered := m.renderMessage(msg)
	assert.Contains(t, rendered, "[image] https://cdn.example.com/cat.png")
	assert.Contains(t, rendered, "here you go")
}
