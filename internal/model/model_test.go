// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, StatusPending, msg.Status)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.True(t, msg.IsUser())

	// IDs are unique per message.
	other := NewUserMessage("hello")
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("hi there")

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, StatusConfirmed, msg.Status)
	assert.False(t, msg.IsUser())
}

func TestMessagePreview(t *testing.T) {
	msg := Message{Content: "a long message body here"}
	assert.Equal(t, "a long...", msg.Preview(9))
	assert.Equal(t, "a long message body here", msg.Preview(100))

	cjk := Message{Content: "你好世界你好世界"}
	assert.Equal(t, "你好世界你好世界", cjk.Preview(8))
	assert.Equal(t, "你好..."[:len("你好...")], cjk.Preview(5))
}

func TestConversationDisplayTitle(t *testing.T) {
	assert.Equal(t, "weather chat", Conversation{Title: "weather chat"}.DisplayTitle())
	assert.Equal(t, "untitled", Conversation{}.DisplayTitle())
}

func TestUserIsLowPower(t *testing.T) {
	assert.True(t, User{Power: 0}.IsLowPower())
	assert.True(t, User{Power: 10}.IsLowPower())
	assert.False(t, User{Power: 11}.IsLowPower())
}

func TestRoleDisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.Equal(t, "system", Role("system").DisplayName())
}
