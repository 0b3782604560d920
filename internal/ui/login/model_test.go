// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

func newTestModel() Model {
	return New(styles.NewTheme(), api.NewClient("http://127.0.0.1:1"))
}

func TestSubmitRequiresFields(t *testing.T) {
	m := newTestModel()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "email and password are required")
}

func TestRegisterRequiresLongerPassword(t *testing.T) {
	m := newTestModel()
	m.toggleMode()
	require.Equal(t, ModeRegister, m.Mode())

	m.email.SetValue("a@b.c")
	m.password.SetValue("short")

	m, cmd := m.submit()
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "at least 6 characters")
}

func TestLoginAcceptsShortPassword(t *testing.T) {
	// Existing accounts may predate the length rule.
	m := newTestModel()
	m.email.SetValue("a@b.c")
	m.password.SetValue("abc")

	m, cmd := m.submit()
	assert.NotNil(t, cmd)
	assert.True(t, m.busy)
}

func TestModeToggleClearsError(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotEmpty(t, m.errMsg)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Empty(t, m.errMsg)
	assert.Equal(t, ModeRegister, m.Mode())
	assert.Contains(t, m.View(), "Create account")
}

func TestAuthResultError(t *testing.T) {
	m := newTestModel()
	m.busy = true

	m, cmd := m.Update(authResultMsg{email: "a@b.c", err: api.ErrUnauthorized})
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.Contains(t, m.View(), "invalid email or password")
}

func TestAuthResultSuccessEmitsMsg(t *testing.T) {
	m := newTestModel()
	m.busy = true

	m, cmd := m.Update(authResultMsg{email: "a@b.c"})
	require.NotNil(t, cmd)

	msg := cmd()
	success, ok := msg.(AuthSuccessMsg)
	require.True(t, ok)
	assert.Equal(t, "a@b.c", success.Email)
	assert.False(t, m.busy)
}

func TestFocusCycle(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, focusEmail, m.focus)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusPassword, m.focus)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusSubmit, m.focus)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusEmail, m.focus)
}
