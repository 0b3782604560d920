// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/config"
	"github.com/xst-ai/xst-tui/internal/session"
	"github.com/xst-ai/xst-tui/internal/ui/chat"
	"github.com/xst-ai/xst-tui/internal/ui/login"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

func testCookies() []*http.Cookie {
	return []*http.Cookie{{
		Name:    "session",
		Value:   "abc123",
		Path:    "/",
		Expires: time.Now().Add(24 * time.Hour),
	}}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = "http://127.0.0.1:1"
	return cfg
}

func newTestApp(t *testing.T) appModel {
	t.Helper()
	theme := styles.NewTheme()
	client := api.NewClient("http://127.0.0.1:1")
	store := session.NewStoreAt(filepath.Join(t.TempDir(), "session.json"))
	return newAppModel(theme, client, testConfig(), store)
}

func TestAppStartsAtLoginWithoutSession(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, stateLogin, app.state)
}

func TestAppEntersChatOnAuthSuccess(t *testing.T) {
	app := newTestApp(t)

	next, cmd := app.Update(login.AuthSuccessMsg{Email: "a@b.c"})
	require.NotNil(t, cmd)

	got, ok := next.(appModel)
	require.True(t, ok)
	assert.Equal(t, stateChat, got.state)
}

func TestAppReturnsToLoginOnSessionExpiry(t *testing.T) {
	app := newTestApp(t)
	next, _ := app.Update(login.AuthSuccessMsg{Email: "a@b.c"})
	app = next.(appModel)

	next, cmd := app.Update(chat.SessionExpiredMsg{})
	require.NotNil(t, cmd)

	got := next.(appModel)
	assert.Equal(t, stateLogin, got.state)
}

func TestAppReturnsToLoginOnLogout(t *testing.T) {
	app := newTestApp(t)
	next, _ := app.Update(login.AuthSuccessMsg{Email: "a@b.c"})
	app = next.(appModel)

	next, _ = app.Update(chat.LogoutDoneMsg{})
	got := next.(appModel)
	assert.Equal(t, stateLogin, got.state)
}

func TestAppQuitsOnCtrlC(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppRestoresSavedSession(t *testing.T) {
	theme := styles.NewTheme()
	client := api.NewClient("http://127.0.0.1:1")
	store := session.NewStoreAt(filepath.Join(t.TempDir(), "session.json"))

	require.NoError(t, store.Save(client.BaseURL(), testCookies()))

	app := newAppModel(theme, client, testConfig(), store)
	assert.Equal(t, stateChat, app.state)
}

func TestAppFatalConfigWithoutBaseURL(t *testing.T) {
	theme := styles.NewTheme()
	client := api.NewClient("")
	store := session.NewStoreAt(filepath.Join(t.TempDir(), "session.json"))

	app := newAppModel(theme, client, config.Default(), store)
	require.Equal(t, stateFatalConfig, app.state)

	// The instructions render in the UI instead of crashing out.
	assert.Contains(t, app.View(), "xst config set api.base_url")

	// Any key exits.
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppFatalConfigRecoversOnReload(t *testing.T) {
	theme := styles.NewTheme()
	client := api.NewClient("")
	store := session.NewStoreAt(filepath.Join(t.TempDir(), "session.json"))

	app := newAppModel(theme, client, config.Default(), store)
	require.Equal(t, stateFatalConfig, app.state)

	next, cmd := app.Update(configReloadedMsg{cfg: testConfig()})
	require.NotNil(t, cmd)

	got := next.(appModel)
	assert.Equal(t, stateLogin, got.state)
	assert.Equal(t, "http://127.0.0.1:1", got.client.BaseURL())
}
