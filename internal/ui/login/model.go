// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login implements the sign-in and registration screen.
//
// The screen is a two-field form with a mode toggle. Registration chains
// into login on success, so the rest of the app only ever observes a
// logged-in session.
package login

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

// =============================================================================
// MODES AND MESSAGES
// =============================================================================

// Mode selects between the login and register forms.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// minRegisterPassword is the shortest password accepted at registration.
// Login has no length check so existing accounts are never locked out.
const minRegisterPassword = 6

// AuthSuccessMsg is emitted when a session has been established.
type AuthSuccessMsg struct {
	Email string
}

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	email string
	err   error
}

// =============================================================================
// MODEL
// =============================================================================

// focusField identifies which form element has focus.
type focusField int

const (
	focusEmail focusField = iota
	focusPassword
	focusSubmit
)

// Model is the login screen state.
type Model struct {
	theme  *styles.Theme
	client *api.Client

	mode     Mode
	email    textinput.Model
	password textinput.Model
	focus    focusField

	busy   bool
	errMsg string
	notice string

	width  int
	height int
}

// New creates the login screen.
func New(theme *styles.Theme, client *api.Client) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Width = 32
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 128
	password.Width = 32

	return Model{
		theme:    theme,
		client:   client,
		email:    email,
		password: password,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// WithNotice returns a copy of the model showing an informational line
// above the form, such as a session expiry explanation.
func (m Model) WithNotice(notice string) Model {
	m.notice = notice
	return m
}

// SetSize records the window dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Mode returns the current form mode.
func (m Model) Mode() Mode {
	return m.mode
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.cycleFocus(-1)
			return m, nil
		case "ctrl+r":
			m.toggleMode()
			return m, nil
		case "enter":
			return m.submit()
		}

	case authResultMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = friendlyAuthError(msg.err)
			return m, nil
		}
		return m, func() tea.Msg { return AuthSuccessMsg{Email: msg.email} }
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// cycleFocus moves focus through email, password, submit.
func (m *Model) cycleFocus(delta int) {
	m.focus = focusField((int(m.focus) + delta + 3) % 3)
	m.email.Blur()
	m.password.Blur()
	switch m.focus {
	case focusEmail:
		m.email.Focus()
	case focusPassword:
		m.password.Focus()
	}
}

// toggleMode switches between login and register, clearing stale errors.
func (m *Model) toggleMode() {
	if m.mode == ModeLogin {
		m.mode = ModeRegister
	} else {
		m.mode = ModeLogin
	}
	m.errMsg = ""
}

// submit validates the form and fires the auth request.
func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if email == "" || password == "" {
		m.errMsg = "email and password are required"
		return m, nil
	}
	if m.mode == ModeRegister && len(password) < minRegisterPassword {
		m.errMsg = "password must be at least 6 characters"
		return m, nil
	}

	m.busy = true
	m.errMsg = ""

	mode := m.mode
	client := m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var err error
		if mode == ModeRegister {
			err = client.Register(ctx, email, password)
			if err == nil {
				err = client.Login(ctx, email, password)
			}
		} else {
			err = client.Login(ctx, email, password)
		}
		if err != nil {
			log.Warn().Err(err).Str("email", email).Msg("auth failed")
		}
		return authResultMsg{email: email, err: err}
	}
}

// friendlyAuthError maps client errors to a short form message.
func friendlyAuthError(err error) string {
	if api.IsUnauthorized(err) {
		return "invalid email or password"
	}
	if api.IsTimeout(err) {
		return "request timed out, try again"
	}
	var clientErr *api.ClientError
	if errors.As(err, &clientErr) && clientErr.Type == api.ErrTypeConnection {
		return "cannot reach the server"
	}
	return err.Error()
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := "Sign in"
	action := "sign in"
	hint := "ctrl+r: create an account"
	if m.mode == ModeRegister {
		title = "Create account"
		action = "register"
		hint = "ctrl+r: back to sign in"
	}

	if m.notice != "" {
		b.WriteString(m.theme.WarningStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(m.theme.FormTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.theme.FormLabel.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.FormLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(m.theme.ThinkingText.Render("signing in..."))
	case m.focus == focusSubmit:
		b.WriteString(m.theme.ButtonActive.Render(action))
	default:
		b.WriteString(m.theme.ButtonInactive.Render(action))
	}

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.FormError.Render(m.errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.FormHint.Render(hint))

	box := m.theme.FormBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
