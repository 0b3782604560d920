// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xst-ai/xst-tui/internal/model"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom bar: identity, power balance, and shortcuts.
type StatusBar struct {
	theme *styles.Theme
	width int
	user  *model.User
	note  string
}

// NewStatusBar creates a status bar with the given theme.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{theme: theme}
}

// SetWidth sets the render width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// SetUser sets the identity shown in the bar. Nil clears it.
func (s *StatusBar) SetUser(user *model.User) {
	s.user = user
}

// SetNote sets a transient note shown in place of the shortcut hints,
// such as an upload cooldown countdown. Empty restores the hints.
func (s *StatusBar) SetNote(note string) {
	s.note = note
}

// View renders the status bar.
func (s StatusBar) View() string {
	if s.width <= 0 {
		return ""
	}

	var left string
	if s.user != nil {
		powerStyle := s.theme.PowerOK
		power := "power " + formatCount(s.user.Power)
		if s.user.IsLowPower() {
			powerStyle = s.theme.PowerLow
			power += " " + styles.StatusIndicators.Warning
		}
		left = s.user.Email + "  " + powerStyle.Render(power)
	} else {
		left = s.theme.ShortcutDesc.Render("not signed in")
	}

	right := s.note
	if right == "" {
		right = s.shortcuts()
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	content := left + strings.Repeat(" ", gap) + right
	return s.theme.StatusBar.Width(s.width).Render(content)
}

// shortcuts renders the key hints shown on the right.
func (s StatusBar) shortcuts() string {
	pairs := []struct{ key, desc string }{
		{"^T", "new"},
		{"^N/^P", "switch"},
		{"^B", "recharge"},
		{"^Q", "logout"},
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, s.theme.ShortcutKey.Render(p.key)+" "+s.theme.ShortcutDesc.Render(p.desc))
	}
	return strings.Join(parts, "  ")
}
