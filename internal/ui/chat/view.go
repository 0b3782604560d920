// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xst-ai/xst-tui/internal/model"
	"github.com/xst-ai/xst-tui/internal/ui/components"
)

// =============================================================================
// THREAD RENDERING
// =============================================================================

// refreshThread rebuilds the viewport content and pins it to the bottom.
func (m *Model) refreshThread() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderThread())
	m.viewport.GotoBottom()
}

// renderThread renders all messages in the active conversation.
func (m *Model) renderThread() string {
	if m.loadingThread {
		return m.theme.ThinkingText.Render("loading messages...")
	}
	if m.activeConv == "" {
		return m.theme.EmptyThread.
			Width(m.viewport.Width).
			Render("\nno conversation found\n\npress ctrl+t to start one")
	}
	if len(m.messages) == 0 {
		return m.theme.EmptyThread.
			Width(m.viewport.Width).
			Render("\nNo messages yet. Say something!")
	}

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg))
	}
	return b.String()
}

// renderMessage renders one message: role label, status marker, and the
// content split into text and image segments.
func (m *Model) renderMessage(msg model.Message) string {
	var b strings.Builder

	if msg.IsUser() {
		b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
	} else {
		b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()))
	}

	switch msg.Status {
	case model.StatusPending:
		b.WriteString(" " + m.theme.PendingMark.Render("(sending...)"))
	case model.StatusFailed:
		b.WriteString(" " + m.theme.FailedMark.Render("[X] failed"))
	}
	b.WriteString("\n")

	segments := model.SplitSegments(msg.Content)
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		switch seg.Kind {
		case model.SegmentImage:
			b.WriteString(m.theme.ImageLink.Render("[image] " + seg.Text))
		default:
			b.WriteString(m.renderText(msg, seg.Text))
		}
	}

	return b.String()
}

// renderText renders a text segment, through glamour for assistant
// markdown when available.
func (m *Model) renderText(msg model.Message, text string) string {
	if !msg.IsUser() && m.renderer != nil {
		rendered, err := m.renderer.Render(text)
		if err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	if msg.IsUser() {
		return m.theme.UserText.Render(text)
	}
	return m.theme.AssistantText.Render(text)
}

// =============================================================================
// SCREEN LAYOUT
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	if m.gateLoading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.theme.ThinkingText.Render("loading your account..."))
	}
	if m.gateErr != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.theme.ErrorStyle.Render(m.gateErr))
	}

	header := m.theme.Header.Width(m.width).Render(
		m.theme.HeaderBrand.Render("xst") + "  " + m.headerTitle())

	thread := m.viewport.View()
	if m.sending || m.uploading {
		thread += "\n" + m.spinner.View()
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		thread,
		m.composer.View(),
	)

	body := components.JoinHorizontal(m.sidebar.View(), main)

	parts := []string{header, body}

	// Toasts sit in a strip above the status bar, right-aligned.
	if m.toasts.HasToasts() {
		stack := components.RenderToastStack(m.toasts.GetToasts(), m.width, 0)
		parts = append(parts, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, stack))
	}

	parts = append(parts, m.statusBar.View())
	screen := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.showRecharge {
		return components.PlaceModal(m.recharge.View(), m.width, m.height)
	}

	return screen
}

// headerTitle shows the active conversation title.
func (m Model) headerTitle() string {
	if selected := m.sidebar.Selected(); selected != nil && selected.ID == m.activeConv {
		return m.theme.HeaderTitle.Render(selected.DisplayTitle())
	}
	return m.theme.HeaderTitle.Render("")
}
