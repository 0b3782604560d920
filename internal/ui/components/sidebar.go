// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/xst-ai/xst-tui/internal/model"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

// =============================================================================
// SIDEBAR (CONVERSATION LIST)
// =============================================================================

// Sidebar renders the conversation list with a selection cursor.
type Sidebar struct {
	theme         *styles.Theme
	conversations []model.Conversation
	selected      int
	width         int
	height        int
	scrollOffset  int
}

// NewSidebar creates a sidebar with the given theme.
func NewSidebar(theme *styles.Theme) Sidebar {
	return Sidebar{theme: theme}
}

// SetConversations replaces the conversation list, keeping the current
// selection on the same conversation ID when it still exists.
func (s *Sidebar) SetConversations(conversations []model.Conversation) {
	var selectedID string
	if s.selected >= 0 && s.selected < len(s.conversations) {
		selectedID = s.conversations[s.selected].ID
	}

	s.conversations = conversations
	s.selected = 0
	for i, c := range conversations {
		if c.ID == selectedID {
			s.selected = i
			break
		}
	}
	s.clampScroll()
}

// Conversations returns the current conversation list.
func (s *Sidebar) Conversations() []model.Conversation {
	return s.conversations
}

// Selected returns the currently selected conversation, or nil when empty.
func (s *Sidebar) Selected() *model.Conversation {
	if s.selected < 0 || s.selected >= len(s.conversations) {
		return nil
	}
	return &s.conversations[s.selected]
}

// SelectID moves the selection to the conversation with the given ID.
// Returns false when the ID is not in the list.
func (s *Sidebar) SelectID(id string) bool {
	for i, c := range s.conversations {
		if c.ID == id {
			s.selected = i
			s.clampScroll()
			return true
		}
	}
	return false
}

// Next moves the selection down, stopping at the end.
func (s *Sidebar) Next() {
	if s.selected < len(s.conversations)-1 {
		s.selected++
		s.clampScroll()
	}
}

// Prev moves the selection up, stopping at the start.
func (s *Sidebar) Prev() {
	if s.selected > 0 {
		s.selected--
		s.clampScroll()
	}
}

// SetSize sets the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.clampScroll()
}

// clampScroll keeps the selected row inside the visible window.
func (s *Sidebar) clampScroll() {
	visible := s.visibleRows()
	if visible <= 0 {
		return
	}
	if s.selected < s.scrollOffset {
		s.scrollOffset = s.selected
	}
	if s.selected >= s.scrollOffset+visible {
		s.scrollOffset = s.selected - visible + 1
	}
	if s.scrollOffset < 0 {
		s.scrollOffset = 0
	}
}

// visibleRows returns how many conversation rows fit below the title.
func (s *Sidebar) visibleRows() int {
	return s.height - 2
}

// View renders the sidebar.
func (s Sidebar) View() string {
	if s.width <= 0 {
		return ""
	}

	innerWidth := s.width - 4
	if innerWidth < 4 {
		innerWidth = 4
	}

	var b strings.Builder

	title := s.theme.SidebarTitle.Render("Conversations (" + formatCount(len(s.conversations)) + ")")
	b.WriteString(title)
	b.WriteString("\n\n")

	if len(s.conversations) == 0 {
		b.WriteString(s.theme.ConversationUntitled.Render("no conversations yet"))
	}

	visible := s.visibleRows()
	end := s.scrollOffset + visible
	if end > len(s.conversations) {
		end = len(s.conversations)
	}

	for i := s.scrollOffset; i < end; i++ {
		conv := s.conversations[i]
		title := conv.DisplayTitle()
		if runewidth.StringWidth(title) > innerWidth {
			title = runewidth.Truncate(title, innerWidth, "...")
		}

		var row string
		switch {
		case i == s.selected:
			row = s.theme.ConversationSelected.Render(title)
		case conv.Title == "":
			row = s.theme.ConversationUntitled.Render(title)
		default:
			row = s.theme.ConversationItem.Render(title)
		}
		b.WriteString(row)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return s.theme.Sidebar.
		Width(s.width - 1).
		Height(s.height).
		Render(b.String())
}

// JoinHorizontal lays the sidebar next to the main pane.
func JoinHorizontal(sidebar, main string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}
