// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

// =============================================================================
// COMPOSER COMMANDS
// =============================================================================

// composerCommand is a slash command typed into the composer instead of a
// message. The terminal has no drag-and-drop, so images are attached by
// path.
type composerCommand int

const (
	cmdNone composerCommand = iota
	cmdAttach
	cmdDetach
)

// parseCommand recognizes "/attach <path>" and "/detach" input.
func parseCommand(value string) (composerCommand, string) {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "/attach ") {
		return cmdAttach, strings.TrimSpace(strings.TrimPrefix(trimmed, "/attach "))
	}
	if trimmed == "/attach" {
		return cmdAttach, ""
	}
	if trimmed == "/detach" {
		return cmdDetach, ""
	}
	return cmdNone, ""
}

// =============================================================================
// COMPOSER
// =============================================================================

// imageExtensions are the file types accepted for attachment, matching
// what the image classifier recognizes in message content.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// Composer is the message input: a textarea plus at most one attached
// image. Attaching uploads immediately; the attachment field holds the
// URL the backend returned, while pendingPath tracks an in-flight
// upload.
type Composer struct {
	theme *styles.Theme
	input textarea.Model

	attachment  string
	pendingPath string
	limiter     *rate.Limiter
	cooldown    time.Duration
	nextAllowed time.Time
	maxBytes    int64

	width int
}

// NewComposer creates a composer with the given upload cooldown and size cap.
func NewComposer(theme *styles.Theme, cooldown time.Duration, maxSizeMB int) Composer {
	input := textarea.New()
	input.Placeholder = "Type a message, or /attach <path> to add an image"
	input.CharLimit = 0
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	// Enter is send; newline moves to alt+enter.
	input.KeyMap.InsertNewline.SetKeys("alt+enter")

	return Composer{
		theme:    theme,
		input:    input,
		limiter:  rate.NewLimiter(rate.Every(cooldown), 1),
		cooldown: cooldown,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
	}
}

// SetWidth sets the render width.
func (c *Composer) SetWidth(width int) {
	c.width = width
	c.input.SetWidth(width - 4)
}

// Focus gives the textarea keyboard focus.
func (c *Composer) Focus() tea.Cmd {
	return c.input.Focus()
}

// Blur removes keyboard focus.
func (c *Composer) Blur() {
	c.input.Blur()
}

// Focused reports whether the textarea has focus.
func (c *Composer) Focused() bool {
	return c.input.Focused()
}

// Value returns the current input text.
func (c *Composer) Value() string {
	return c.input.Value()
}

// Reset clears the input text and any staged attachment.
func (c *Composer) Reset() {
	c.input.Reset()
	c.attachment = ""
}

// ClearInput clears only the typed text, keeping the attachment.
func (c *Composer) ClearInput() {
	c.input.Reset()
}

// Attachment returns the uploaded image URL, empty when none.
func (c *Composer) Attachment() string {
	return c.attachment
}

// PendingPath returns the local file currently being uploaded.
func (c *Composer) PendingPath() string {
	return c.pendingPath
}

// Update passes messages to the underlying textarea.
func (c Composer) Update(msg tea.Msg) (Composer, tea.Cmd) {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// =============================================================================
// ATTACHMENT HANDLING
// =============================================================================

// ErrCooldown is returned when an attach is blocked by the upload cooldown.
var ErrCooldown = errors.New("image upload cooldown active")

// Attach validates an image file and marks it as the pending upload.
// The caller dispatches the actual upload for PendingPath and settles
// it with ConfirmUpload or CancelUpload. The cooldown is only consumed
// by ConfirmUpload, so a failed or cancelled upload never burns the
// window.
func (c *Composer) Attach(path string) error {
	if path == "" {
		return errors.New("usage: /attach <path>")
	}
	if c.pendingPath != "" {
		return errors.New("an image upload is already in progress")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !imageExtensions[ext] {
		return fmt.Errorf("unsupported image type %q", ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if c.maxBytes > 0 && info.Size() > c.maxBytes {
		return fmt.Errorf("%s is too large (max %dMB)", filepath.Base(path), c.maxBytes/(1024*1024))
	}

	if c.limiter.Tokens() < 1 {
		return fmt.Errorf("%w, wait %ds", ErrCooldown, int(c.CooldownRemaining().Seconds())+1)
	}

	c.pendingPath = path
	return nil
}

// ConfirmUpload records a finished upload; the attachment becomes the
// URL the backend returned and the cooldown window starts now.
func (c *Composer) ConfirmUpload(url string) {
	c.attachment = url
	c.pendingPath = ""
	c.limiter.Allow()
	c.nextAllowed = time.Now().Add(c.cooldown)
}

// CancelUpload settles a failed upload. The cooldown was never
// consumed and any previously uploaded attachment stays untouched.
func (c *Composer) CancelUpload() {
	c.pendingPath = ""
}

// Detach removes the uploaded attachment. The cooldown is not refunded;
// the backend throttles by upload, not by send.
func (c *Composer) Detach() {
	c.attachment = ""
}

// CooldownRemaining returns how long until the next attach is allowed.
func (c *Composer) CooldownRemaining() time.Duration {
	remaining := time.Until(c.nextAllowed)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the composer with its attachment chip and cooldown notice.
func (c Composer) View() string {
	var b strings.Builder

	switch {
	case c.pendingPath != "":
		chip := c.theme.AttachmentChip.Render("[img] " + filepath.Base(c.pendingPath))
		hint := c.theme.InputPlaceholder.Render("  uploading...")
		b.WriteString(chip + hint + "\n")
	case c.attachment != "":
		chip := c.theme.AttachmentChip.Render("[img] " + filepath.Base(c.attachment))
		hint := c.theme.InputPlaceholder.Render("  /detach to remove")
		b.WriteString(chip + hint + "\n")
	}

	b.WriteString(c.input.View())

	if remaining := c.CooldownRemaining(); remaining > 0 {
		b.WriteString("\n")
		b.WriteString(c.theme.CooldownNotice.Render(
			fmt.Sprintf("next image in %ds", int(remaining.Seconds())+1)))
	}

	return c.theme.InputContainer.Width(c.width).Render(b.String())
}
