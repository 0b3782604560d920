// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

func writeTempImage(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		cmd   composerCommand
		arg   string
	}{
		{"/attach /tmp/cat.png", cmdAttach, "/tmp/cat.png"},
		{"  /attach /tmp/cat.png  ", cmdAttach, "/tmp/cat.png"},
		{"/attach", cmdAttach, ""},
		{"/detach", cmdDetach, ""},
		{"hello world", cmdNone, ""},
		{"tell me about /attach", cmdNone, ""},
	}

	for _, tt := range tests {
		cmd, arg := parseCommand(tt.input)
		assert.Equal(t, tt.cmd, cmd, "input %q", tt.input)
		assert.Equal(t, tt.arg, arg, "input %q", tt.input)
	}
}

func TestAttachValidImage(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	path := writeTempImage(t, "cat.png", 128)

	require.NoError(t, c.Attach(path))
	assert.Equal(t, path, c.PendingPath(), "upload is in flight")
	assert.Empty(t, c.Attachment(), "no URL until the backend answers")

	c.ConfirmUpload("/uploads/cat.png")
	assert.Empty(t, c.PendingPath())
	assert.Equal(t, "/uploads/cat.png", c.Attachment())
}

func TestAttachWhileUploadPending(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	require.NoError(t, c.Attach(writeTempImage(t, "one.png", 64)))

	err := c.Attach(writeTempImage(t, "two.png", 64))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")
}

func TestAttachRejectsNonImage(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	path := writeTempImage(t, "notes.txt", 128)

	err := c.Attach(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image type")
	assert.Empty(t, c.PendingPath())
}

func TestAttachRejectsMissingFile(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	assert.Error(t, c.Attach(filepath.Join(t.TempDir(), "missing.png")))
}

func TestAttachRejectsOversizedFile(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 1)
	path := writeTempImage(t, "big.png", 2*1024*1024)

	err := c.Attach(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestAttachCooldown(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	first := writeTempImage(t, "one.png", 64)
	second := writeTempImage(t, "two.png", 64)

	require.NoError(t, c.Attach(first))
	c.ConfirmUpload("/uploads/one.png")

	err := c.Attach(second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCooldown)
	assert.Greater(t, c.CooldownRemaining(), time.Duration(0))

	// The first attachment survives the rejected second attach.
	assert.Equal(t, "/uploads/one.png", c.Attachment())
}

func TestFailedValidationDoesNotConsumeCooldown(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)

	require.Error(t, c.Attach(writeTempImage(t, "notes.txt", 10)))

	// Validation failure must not start the cooldown.
	require.NoError(t, c.Attach(writeTempImage(t, "ok.png", 10)))
}

func TestFailedUploadDoesNotStartCooldown(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	c.attachment = "/uploads/old.png"
	require.NoError(t, c.Attach(writeTempImage(t, "one.png", 64)))

	// The upload fails some time after the attach was accepted.
	time.Sleep(50 * time.Millisecond)
	c.CancelUpload()
	assert.Empty(t, c.PendingPath())
	assert.Equal(t, "/uploads/old.png", c.Attachment(), "previous preview untouched")
	assert.Equal(t, time.Duration(0), c.CooldownRemaining())

	// Only a successful upload consumes the 60s window, so the retry
	// goes through immediately.
	require.NoError(t, c.Attach(writeTempImage(t, "two.png", 64)))
}

func TestDetachKeepsCooldown(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	require.NoError(t, c.Attach(writeTempImage(t, "one.png", 64)))
	c.ConfirmUpload("/uploads/one.png")

	c.Detach()
	assert.Empty(t, c.Attachment())
	assert.Greater(t, c.CooldownRemaining(), time.Duration(0))
}

func TestResetClearsAttachment(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	require.NoError(t, c.Attach(writeTempImage(t, "one.png", 64)))
	c.ConfirmUpload("/uploads/one.png")

	c.Reset()
	assert.Empty(t, c.Attachment())
	assert.Empty(t, c.Value())
}

func TestViewShowsUploadingThenChip(t *testing.T) {
	c := NewComposer(styles.NewTheme(), time.Minute, 8)
	c.SetWidth(80)
	path := writeTempImage(t, "cat.png", 64)
	require.NoError(t, c.Attach(path))

	view := c.View()
	assert.Contains(t, view, "cat.png")
	assert.Contains(t, view, "uploading")

	c.ConfirmUpload("/uploads/cat.png")
	view = c.View()
	assert.Contains(t, view, "cat.png")
	assert.Contains(t, view, "/detach")
}
