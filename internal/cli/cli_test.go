// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xst-ai/xst-tui/internal/config"
)

// =============================================================================
// TOP-LEVEL PARSE
// =============================================================================

func TestParseDefaultsToTUI(t *testing.T) {
	cmd, _ := Parse(nil)
	assert.Equal(t, CmdTUI, cmd)
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{[]string{"chat"}, CmdChat},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"config"}, CmdConfig},
		{[]string{"version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"bogus"}, CmdHelp},
	}
	for _, tt := range tests {
		cmd, _ := Parse(tt.argv)
		assert.Equal(t, tt.want, cmd, "argv %v", tt.argv)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := Parse([]string{"--json", "status"})
	assert.Equal(t, CmdStatus, cmd)
	assert.True(t, args.JSON)

	cmd, args = Parse([]string{"chat", "-q"})
	assert.Equal(t, CmdChat, cmd)
	assert.True(t, args.Quiet)
}

func TestParseSubcommandArgs(t *testing.T) {
	cmd, args := Parse([]string{"config", "set", "ui.theme", "light"})
	assert.Equal(t, CmdConfig, cmd)
	require.NotNil(t, args.Parser)
	assert.Equal(t, "set", args.Parser.Subcommand())

	key, ok := args.Parser.Positional(0)
	require.True(t, ok)
	assert.Equal(t, "ui.theme", key)

	val, ok := args.Parser.Positional(1)
	require.True(t, ok)
	assert.Equal(t, "light", val)
}

// =============================================================================
// ARG PARSER
// =============================================================================

func TestArgParserFlagForms(t *testing.T) {
	p := NewArgParser([]string{"show", "--format", "json", "--output=out.txt", "--confirm"})

	assert.Equal(t, "show", p.Subcommand())

	v, ok := p.Flag("format")
	require.True(t, ok)
	assert.Equal(t, "json", v)

	assert.Equal(t, "out.txt", p.FlagOrDefault("output", "fallback"))
	assert.Equal(t, "fallback", p.FlagOrDefault("missing", "fallback"))
	assert.True(t, p.BoolFlag("confirm"))
	assert.True(t, p.HasFlag("format"))
	assert.False(t, p.HasFlag("missing"))
}

func TestArgParserFlagInt(t *testing.T) {
	p := NewArgParser([]string{"--lines", "50", "--bad", "abc"})

	n, ok := p.FlagInt("lines")
	require.True(t, ok)
	assert.Equal(t, 50, n)

	_, ok = p.FlagInt("bad")
	assert.False(t, ok)

	_, ok = p.FlagInt("absent")
	assert.False(t, ok)
}

func TestArgParserPositional(t *testing.T) {
	p := NewArgParser([]string{"set", "ui.theme", "dark"})

	assert.Equal(t, 2, p.PositionalCount())
	assert.Equal(t, "ui.theme dark", p.JoinPositional())

	_, ok := p.Positional(5)
	assert.False(t, ok)
}

// Flags with no following value become boolean rather than eating the
// next flag as their value.
func TestArgParserTrailingValueFlag(t *testing.T) {
	p := NewArgParser([]string{"--format"})
	assert.True(t, p.BoolFlag("format"))
	_, ok := p.Flag("format")
	assert.False(t, ok)
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"true", "YES", "on", "1"} {
		b, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"false", "No", "off", "0"} {
		b, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

// =============================================================================
// TERMINAL HELPERS
// =============================================================================

func TestWrapTextShortLinesUnchanged(t *testing.T) {
	assert.Equal(t, "hello world", WrapText("hello world", 80))
}

func TestWrapTextWrapsLongLines(t *testing.T) {
	text := strings.Repeat("word ", 30)
	wrapped := WrapText(strings.TrimSpace(text), 40)

	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), 40)
	}
	assert.Greater(t, strings.Count(wrapped, "\n"), 0)
}

func TestWrapTextPreservesNewlines(t *testing.T) {
	wrapped := WrapText("one\ntwo", 80)
	assert.Equal(t, "one\ntwo", wrapped)
}

// =============================================================================
// CONFIG KEYS
// =============================================================================

func TestApplyConfigKey(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, applyConfigKey(cfg, "api.base_url", "https://chat.example.com/"))
	assert.Equal(t, "https://chat.example.com", cfg.API.BaseURL)

	require.NoError(t, applyConfigKey(cfg, "ui.theme", "LIGHT"))
	assert.Equal(t, "light", cfg.UI.Theme)

	require.NoError(t, applyConfigKey(cfg, "ui.markdown", "false"))
	assert.False(t, cfg.UI.Markdown)

	require.NoError(t, applyConfigKey(cfg, "upload.cooldown_secs", "90"))
	assert.Equal(t, 90, cfg.Upload.CooldownSecs)
}

func TestApplyConfigKeyRejectsBadInput(t *testing.T) {
	cfg := config.Default()

	err := applyConfigKey(cfg, "upload.cooldown_secs", "soon")
	assert.Error(t, err)

	err = applyConfigKey(cfg, "does.not.exist", "x")
	assert.ErrorContains(t, err, "unknown configuration key")
}

// =============================================================================
// REPL HELPERS
// =============================================================================

func TestIndexArg(t *testing.T) {
	n, ok := indexArg("2", 3)
	require.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = indexArg("0", 3)
	assert.False(t, ok)

	_, ok = indexArg("4", 3)
	assert.False(t, ok)

	_, ok = indexArg("two", 3)
	assert.False(t, ok)
}
