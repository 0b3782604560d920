// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	require.NotNil(t, theme)

	// A few representative styles must render without panicking.
	assert.NotPanics(t, func() {
		theme.HeaderTitle.Render("xst")
		theme.ConversationSelected.Render("conversation")
		theme.FailedMark.Render("failed")
		theme.ModalBox.Render("recharge")
	})
}

func TestStatusIndicatorsAreASCII(t *testing.T) {
	for _, s := range []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
	} {
		for _, r := range s {
			assert.Less(t, r, rune(128), "indicator %q must stay ASCII", s)
		}
	}
}

func TestRenderHelpersIncludeIndicator(t *testing.T) {
	assert.True(t, strings.Contains(RenderSuccess("done"), "[OK]"))
	assert.True(t, strings.Contains(RenderError("boom"), "[X]"))
	assert.True(t, strings.Contains(RenderWarning("careful"), "[!]"))
}
