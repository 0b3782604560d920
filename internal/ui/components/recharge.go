// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

// =============================================================================
// RECHARGE MODAL
// =============================================================================

// RechargeState is the modal's lifecycle phase.
type RechargeState int

const (
	// RechargeChoosing - picking amount and method
	RechargeChoosing RechargeState = iota
	// RechargePreparing - waiting for the payment QR code
	RechargePreparing
)

// RechargeModal is the power recharge dialog. It collects an amount and
// payment method; once the backend returns a payment link the caller
// hands off to the browser and closes the modal. Completion is never
// signalled by the backend; the next balance fetch observes it.
type RechargeModal struct {
	theme *styles.Theme

	state     RechargeState
	amountIdx int
	methodIdx int
	errMsg    string
}

var rechargeMethods = []string{api.PayMethodAlipay, api.PayMethodWechat}

// NewRechargeModal creates a recharge modal with the first amount and
// alipay preselected.
func NewRechargeModal(theme *styles.Theme) RechargeModal {
	return RechargeModal{theme: theme}
}

// State returns the current phase.
func (m *RechargeModal) State() RechargeState {
	return m.state
}

// Amount returns the currently selected amount.
func (m *RechargeModal) Amount() int {
	return api.RechargeAmounts[m.amountIdx]
}

// Method returns the currently selected payment method.
func (m *RechargeModal) Method() string {
	return rechargeMethods[m.methodIdx]
}

// NextAmount cycles the amount selection forward.
func (m *RechargeModal) NextAmount() {
	m.amountIdx = (m.amountIdx + 1) % len(api.RechargeAmounts)
}

// PrevAmount cycles the amount selection backward.
func (m *RechargeModal) PrevAmount() {
	m.amountIdx = (m.amountIdx - 1 + len(api.RechargeAmounts)) % len(api.RechargeAmounts)
}

// ToggleMethod switches between payment methods.
func (m *RechargeModal) ToggleMethod() {
	m.methodIdx = (m.methodIdx + 1) % len(rechargeMethods)
}

// BeginPrepare marks the modal as waiting for the backend.
func (m *RechargeModal) BeginPrepare() {
	m.state = RechargePreparing
	m.errMsg = ""
}

// SetError returns the modal to the choosing phase with an error shown.
func (m *RechargeModal) SetError(msg string) {
	m.errMsg = msg
	m.state = RechargeChoosing
}

// Reset returns the modal to its initial phase, keeping selections.
func (m *RechargeModal) Reset() {
	m.state = RechargeChoosing
	m.errMsg = ""
}

// View renders the modal box.
func (m RechargeModal) View() string {
	var b strings.Builder

	b.WriteString(m.theme.ModalTitle.Render("Recharge power"))
	b.WriteString("\n")

	switch m.state {
	case RechargePreparing:
		b.WriteString(m.theme.ThinkingText.Render("Preparing payment..."))

	default:
		b.WriteString("Amount:  ")
		for i, amount := range api.RechargeAmounts {
			label := "$" + formatCount(amount)
			if i == m.amountIdx {
				b.WriteString(m.theme.AmountSelected.Render(label))
			} else {
				b.WriteString(m.theme.AmountOption.Render(label))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n\nMethod:  ")
		for i, method := range rechargeMethods {
			if i == m.methodIdx {
				b.WriteString(m.theme.MethodSelected.Render(method))
			} else {
				b.WriteString(m.theme.MethodOption.Render(method))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
		if m.errMsg != "" {
			b.WriteString("\n" + m.theme.ErrorStyle.Render(m.errMsg) + "\n")
		}
		b.WriteString("\n")
		b.WriteString(m.theme.ShortcutDesc.Render("left/right: amount  tab: method  enter: pay  esc: close"))
	}

	return m.theme.ModalBox.Render(b.String())
}

// PlaceModal centers the modal over the given area.
func PlaceModal(modal string, width, height int) string {
	if width <= 0 || height <= 0 {
		return modal
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
