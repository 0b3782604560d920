// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a list entry for the sidebar. Messages are fetched
// separately per conversation; only metadata travels with the list.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayTitle returns the conversation title or a placeholder when unset.
func (c Conversation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "untitled"
}

// =============================================================================
// USER TYPE
// =============================================================================

// LowPowerThreshold is the balance at or below which the composer warns
// before a send. The send still goes through; the warning is advisory.
const LowPowerThreshold = 10

// User is the authenticated identity plus its compute power balance.
// Held by the session gate and considered stale after every send; the
// balance-changed broadcast triggers a fresh /api/me fetch.
type User struct {
	Email string `json:"email"`
	Power int    `json:"power"`
}

// IsLowPower reports whether the balance warrants the low-power warning.
func (u User) IsLowPower() bool {
	return u.Power <= LowPowerThreshold
}
