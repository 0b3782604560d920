// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the xst client:
// atomic file persistence, rune- and width-aware string truncation,
// and opening URLs in the system browser.
package util
