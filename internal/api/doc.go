// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the xst backend.
//
// All business logic lives server-side; this client only speaks the JSON
// endpoints (/api/login, /api/me, /api/conversation, /api/message/*,
// /api/upload, /api/pay/prepare) and carries the session cookie in a jar.
package api
