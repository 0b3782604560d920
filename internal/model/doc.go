// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the xst chat client:
// users, conversations, messages, and the message body line classifier.
//
// All of these are client-side caches of server state. The backend owns
// the authoritative copy; a reload always re-derives everything from the
// message-list and conversation endpoints.
package model
