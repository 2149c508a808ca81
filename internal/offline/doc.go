// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline keeps the chat usable without a backend.
//
// When the startup probe finds no server, the UI routes sends to a
// Responder instead of the session. Replies are canned but streamed
// chunk by chunk at a steady pace, so the coalescer, history store, and
// rendering path behave exactly as they do against a live backend.
package offline
