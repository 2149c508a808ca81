// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the tidechat
// TUI: message bubbles, the conversation list, the header bar, and the
// status bar. Components are pure renderers; all state lives in the chat
// model that owns them.
package components
