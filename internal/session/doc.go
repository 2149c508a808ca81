// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the orchestration layer between the UI and the
// transport.
//
// A Session pairs a link.Link with a conn.Machine: Connect drives the
// machine through its retry cycle until a handle is live or the budget is
// exhausted, a watcher goroutine turns mid-session link failures into
// automatic reconnects, and Send enforces the one-stream-at-a-time rule
// with fast Busy and NotConnected rejections. Stream chunks and completion
// reach the caller through callbacks that are silenced once the session is
// closed.
package session
