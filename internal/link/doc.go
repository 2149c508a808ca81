// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package link is the WebSocket transport to the chat backend.
//
// A Link dials the backend; each successful Open yields a Handle that owns
// one live connection. The handle runs a read pump and a ping pump, frames
// the JSON wire protocol (send, chunk, done, error), and reports a dead
// link exactly once through Failed. SendAndStream blocks for the duration
// of one request/reply exchange, delivering reply chunks in order.
//
// Dial and read failures are classified into LinkError kinds (refused,
// timeout, protocol mismatch) so callers can render distinct messages
// without string matching.
package link
