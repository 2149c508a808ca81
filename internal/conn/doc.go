// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conn tracks the lifecycle of the backend connection.
//
// The Machine moves through Disconnected, Connecting, Connected, Error,
// and Reconnecting, and is the single source of truth for whether a link
// is currently usable. The streaming session consults it before every send
// and drives retries according to the RetryPolicy; the UI observes it by
// polling State at a fixed cadence. Error is sticky: only an explicit
// Reset returns the machine to Disconnected.
package conn
