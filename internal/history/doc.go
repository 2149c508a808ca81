// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides the bounded in-memory store of rendered messages.
//
// The store keeps messages in insertion order, which is also display order.
// After every Append the store holds at most its configured capacity;
// eviction always removes from the oldest end, except that the message
// currently receiving streamed text is never evicted. UpdateLast supports
// incremental streaming: repeated deltas are appended to the tail entry so
// that the full streamed text is reconstructed with no gaps or duplication.
package history
