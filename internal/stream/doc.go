// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream provides consumer-side batching of streamed response text.
//
// Chunks can arrive from the backend far faster than a terminal UI can
// usefully render. The Coalescer accumulates chunks and releases them as
// concatenated batches on a fixed cadence, and the Throttle applies the
// same shape to scroll-to-bottom requests: immediate when the interval has
// elapsed, otherwise one deferred action at the window boundary. Neither
// reorders nor drops bytes.
package stream
