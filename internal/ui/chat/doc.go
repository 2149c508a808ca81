// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the presentation layer of tidechat.
//
// The Model owns the transcript history, the chunk coalescer, and the
// scroll throttle, and mutates them only on the Bubble Tea update loop.
// Everything that blocks (probing, connecting, streaming) is requested
// through outbound messages (ProbeRequestMsg, SendRequestMsg) that the
// program runner executes on worker goroutines, with results delivered
// back as inbound messages via Program.Send.
//
// Streaming follows a strict pipeline: raw chunks arrive as
// StreamChunkMsg, accumulate in the coalescer, and land in the transcript
// in batches when the FlushTickMsg window closes. Scrolling after each
// batch is rate-limited by the throttle, with a trailing ScrollTickMsg so
// the final content is never left off-screen.
package chat
