// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines all Bubble Tea message types used by the chat
// interface. Messages are organized into the following categories:
//   - Connection: startup probe, connect results, and state polling
//   - Streaming: chunk delivery, flush ticks, and completion
//   - Scrolling: deferred scroll-to-bottom ticks

package chat

import (
	"time"

	"github.com/jeranaias/tidechat-tui/internal/config"
)

// =============================================================================
// CONNECTION MESSAGES
// =============================================================================

// ProbeRequestMsg asks the program runner to probe the backend. Emitted
// once, shortly after startup.
type ProbeRequestMsg struct{}

// ProbeResultMsg reports whether the backend answered the startup probe.
type ProbeResultMsg struct {
	Reachable bool
}

// ConnectResultMsg reports the outcome of a connect cycle, including all
// retries.
type ConnectResultMsg struct {
	Err error
}

// StateTickMsg drives the periodic connection-state poll for the status
// bar.
type StateTickMsg struct {
	Time time.Time
}

// ConfigReloadedMsg delivers a freshly validated configuration after the
// file watcher sees the config file change on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// SendRequestMsg asks the program runner to submit a user message. Demo
// selects the offline responder instead of the live session.
type SendRequestMsg struct {
	StreamID string
	Content  string
	Demo     bool
}

// StreamChunkMsg delivers one raw chunk from the active stream. Chunks
// carry the stream ID so leftovers from an aborted stream are dropped.
type StreamChunkMsg struct {
	StreamID string
	Chunk    string
}

// StreamCompleteMsg signals that the active stream finished or failed.
type StreamCompleteMsg struct {
	StreamID string
	Err      error
}

// FlushTickMsg fires when the coalescing window closes and buffered
// chunks should be appended to the transcript in one update.
type FlushTickMsg struct {
	StreamID string
	Time     time.Time
}

// =============================================================================
// SCROLLING MESSAGES
// =============================================================================

// ScrollTickMsg fires when a deferred scroll-to-bottom becomes due.
type ScrollTickMsg struct {
	Time time.Time
}
