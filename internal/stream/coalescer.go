// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream provides consumer-side batching of streamed response text.
package stream

import (
	"strings"
	"sync"
	"time"
)

// DefaultBatchDelay is used when no batch delay is configured.
const DefaultBatchDelay = 50 * time.Millisecond

// =============================================================================
// COALESCER
// =============================================================================

// Coalescer accumulates rapidly arriving chunks and releases them as larger
// batches on a fixed cadence, bounding the rate of downstream UI updates.
//
// Offer is called from the connection's read goroutine while Flush runs in
// the UI update loop, so all operations are protected by a mutex. For any
// stream, the concatenation of flushed batches equals the concatenation of
// offered chunks in arrival order.
type Coalescer struct {
	mu        sync.Mutex
	pending   strings.Builder
	scheduled bool

	batchDelay time.Duration
}

// NewCoalescer creates a coalescer that batches chunks over batchDelay windows.
func NewCoalescer(batchDelay time.Duration) *Coalescer {
	if batchDelay <= 0 {
		batchDelay = DefaultBatchDelay
	}
	return &Coalescer{batchDelay: batchDelay}
}

// BatchDelay returns the configured flush cadence.
func (c *Coalescer) BatchDelay() time.Duration {
	return c.batchDelay
}

// Offer appends chunk text to the pending batch. It returns true exactly
// when no flush was already scheduled; the caller must then arrange for
// Flush to run after BatchDelay.
func (c *Coalescer) Offer(chunk string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending.WriteString(chunk)
	if c.scheduled {
		return false
	}
	c.scheduled = true
	return true
}

// Flush drains and returns the batch accumulated since the last flush.
// Returns ("", false) when nothing arrived; the scheduled flush is then a
// no-op and a later Offer schedules a fresh one.
func (c *Coalescer) Flush() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scheduled = false
	if c.pending.Len() == 0 {
		return "", false
	}

	batch := c.pending.String()
	c.pending.Reset()
	return batch, true
}

// Pending returns the number of buffered bytes awaiting flush.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Len()
}

// Reset clears the batch without delivering it. Use when cancelling a
// stream or starting a new message.
func (c *Coalescer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.Reset()
	c.scheduled = false
}
