// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream provides consumer-side batching of streamed response text.
package stream

import (
	"sync"
	"time"
)

// DefaultThrottleInterval is used when no throttle interval is configured.
const DefaultThrottleInterval = 100 * time.Millisecond

// =============================================================================
// THROTTLE
// =============================================================================

// Throttle rate-limits a repeated action (scroll-to-bottom during
// streaming): a trigger fires immediately when the minimum interval has
// elapsed since the last action, otherwise exactly one deferred action is
// scheduled for the window boundary. Redundant triggers inside the window
// coalesce into that single deferred action.
type Throttle struct {
	mu        sync.Mutex
	interval  time.Duration
	last      time.Time
	scheduled bool
}

// NewThrottle creates a throttle with the given minimum interval between
// actions.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	return &Throttle{interval: interval}
}

// Interval returns the minimum interval between actions.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// Trigger requests the action. When fire is true the caller performs the
// action now. Otherwise, when wait > 0 the caller must schedule Fire after
// wait; when wait == 0 a deferred action is already pending and nothing
// needs to be done.
func (t *Throttle) Trigger() (fire bool, wait time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.last)
	if elapsed >= t.interval {
		t.last = time.Now()
		return true, 0
	}
	if t.scheduled {
		return false, 0
	}
	t.scheduled = true
	return false, t.interval - elapsed
}

// Fire executes the deferred action scheduled by Trigger. Returns false
// when no action is pending (the scheduled call became stale), in which
// case the caller does nothing.
func (t *Throttle) Fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.scheduled {
		return false
	}
	t.scheduled = false
	t.last = time.Now()
	return true
}

// Force performs the action unconditionally, resetting the window.
func (t *Throttle) Force() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scheduled = false
	t.last = time.Now()
}

// Cancel drops any pending deferred action.
func (t *Throttle) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scheduled = false
}
