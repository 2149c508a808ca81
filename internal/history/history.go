// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides the bounded in-memory store of rendered messages.
package history

import (
	"github.com/jeranaias/tidechat-tui/internal/model"
)

// DefaultCapacity is used when no capacity is configured.
const DefaultCapacity = 100

// =============================================================================
// STORE
// =============================================================================

// Store holds the ordered sequence of rendered messages, evicting from the
// oldest end once capacity is exceeded.
//
// Store is not safe for concurrent use. It is owned by the UI update loop;
// worker goroutines hand mutations off as Bubble Tea messages instead of
// touching the store directly.
type Store struct {
	capacity int
	messages []*model.Message
}

// NewStore creates a store with the given capacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		messages: make([]*model.Message, 0, capacity),
	}
}

// Capacity returns the maximum number of retained messages.
func (s *Store) Capacity() int {
	return s.capacity
}

// Len returns the number of retained messages.
func (s *Store) Len() int {
	return len(s.messages)
}

// Messages returns a copy of the retained messages in display order.
func (s *Store) Messages() []*model.Message {
	out := make([]*model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Last returns the most recent message, or nil if the store is empty.
func (s *Store) Last() *model.Message {
	if len(s.messages) == 0 {
		return nil
	}
	return s.messages[len(s.messages)-1]
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Append adds a message to the end and evicts from the oldest end until the
// store is back within capacity. The entry currently being streamed into is
// never evicted.
func (s *Store) Append(m *model.Message) {
	s.messages = append(s.messages, m)
	s.trim()
}

// UpdateLast appends delta to the message currently being streamed into.
// If no streaming message is in progress, an empty assistant message is
// appended first. Returns the updated message.
func (s *Store) UpdateLast(delta string) *model.Message {
	last := s.Last()
	if last == nil || !last.IsStreaming {
		last = model.NewAssistantMessage()
		s.Append(last)
	}
	last.AppendDelta(delta)
	return last
}

// FinalizeLast completes the streaming message at the tail, if any.
func (s *Store) FinalizeLast() {
	if last := s.Last(); last != nil && last.IsStreaming {
		last.FinalizeStream()
	}
}

// Clear removes all messages.
func (s *Store) Clear() {
	s.messages = s.messages[:0]
}

// trim evicts the oldest non-streaming entries until len <= capacity.
func (s *Store) trim() {
	for len(s.messages) > s.capacity {
		evicted := false
		for i, m := range s.messages {
			if m.IsStreaming {
				continue
			}
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			evicted = true
			break
		}
		if !evicted {
			// Every retained entry is still streaming; nothing is evictable.
			return
		}
	}
}
