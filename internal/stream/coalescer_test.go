// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCoalescerOfferSchedulesOnce(t *testing.T) {
	c := NewCoalescer(50 * time.Millisecond)

	if !c.Offer("a") {
		t.Error("First offer should request a flush schedule")
	}
	if c.Offer("b") {
		t.Error("Second offer should not request another schedule")
	}

	batch, ok := c.Flush()
	if !ok {
		t.Fatal("Flush should return the batch")
	}
	if batch != "ab" {
		t.Errorf("Expected 'ab', got %q", batch)
	}

	// After a flush the next offer schedules again.
	if !c.Offer("c") {
		t.Error("Offer after flush should request a new schedule")
	}
}

func TestCoalescerFlushEmptyIsNoop(t *testing.T) {
	c := NewCoalescer(50 * time.Millisecond)

	batch, ok := c.Flush()
	if ok || batch != "" {
		t.Errorf("Empty flush should be a no-op, got %q, %v", batch, ok)
	}
}

func TestCoalescerPreservesByteOrder(t *testing.T) {
	c := NewCoalescer(50 * time.Millisecond)

	chunks := []string{"Hel", "lo, ", "world", "!", " Str", "eam", "ing."}
	var delivered strings.Builder

	// Interleave offers and flushes; the concatenation of delivered
	// batches must equal the concatenation of offered chunks.
	for i, chunk := range chunks {
		c.Offer(chunk)
		if i%3 == 2 {
			if batch, ok := c.Flush(); ok {
				delivered.WriteString(batch)
			}
		}
	}
	if batch, ok := c.Flush(); ok {
		delivered.WriteString(batch)
	}

	want := strings.Join(chunks, "")
	if delivered.String() != want {
		t.Errorf("Expected %q, got %q", want, delivered.String())
	}
}

func TestCoalescerSingleBatchScenario(t *testing.T) {
	// Chunks arriving within one batch window are delivered as one batch.
	c := NewCoalescer(50 * time.Millisecond)

	c.Offer("Hel")
	c.Offer("lo, ")
	c.Offer("world")

	batch, ok := c.Flush()
	if !ok {
		t.Fatal("Expected a batch")
	}
	if batch != "Hello, world" {
		t.Errorf("Expected 'Hello, world', got %q", batch)
	}

	if _, ok := c.Flush(); ok {
		t.Error("Second flush should deliver nothing")
	}
}

func TestCoalescerReset(t *testing.T) {
	c := NewCoalescer(50 * time.Millisecond)

	c.Offer("discard")
	c.Reset()

	if _, ok := c.Flush(); ok {
		t.Error("Flush after reset should be empty")
	}
	if c.Pending() != 0 {
		t.Errorf("Expected 0 pending bytes, got %d", c.Pending())
	}
	if !c.Offer("fresh") {
		t.Error("Offer after reset should schedule a flush")
	}
}

func TestCoalescerConcurrentOffers(t *testing.T) {
	c := NewCoalescer(50 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Offer("x")
			}
		}()
	}
	wg.Wait()

	batch, ok := c.Flush()
	if !ok {
		t.Fatal("Expected a batch")
	}
	if len(batch) != 800 {
		t.Errorf("Expected 800 bytes, got %d", len(batch))
	}
}

func TestNewCoalescerDefaultDelay(t *testing.T) {
	c := NewCoalescer(0)
	if c.BatchDelay() != DefaultBatchDelay {
		t.Errorf("Expected default delay %v, got %v", DefaultBatchDelay, c.BatchDelay())
	}
}
