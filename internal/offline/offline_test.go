// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

func TestRespond(t *testing.T) {
	r := NewResponder(rate.Inf)

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "short prompt echoed verbatim",
			prompt: "hello",
			want:   "Demo response to: 'hello'",
		},
		{
			name:   "prompt at the preview limit keeps no ellipsis",
			prompt: strings.Repeat("a", 30),
			want:   "Demo response to: '" + strings.Repeat("a", 30) + "'",
		},
		{
			name:   "long prompt truncated with ellipsis",
			prompt: strings.Repeat("a", 31),
			want:   "Demo response to: '" + strings.Repeat("a", 30) + "...'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Respond(tt.prompt); got != tt.want {
				t.Errorf("Respond(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestStreamReassemblesToFullReply(t *testing.T) {
	r := NewResponder(rate.Inf)

	var b strings.Builder
	err := r.Stream(context.Background(), "hello", func(chunk string) {
		b.WriteString(chunk)
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if b.String() != r.Respond("hello") {
		t.Errorf("Reassembled stream = %q, want %q", b.String(), r.Respond("hello"))
	}
}

func TestStreamStopsOnCancel(t *testing.T) {
	r := NewResponder(1) // one chunk per second

	ctx, cancel := context.WithCancel(context.Background())
	chunks := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Stream(ctx, "hello", func(string) {
			chunks++
			cancel()
		})
	}()

	if err := <-errCh; err == nil {
		t.Error("Stream should return the cancellation error")
	}
	if chunks == 0 {
		t.Error("Expected at least one chunk before cancellation")
	}
}
