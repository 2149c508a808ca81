// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline provides the demo responder used when no backend is
// reachable.
package offline

import (
	"context"

	"golang.org/x/time/rate"
)

// =============================================================================
// DEMO RESPONDER
// =============================================================================

const (
	// previewRunes is how much of the prompt is echoed back.
	previewRunes = 30

	// chunkRunes is the size of each simulated stream chunk.
	chunkRunes = 4

	// defaultPace is the simulated stream rate in chunks per second.
	defaultPace rate.Limit = 30
)

// Responder produces canned replies and streams them at a steady pace so
// demo mode exercises the same chunk pipeline as a live backend.
type Responder struct {
	limiter *rate.Limiter
}

// NewResponder creates a responder. A pace of zero or less selects the
// default rate; rate.Inf disables pacing entirely.
func NewResponder(pace rate.Limit) *Responder {
	if pace <= 0 {
		pace = defaultPace
	}
	return &Responder{limiter: rate.NewLimiter(pace, 1)}
}

// Respond returns the full canned reply for a prompt. Prompts longer than
// the preview are truncated and marked with an ellipsis; short prompts are
// echoed verbatim.
func (r *Responder) Respond(prompt string) string {
	runes := []rune(prompt)
	suffix := ""
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
		suffix = "..."
	}
	return "Demo response to: '" + string(runes) + suffix + "'"
}

// Stream delivers the canned reply as a sequence of small chunks, paced by
// the limiter. Chunks arrive in order; cancellation stops the stream early.
func (r *Responder) Stream(ctx context.Context, prompt string, onChunk func(string)) error {
	runes := []rune(r.Respond(prompt))
	for i := 0; i < len(runes); i += chunkRunes {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		end := i + chunkRunes
		if end > len(runes) {
			end = len(runes)
		}
		onChunk(string(runes[i:end]))
	}
	return nil
}
