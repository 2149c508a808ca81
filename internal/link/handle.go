// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package link

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// =============================================================================
// WIRE PROTOCOL
// =============================================================================

// Frame types exchanged with the backend. The client writes "send" frames;
// the backend answers with zero or more "chunk" frames followed by exactly
// one "done", or aborts with "error".
const (
	frameSend  = "send"
	frameChunk = "chunk"
	frameDone  = "done"
	frameError = "error"
)

type frame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// HANDLE
// =============================================================================

// Handle is one live WebSocket connection. The read pump owns all reads and
// forwards protocol frames to the active stream; a ping pump keeps the link
// alive during idle periods. A dead link is reported exactly once through
// Failed.
type Handle struct {
	ws  *websocket.Conn
	cfg *Config

	frames chan frame
	failed chan *LinkError
	quit   chan struct{}

	failOnce  sync.Once
	closeOnce sync.Once

	mu        sync.Mutex
	failure   *LinkError
	streaming bool
}

func newHandle(ws *websocket.Conn, cfg *Config) *Handle {
	h := &Handle{
		ws:     ws,
		cfg:    cfg,
		frames: make(chan frame, 32),
		failed: make(chan *LinkError, 1),
		quit:   make(chan struct{}),
	}
	go h.readPump()
	go h.pingPump()
	return h
}

// Failed delivers the link failure, at most once. A clean Close never
// delivers; watchers should also select on Closed.
func (h *Handle) Failed() <-chan *LinkError {
	return h.failed
}

// Closed is closed once the handle is torn down, cleanly or not.
func (h *Handle) Closed() <-chan struct{} {
	return h.quit
}

// Err returns the recorded link failure, or nil if the handle is healthy
// or was closed cleanly.
func (h *Handle) Err() *LinkError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failure
}

// Close tears the connection down. Idempotent and safe from any goroutine.
func (h *Handle) Close() {
	h.closeOnce.Do(func() {
		close(h.quit)
		h.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		h.ws.Close()
	})
}

// fail records the first failure, publishes it, and tears the link down.
func (h *Handle) fail(e *LinkError) {
	h.failOnce.Do(func() {
		h.mu.Lock()
		h.failure = e
		h.mu.Unlock()
		h.failed <- e
		h.Close()
	})
}

// =============================================================================
// PUMPS
// =============================================================================

// readPump owns all reads on the connection. Pongs refresh the read
// deadline; a missed deadline surfaces as a timeout through fail.
func (h *Handle) readPump() {
	defer close(h.frames)

	pongWait := h.cfg.PingInterval + h.cfg.PingTimeout
	h.ws.SetReadDeadline(time.Now().Add(pongWait))
	h.ws.SetPongHandler(func(string) error {
		h.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := h.ws.ReadMessage()
		if err != nil {
			select {
			case <-h.quit:
				// Clean close, not a failure.
			default:
				h.fail(classify(err))
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			h.fail(&LinkError{Kind: ErrKindProtocolMismatch, Message: "malformed frame from backend", Cause: err})
			return
		}

		switch f.Type {
		case frameChunk, frameDone, frameError:
			select {
			case h.frames <- f:
			case <-h.quit:
				return
			}
		default:
			h.fail(&LinkError{Kind: ErrKindProtocolMismatch, Message: "unknown frame type " + f.Type})
			return
		}
	}
}

// pingPump writes periodic pings so half-open connections are detected
// even when no stream is active.
func (h *Handle) pingPump() {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.PingTimeout)
			if err := h.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				h.fail(&LinkError{Kind: ErrKindTimeout, Message: "ping write failed", Cause: err})
				return
			}
		case <-h.quit:
			return
		}
	}
}

// =============================================================================
// STREAMING
// =============================================================================

// SendAndStream writes one user message and blocks until the backend
// finishes the reply. Each chunk is delivered to onChunk in arrival order;
// a nil return means the stream completed with a "done" frame. At most one
// stream may be in flight per handle.
func (h *Handle) SendAndStream(ctx context.Context, text string, onChunk func(string)) error {
	h.mu.Lock()
	if h.streaming {
		h.mu.Unlock()
		return ErrStreamActive
	}
	h.streaming = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.streaming = false
		h.mu.Unlock()
	}()

	h.ws.SetWriteDeadline(time.Now().Add(h.cfg.ConnectionTimeout))
	if err := h.ws.WriteJSON(frame{Type: frameSend, Text: text}); err != nil {
		lerr := classify(err)
		h.fail(lerr)
		return lerr
	}

	for {
		select {
		case <-ctx.Done():
			// Cancellation mid-stream abandons the link; the session
			// decides whether to reconnect.
			lerr := classify(ctx.Err())
			h.fail(lerr)
			return lerr

		case f, ok := <-h.frames:
			if !ok {
				if e := h.Err(); e != nil {
					return e
				}
				return &LinkError{Kind: ErrKindRefused, Message: "connection closed mid-stream"}
			}
			switch f.Type {
			case frameChunk:
				onChunk(f.Text)
			case frameDone:
				return nil
			case frameError:
				return &LinkError{Kind: ErrKindRefused, Message: "backend reported error: " + f.Message}
			}
		}
	}
}
