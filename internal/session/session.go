// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates the connection state machine and the
// transport link into one streaming chat session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jeranaias/tidechat-tui/internal/conn"
	"github.com/jeranaias/tidechat-tui/internal/link"
)

// =============================================================================
// SESSION
// =============================================================================

// Session owns the live link handle and drives the connection state
// machine through connect, retry, and failure cycles. At most one response
// stream is in flight at a time; sends are rejected fast, without touching
// the link, when the session is disconnected or busy.
type Session struct {
	link    *link.Link
	machine *conn.Machine

	quit     chan struct{}
	quitOnce sync.Once

	mu       sync.Mutex
	handle   *link.Handle
	inFlight bool
	closed   bool
}

// New creates a session over the given link, governed by the given state
// machine.
func New(l *link.Link, m *conn.Machine) *Session {
	return &Session{
		link:    l,
		machine: m,
		quit:    make(chan struct{}),
	}
}

// State returns the current connection state.
func (s *Session) State() conn.State {
	return s.machine.State()
}

// Machine exposes the state machine for observers.
func (s *Session) Machine() *conn.Machine {
	return s.machine
}

// InFlight reports whether a response is currently streaming.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// TestConnection probes the backend without keeping a connection.
func (s *Session) TestConnection(ctx context.Context) bool {
	return s.link.Probe(ctx)
}

// Reset clears a terminal error so a fresh Connect may be issued.
func (s *Session) Reset() error {
	return s.machine.Reset()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// =============================================================================
// CONNECT AND RETRY
// =============================================================================

// Connect dials the backend, retrying per the machine's policy. It blocks
// until a link is established or the retry budget is exhausted, so callers
// run it off the UI loop.
func (s *Session) Connect(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.machine.ConnectRequested(); err != nil {
		return err
	}
	return s.attemptLoop(ctx)
}

// attemptLoop drives the machine from Connecting to either Connected or
// Error, sleeping the policy delay between attempts.
func (s *Session) attemptLoop(ctx context.Context) error {
	for {
		h, err := s.link.Open(ctx)
		if err == nil {
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				h.Close()
				return ErrClosed
			}
			s.machine.OpenSucceeded()
			s.handle = h
			s.mu.Unlock()
			go s.watchLink(h)
			return nil
		}

		state, terr := s.machine.OpenFailed()
		if terr != nil {
			return terr
		}
		if state == conn.Error {
			return &SessionError{Kind: ErrKindLinkFailure, Message: "connection attempts exhausted", Cause: err}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.quit:
			return ErrClosed
		case <-time.After(s.machine.RetryDelay()):
		}

		next, terr := s.machine.RetryDue()
		if terr != nil {
			return terr
		}
		if next == conn.Error {
			return &SessionError{Kind: ErrKindLinkFailure, Message: "connection attempts exhausted", Cause: err}
		}
	}
}

// watchLink waits for the handle to die and starts the reconnect cycle.
// A clean session close exits quietly.
func (s *Session) watchLink(h *link.Handle) {
	select {
	case lerr := <-h.Failed():
		s.handleFailure(h, lerr)
	case <-h.Closed():
		select {
		case lerr := <-h.Failed():
			s.handleFailure(h, lerr)
		default:
		}
	case <-s.quit:
	}
}

func (s *Session) handleFailure(h *link.Handle, _ *link.LinkError) {
	s.mu.Lock()
	if s.closed || s.handle != h {
		s.mu.Unlock()
		return
	}
	s.handle = nil
	s.mu.Unlock()
	h.Close()

	if err := s.machine.LinkFailed(); err != nil {
		// Already left Connected; another path owns the transition.
		return
	}
	s.reconnect()
}

// reconnect runs the background retry cycle after a mid-session link
// failure. Exhausted retries leave the machine in Error for the UI to
// surface.
func (s *Session) reconnect() {
	select {
	case <-s.quit:
		return
	case <-time.After(s.machine.RetryDelay()):
	}

	next, err := s.machine.RetryDue()
	if err != nil || next != conn.Connecting {
		return
	}
	s.attemptLoop(context.Background())
}

// =============================================================================
// STREAMING
// =============================================================================

// Send submits one user message and streams the reply. Chunks arrive on
// onChunk in order; onDone fires exactly once when the stream completes or
// fails. A nil return means the stream started; Busy and NotConnected
// rejections return immediately without touching the link.
func (s *Session) Send(ctx context.Context, text string, onChunk func(string), onDone func(error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	h := s.handle
	if h == nil || !s.machine.Usable() {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.inFlight = true
	s.mu.Unlock()

	go func() {
		err := h.SendAndStream(ctx, text, func(chunk string) {
			if !s.isClosed() {
				onChunk(chunk)
			}
		})

		s.mu.Lock()
		s.inFlight = false
		closed := s.closed
		s.mu.Unlock()
		if closed {
			// Callbacks after close are discarded, not delivered.
			return
		}

		if err != nil {
			onDone(&SessionError{Kind: ErrKindLinkFailure, Message: "response stream failed", Cause: err})
			return
		}
		onDone(nil)
	}()
	return nil
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Close tears down the session and its link. Idempotent; pending stream
// callbacks are discarded rather than delivered after close.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	h := s.handle
	s.handle = nil
	s.mu.Unlock()

	s.quitOnce.Do(func() { close(s.quit) })
	if h != nil {
		h.Close()
	}
}
