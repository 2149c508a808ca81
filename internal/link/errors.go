// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package link owns the physical WebSocket connection to the chat backend.
package link

import (
	"context"
	"errors"
	"net"

	"github.com/gorilla/websocket"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// LinkError represents a failure of the transport link.
type LinkError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *LinkError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *LinkError) Unwrap() error {
	return e.Cause
}

// ErrorKind categorizes link errors for handling.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindRefused
	ErrKindTimeout
	ErrKindProtocolMismatch
)

// Sentinel errors for easy checking.
var (
	ErrRefused          = &LinkError{Kind: ErrKindRefused, Message: "backend refused the connection"}
	ErrTimeout          = &LinkError{Kind: ErrKindTimeout, Message: "connection timed out"}
	ErrProtocolMismatch = &LinkError{Kind: ErrKindProtocolMismatch, Message: "backend does not speak the chat protocol"}
)

// ErrStreamActive is returned when a second stream is started on a handle
// that already has one in flight.
var ErrStreamActive = errors.New("a stream is already in flight on this link")

// IsRefused checks if an error is a refused-connection error.
func IsRefused(err error) bool {
	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Kind == ErrKindRefused
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Kind == ErrKindTimeout
	}
	return false
}

// IsProtocolMismatch checks if an error indicates a protocol mismatch.
func IsProtocolMismatch(err error) bool {
	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Kind == ErrKindProtocolMismatch
	}
	return false
}

// classify maps low-level dial and read errors onto LinkError kinds.
func classify(err error) *LinkError {
	if err == nil {
		return nil
	}

	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &LinkError{Kind: ErrKindTimeout, Message: "connection timed out", Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &LinkError{Kind: ErrKindTimeout, Message: "connection timed out", Cause: err}
	}

	if errors.Is(err, websocket.ErrBadHandshake) {
		return &LinkError{Kind: ErrKindProtocolMismatch, Message: "backend does not speak the chat protocol", Cause: err}
	}

	return &LinkError{Kind: ErrKindRefused, Message: "connection refused or lost", Cause: err}
}
