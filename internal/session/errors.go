// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// SessionError represents a failure of a streaming session operation.
type SessionError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}

// ErrorKind categorizes session errors for handling.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindNotConnected
	ErrKindBusy
	ErrKindLinkFailure
)

// Sentinel errors for easy checking.
var (
	ErrNotConnected = &SessionError{Kind: ErrKindNotConnected, Message: "not connected to backend"}
	ErrBusy         = &SessionError{Kind: ErrKindBusy, Message: "a response is already streaming"}
)

// ErrClosed is returned from operations on a closed session.
var ErrClosed = errors.New("session is closed")

// IsNotConnected checks whether a send was rejected for lack of a link.
func IsNotConnected(err error) bool {
	var sessErr *SessionError
	if errors.As(err, &sessErr) {
		return sessErr.Kind == ErrKindNotConnected
	}
	return false
}

// IsBusy checks whether a send was rejected because one is in flight.
func IsBusy(err error) bool {
	var sessErr *SessionError
	if errors.As(err, &sessErr) {
		return sessErr.Kind == ErrKindBusy
	}
	return false
}

// IsLinkFailure checks whether the underlying link failed.
func IsLinkFailure(err error) bool {
	var sessErr *SessionError
	if errors.As(err, &sessErr) {
		return sessErr.Kind == ErrKindLinkFailure
	}
	return false
}
