// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"testing"

	"github.com/jeranaias/tidechat-tui/internal/link"
	"github.com/jeranaias/tidechat-tui/internal/session"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout",
			err:  link.ErrTimeout,
			want: "Request timed out. Please try again.",
		},
		{
			name: "refused",
			err:  link.ErrRefused,
			want: "Cannot connect to server. Please check if the server is running.",
		},
		{
			name: "protocol mismatch",
			err:  link.ErrProtocolMismatch,
			want: "Server does not speak the chat protocol. Check the server URL.",
		},
		{
			name: "busy",
			err:  session.ErrBusy,
			want: "Please wait for the current response to finish.",
		},
		{
			name: "not connected",
			err:  session.ErrNotConnected,
			want: "Not connected to a server.",
		},
		{
			name: "link failure",
			err:  &session.SessionError{Kind: session.ErrKindLinkFailure, Message: "response stream failed"},
			want: "Connection lost. Switching to demo mode.",
		},
		{
			name: "unrecognized",
			err:  errors.New("boom"),
			want: "An error occurred: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatError(tt.err); got != tt.want {
				t.Errorf("FormatError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

// A wrapped link timeout must still map to the timeout text, since stream
// failures arrive wrapped in a SessionError.
func TestFormatErrorUnwrapsWrappedCauses(t *testing.T) {
	wrapped := &session.SessionError{
		Kind:    session.ErrKindLinkFailure,
		Message: "response stream failed",
		Cause:   link.ErrTimeout,
	}
	if got := FormatError(wrapped); got != "Request timed out. Please try again." {
		t.Errorf("FormatError(wrapped timeout) = %q", got)
	}
}

func TestShouldFallBackToDemo(t *testing.T) {
	if !ShouldFallBackToDemo(&session.SessionError{Kind: session.ErrKindLinkFailure}) {
		t.Error("link failure should trigger demo fallback")
	}
	if !ShouldFallBackToDemo(session.ErrNotConnected) {
		t.Error("not-connected should trigger demo fallback")
	}
	if ShouldFallBackToDemo(session.ErrBusy) {
		t.Error("busy should not trigger demo fallback")
	}
	if ShouldFallBackToDemo(errors.New("boom")) {
		t.Error("arbitrary errors should not trigger demo fallback")
	}
}
