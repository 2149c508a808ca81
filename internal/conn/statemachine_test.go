// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conn

import (
	"testing"
	"time"
)

func testPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		RetryDelay: 10 * time.Millisecond,
		Backoff:    BackoffFixed,
	}
}

func TestInitialState(t *testing.T) {
	m := NewMachine(testPolicy())

	if m.State() != Disconnected {
		t.Errorf("Expected initial state Disconnected, got %v", m.State())
	}
	if m.Usable() {
		t.Error("Machine should not be usable before connecting")
	}
}

func TestHappyPathTransitions(t *testing.T) {
	m := NewMachine(testPolicy())

	if err := m.ConnectRequested(); err != nil {
		t.Fatalf("ConnectRequested failed: %v", err)
	}
	if m.State() != Connecting {
		t.Errorf("Expected Connecting, got %v", m.State())
	}

	if err := m.OpenSucceeded(); err != nil {
		t.Fatalf("OpenSucceeded failed: %v", err)
	}
	if m.State() != Connected {
		t.Errorf("Expected Connected, got %v", m.State())
	}
	if !m.Usable() {
		t.Error("Connected machine should be usable")
	}
}

func TestOpenFailedWithRetriesRemaining(t *testing.T) {
	m := NewMachine(testPolicy())
	m.ConnectRequested()

	state, err := m.OpenFailed()
	if err != nil {
		t.Fatalf("OpenFailed returned error: %v", err)
	}
	if state != Reconnecting {
		t.Errorf("Expected Reconnecting with retries remaining, got %v", state)
	}
	if m.Attempts() != 1 {
		t.Errorf("Expected 1 attempt, got %d", m.Attempts())
	}
}

func TestRetriesExhaustedEntersError(t *testing.T) {
	m := NewMachine(RetryPolicy{MaxRetries: 2, RetryDelay: time.Millisecond})
	m.ConnectRequested()

	// Initial attempt plus MaxRetries retries all fail.
	for i := 0; i < 2; i++ {
		state, _ := m.OpenFailed()
		if state != Reconnecting {
			t.Fatalf("Attempt %d: expected Reconnecting, got %v", i+1, state)
		}
		if next, _ := m.RetryDue(); next != Connecting {
			t.Fatalf("Attempt %d: expected Connecting after delay, got %v", i+1, next)
		}
	}

	state, _ := m.OpenFailed()
	if state != Error {
		t.Errorf("Expected Error after exhausting retries, got %v", state)
	}
}

func TestLinkFailedFromConnected(t *testing.T) {
	m := NewMachine(testPolicy())
	m.ConnectRequested()
	m.OpenSucceeded()

	if err := m.LinkFailed(); err != nil {
		t.Fatalf("LinkFailed failed: %v", err)
	}
	if m.State() != Reconnecting {
		t.Errorf("Expected Reconnecting after link failure, got %v", m.State())
	}
}

func TestOpenSucceededResetsAttempts(t *testing.T) {
	m := NewMachine(testPolicy())
	m.ConnectRequested()
	m.OpenFailed()
	m.RetryDue()
	m.OpenSucceeded()

	if m.Attempts() != 0 {
		t.Errorf("Expected attempt counter reset, got %d", m.Attempts())
	}
}

func TestErrorOnlyExitsThroughReset(t *testing.T) {
	m := NewMachine(RetryPolicy{MaxRetries: 0, RetryDelay: time.Millisecond})
	m.ConnectRequested()
	if state, _ := m.OpenFailed(); state != Error {
		t.Fatalf("Expected Error with zero retries, got %v", state)
	}

	// No other event leaves Error.
	if err := m.ConnectRequested(); err != ErrInvalidTransition {
		t.Errorf("ConnectRequested from Error should be invalid, got %v", err)
	}
	if err := m.OpenSucceeded(); err != ErrInvalidTransition {
		t.Errorf("OpenSucceeded from Error should be invalid, got %v", err)
	}
	if err := m.LinkFailed(); err != ErrInvalidTransition {
		t.Errorf("LinkFailed from Error should be invalid, got %v", err)
	}
	if _, err := m.RetryDue(); err != ErrInvalidTransition {
		t.Errorf("RetryDue from Error should be invalid, got %v", err)
	}

	if err := m.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if m.State() != Disconnected {
		t.Errorf("Expected Disconnected after reset, got %v", m.State())
	}
	if m.Attempts() != 0 {
		t.Errorf("Expected attempt counter cleared, got %d", m.Attempts())
	}
}

func TestResetInvalidOutsideError(t *testing.T) {
	m := NewMachine(testPolicy())
	if err := m.Reset(); err != ErrInvalidTransition {
		t.Errorf("Reset from Disconnected should be invalid, got %v", err)
	}
}

func TestFixedBackoffDelay(t *testing.T) {
	m := NewMachine(RetryPolicy{MaxRetries: 5, RetryDelay: 10 * time.Millisecond, Backoff: BackoffFixed})
	m.ConnectRequested()
	m.OpenFailed()
	m.RetryDue()
	m.OpenFailed()

	if d := m.RetryDelay(); d != 10*time.Millisecond {
		t.Errorf("Expected fixed 10ms delay, got %v", d)
	}
}

func TestLinearBackoffDelay(t *testing.T) {
	m := NewMachine(RetryPolicy{MaxRetries: 5, RetryDelay: 10 * time.Millisecond, Backoff: BackoffLinear})
	m.ConnectRequested()

	m.OpenFailed()
	if d := m.RetryDelay(); d != 10*time.Millisecond {
		t.Errorf("First retry: expected 10ms, got %v", d)
	}

	m.RetryDue()
	m.OpenFailed()
	if d := m.RetryDelay(); d != 20*time.Millisecond {
		t.Errorf("Second retry: expected 20ms, got %v", d)
	}

	m.RetryDue()
	m.OpenFailed()
	if d := m.RetryDelay(); d != 30*time.Millisecond {
		t.Errorf("Third retry: expected 30ms, got %v", d)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Disconnected, "disconnected"},
		{Connecting, "connecting"},
		{Connected, "connected"},
		{Error, "error"},
		{Reconnecting, "reconnecting"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
