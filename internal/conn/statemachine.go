// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conn tracks the lifecycle of the backend connection.
package conn

import (
	"errors"
	"sync"
	"time"
)

// =============================================================================
// STATES
// =============================================================================

// State represents the connection lifecycle state.
type State int

const (
	Disconnected State = iota // No connection, none requested
	Connecting                // Dial in progress
	Connected                 // Link established and usable
	Error                     // Retries exhausted; waits for explicit reset
	Reconnecting              // Link lost; waiting to retry
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// =============================================================================
// RETRY POLICY
// =============================================================================

// Backoff selects how the retry delay scales across attempts.
type Backoff int

const (
	// BackoffFixed waits RetryDelay before every attempt.
	BackoffFixed Backoff = iota
	// BackoffLinear waits RetryDelay multiplied by the attempt count.
	BackoffLinear
)

// RetryPolicy is the immutable retry configuration, selected once at
// startup from a platform profile and never mutated afterward.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first
	// failed open before the machine enters Error.
	MaxRetries int

	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration

	// Backoff selects fixed or linearly scaled delays.
	Backoff Backoff
}

// =============================================================================
// MACHINE
// =============================================================================

// ErrInvalidTransition is returned when an event is not legal in the
// current state. State changes happen only through transition methods.
var ErrInvalidTransition = errors.New("invalid connection state transition")

// Machine is the single source of truth for whether a link is currently
// usable. The connect loop mutates it from a worker goroutine while the UI
// polls State at a fixed cadence, so access is mutex-protected.
//
// Transitions:
//
//	Disconnected --connect requested--> Connecting
//	Connecting   --open succeeded-----> Connected
//	Connecting   --open failed--------> Reconnecting | Error (retries exhausted)
//	Connected    --link failure-------> Reconnecting
//	Reconnecting --delay elapsed------> Connecting
//	Reconnecting --retries exhausted--> Error
//	Error        --explicit reset-----> Disconnected
type Machine struct {
	mu       sync.Mutex
	state    State
	attempts int
	policy   RetryPolicy
}

// NewMachine creates a machine in the Disconnected state.
func NewMachine(policy RetryPolicy) *Machine {
	return &Machine{state: Disconnected, policy: policy}
}

// State returns the current state. Safe to poll from any goroutine.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Usable reports whether a send may proceed right now.
func (m *Machine) Usable() bool {
	return m.State() == Connected
}

// Attempts returns the number of failed opens in the current connection
// cycle. The counter resets on success and on explicit reset.
func (m *Machine) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Policy returns the retry policy.
func (m *Machine) Policy() RetryPolicy {
	return m.policy
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// ConnectRequested moves Disconnected -> Connecting.
func (m *Machine) ConnectRequested() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Disconnected {
		return ErrInvalidTransition
	}
	m.state = Connecting
	return nil
}

// OpenSucceeded moves Connecting -> Connected and resets the attempt
// counter, giving the next reconnect cycle a full retry budget.
func (m *Machine) OpenSucceeded() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Connecting {
		return ErrInvalidTransition
	}
	m.state = Connected
	m.attempts = 0
	return nil
}

// OpenFailed records a failed open from Connecting and returns the
// resulting state: Reconnecting while retries remain, Error once the
// attempt counter exceeds MaxRetries.
func (m *Machine) OpenFailed() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Connecting {
		return m.state, ErrInvalidTransition
	}
	m.attempts++
	if m.attempts > m.policy.MaxRetries {
		m.state = Error
	} else {
		m.state = Reconnecting
	}
	return m.state, nil
}

// LinkFailed moves Connected -> Reconnecting after a mid-stream failure or
// ping timeout.
func (m *Machine) LinkFailed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Connected {
		return ErrInvalidTransition
	}
	m.state = Reconnecting
	return nil
}

// RetryDue moves Reconnecting -> Connecting once the retry delay has
// elapsed. Returns Error without transitioning if retries are exhausted.
func (m *Machine) RetryDue() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Reconnecting {
		return m.state, ErrInvalidTransition
	}
	if m.attempts > m.policy.MaxRetries {
		m.state = Error
		return m.state, nil
	}
	m.state = Connecting
	return m.state, nil
}

// Reset moves Error -> Disconnected and clears the attempt counter. Reset
// is the only path out of Error.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Error {
		return ErrInvalidTransition
	}
	m.state = Disconnected
	m.attempts = 0
	return nil
}

// =============================================================================
// RETRY TIMING
// =============================================================================

// RetryDelay returns the delay to wait before the next attempt, derived
// from the policy and the current attempt counter.
func (m *Machine) RetryDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.policy.Backoff == BackoffLinear && m.attempts > 1 {
		return m.policy.RetryDelay * time.Duration(m.attempts)
	}
	return m.policy.RetryDelay
}
