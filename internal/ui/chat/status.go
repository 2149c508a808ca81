// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/tidechat-tui/internal/link"
	"github.com/jeranaias/tidechat-tui/internal/session"
)

// =============================================================================
// USER-FACING MESSAGES
// =============================================================================

const (
	// WelcomeMessage greets the user on startup.
	WelcomeMessage = "Welcome to tidechat! Type a message below to get started."

	// DemoModeMessage announces the offline fallback.
	DemoModeMessage = "No server found. Running in demo mode."

	// ConfigReloadedMessage confirms a configuration file change was
	// picked up.
	ConfigReloadedMessage = "Configuration reloaded."
)

// FormatError turns a transport or session failure into the message shown
// in the transcript. Specific failure kinds get actionable text; anything
// else falls through to the raw error.
func FormatError(err error) string {
	switch {
	case link.IsTimeout(err):
		return "Request timed out. Please try again."
	case link.IsRefused(err):
		return "Cannot connect to server. Please check if the server is running."
	case link.IsProtocolMismatch(err):
		return "Server does not speak the chat protocol. Check the server URL."
	case session.IsBusy(err):
		return "Please wait for the current response to finish."
	case session.IsNotConnected(err):
		return "Not connected to a server."
	case session.IsLinkFailure(err):
		return "Connection lost. Switching to demo mode."
	default:
		return "An error occurred: " + err.Error()
	}
}

// ShouldFallBackToDemo reports whether a stream failure warrants switching
// the client to the offline responder.
func ShouldFallBackToDemo(err error) bool {
	return session.IsLinkFailure(err) || session.IsNotConnected(err)
}
