// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tidechat-tui/internal/conn"
	"github.com/jeranaias/tidechat-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar renders the bottom bar: connection state, mode, and shortcuts.
type StatusBar struct {
	Width    int
	State    conn.State
	DemoMode bool
	theme    *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetState updates the displayed connection state.
func (s *StatusBar) SetState(state conn.State) {
	s.State = state
}

// SetDemoMode marks the bar as running against the demo responder.
func (s *StatusBar) SetDemoMode(demo bool) {
	s.DemoMode = demo
}

// StateLabel returns the styled state indicator.
func (s *StatusBar) StateLabel() string {
	if s.DemoMode {
		return s.theme.StatusDemo.Render("● demo mode")
	}
	switch s.State {
	case conn.Connected:
		return s.theme.StatusConnected.Render("● connected")
	case conn.Connecting:
		return s.theme.StatusConnecting.Render("◌ connecting")
	case conn.Reconnecting:
		return s.theme.StatusReconnecting.Render("◌ reconnecting")
	case conn.Error:
		return s.theme.StatusError.Render("✗ connection error")
	default:
		return s.theme.StatusConnecting.Render("○ disconnected")
	}
}

// View renders the status bar.
func (s *StatusBar) View() string {
	left := s.StateLabel()
	right := s.theme.StatusBar.Render("enter: send  •  ctrl+c: quit")

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	line := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return s.theme.StatusBar.Width(s.Width).Render(line)
}
