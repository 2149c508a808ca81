// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tidechat-tui/internal/ui/styles"
	"github.com/jeranaias/tidechat-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header renders the top bar: app title on the left, connection status on
// the right.
type Header struct {
	Width  int
	Title  string
	Status string
	theme  *styles.Theme
}

// NewHeader creates a header with the app title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Width: 80,
		Title: "tidechat",
		theme: theme,
	}
}

// SetWidth sets the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetStatus sets the right-aligned status text, already styled.
func (h *Header) SetStatus(status string) {
	h.Status = status
}

// View renders the header bar.
func (h *Header) View() string {
	title := h.theme.HeaderTitle.Render(h.Title)

	gap := h.Width - lipgloss.Width(title) - lipgloss.Width(h.Status) - 4
	if gap < 1 {
		gap = 1
	}

	line := title + util.PadRight("", gap) + h.Status
	return h.theme.Header.Width(h.Width).Render(line)
}
