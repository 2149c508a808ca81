// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// newViewport creates the transcript viewport.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// View renders the full chat screen: header, transcript, input, status.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

// headerView renders the top bar with the live connection indicator.
func (m *Model) headerView() string {
	m.header.SetStatus(m.statusBar.StateLabel())
	return m.header.View()
}

// footerView renders the input area and the status bar. While a response
// streams, the input line is replaced by a waiting indicator of the same
// height so the layout stays stable.
func (m *Model) footerView() string {
	var inner string
	if m.streaming {
		inner = m.spinner.View() + " " + m.theme.ThinkingText.Render("waiting for response...")
	} else {
		inner = m.input.View()
	}

	inputWidth := m.width - 2
	if inputWidth < 1 {
		inputWidth = 1
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.InputContainer.Width(inputWidth).Render(inner),
		m.statusBar.View(),
	)
}
