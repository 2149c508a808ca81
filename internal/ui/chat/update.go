// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tidechat-tui/internal/config"
	"github.com/jeranaias/tidechat-tui/internal/model"
	"github.com/jeranaias/tidechat-tui/internal/stream"
)

// Update handles all Bubble Tea messages for the chat view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.header.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.msgList.SetWidth(msg.Width - 2)
		m.input.Width = msg.Width - 8

		chrome := lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView())
		vpHeight := msg.Height - chrome
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = newViewport(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.renderTranscript(true)
		return m, nil

	// ==========================================================================
	// INPUT
	// ==========================================================================

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			return m, m.submit()
		case "pgup", "pgdown", "home", "end":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	// ==========================================================================
	// CONNECTION LIFECYCLE
	// ==========================================================================

	case ProbeResultMsg:
		if !msg.Reachable {
			m.SetDemoMode(true)
			m.history.Append(model.NewSystemMessage(DemoModeMessage))
			m.renderTranscript(true)
		}
		return m, nil

	case ConnectResultMsg:
		if msg.Err != nil {
			m.history.Append(model.NewSystemMessage(FormatError(msg.Err)))
			if !m.demoMode {
				m.SetDemoMode(true)
				m.history.Append(model.NewSystemMessage(DemoModeMessage))
			}
			m.renderTranscript(true)
		}
		return m, nil

	case StateTickMsg:
		m.statusBar.SetState(m.connState())
		return m, stateTickCmd()

	case ConfigReloadedMsg:
		return m, m.applyConfig(msg.Config)

	// ==========================================================================
	// STREAMING
	// ==========================================================================

	case StreamChunkMsg:
		if msg.StreamID != m.streamID {
			// Leftover from an aborted stream.
			return m, nil
		}
		if m.coalescer.Offer(msg.Chunk) {
			id := m.streamID
			return m, tea.Tick(m.coalescer.BatchDelay(), func(t time.Time) tea.Msg {
				return FlushTickMsg{StreamID: id, Time: t}
			})
		}
		return m, nil

	case FlushTickMsg:
		if msg.StreamID != m.streamID {
			return m, nil
		}
		return m, m.flush()

	case StreamCompleteMsg:
		if msg.StreamID != m.streamID {
			return m, nil
		}
		return m, m.completeStream(msg.Err)

	case ScrollTickMsg:
		if m.throttle.Fire() {
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	// Everything else (cursor blink, spinner ticks, mouse wheel) flows to
	// the embedded components.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// SUBMIT
// =============================================================================

// submit validates the input line and hands it to the program runner.
// Empty input and submits during an active stream are ignored.
func (m *Model) submit() tea.Cmd {
	if m.streaming {
		return nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()

	m.history.Append(model.NewUserMessage(text))
	m.streaming = true
	m.streamID = newStreamID()
	m.renderTranscript(true)

	req := SendRequestMsg{StreamID: m.streamID, Content: text, Demo: m.demoMode}
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return req },
	)
}

// =============================================================================
// STREAM PLUMBING
// =============================================================================

// flush drains the coalescer into the transcript as one append, then
// requests a scroll through the throttle.
func (m *Model) flush() tea.Cmd {
	text, ok := m.coalescer.Flush()
	if !ok {
		return nil
	}
	m.history.UpdateLast(text)
	m.renderTranscript(false)

	fire, wait := m.throttle.Trigger()
	if fire {
		m.viewport.GotoBottom()
		return nil
	}
	if wait > 0 {
		return tea.Tick(wait, func(t time.Time) tea.Msg {
			return ScrollTickMsg{Time: t}
		})
	}
	return nil
}

// completeStream finalizes the transcript after the stream ends, drains
// any buffered chunks first, and returns input focus to the user.
func (m *Model) completeStream(err error) tea.Cmd {
	if text, ok := m.coalescer.Flush(); ok {
		m.history.UpdateLast(text)
	}
	m.coalescer.Reset()
	m.throttle.Force()
	m.streaming = false
	m.streamID = ""

	m.history.FinalizeLast()
	if err != nil {
		m.history.Append(model.NewSystemMessage(FormatError(err)))
		if ShouldFallBackToDemo(err) && !m.demoMode {
			m.SetDemoMode(true)
			m.history.Append(model.NewSystemMessage(DemoModeMessage))
		}
	}

	m.renderTranscript(true)
	m.input.Focus()
	return textinput.Blink
}

// applyConfig picks up a hot-reloaded configuration. Rendering timings
// take effect on the next stream; swapping them mid-stream would drop
// buffered chunks, so an active stream keeps the old values.
func (m *Model) applyConfig(cfg *config.Config) tea.Cmd {
	if cfg == nil {
		return nil
	}
	m.cfg = cfg
	if !m.streaming {
		m.coalescer = stream.NewCoalescer(cfg.UI.TextBatch())
		m.throttle = stream.NewThrottle(cfg.UI.ScrollThrottle())
	}
	m.history.Append(model.NewSystemMessage(ConfigReloadedMessage))
	m.renderTranscript(true)
	return nil
}

// renderTranscript re-renders the message list into the viewport.
func (m *Model) renderTranscript(scrollToBottom bool) {
	if !m.ready {
		return
	}
	m.msgList.SetMessages(m.history.Messages())
	m.viewport.SetContent(m.msgList.View())
	if scrollToBottom {
		m.viewport.GotoBottom()
	}
}
