// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/tidechat-tui/internal/config"
	"github.com/jeranaias/tidechat-tui/internal/conn"
	"github.com/jeranaias/tidechat-tui/internal/history"
	"github.com/jeranaias/tidechat-tui/internal/stream"
	"github.com/jeranaias/tidechat-tui/internal/ui/components"
	"github.com/jeranaias/tidechat-tui/internal/ui/styles"

	"github.com/jeranaias/tidechat-tui/internal/model"
)

// =============================================================================
// TIMING
// =============================================================================

const (
	// probeDelay is how long after startup the backend probe fires.
	probeDelay = time.Second

	// statePollInterval is how often the status bar re-reads the
	// connection state.
	statePollInterval = 2 * time.Second
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It owns the transcript
// history, the chunk coalescer, and the scroll throttle; all mutation
// happens on the update loop, so none of it needs locking.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	header    *components.Header
	statusBar *components.StatusBar
	msgList   *components.MessageList

	history   *history.Store
	coalescer *stream.Coalescer
	throttle  *stream.Throttle

	// stateFn reads the connection state machine. Nil when no session
	// exists (tests, forced demo mode).
	stateFn func() conn.State

	demoMode  bool
	streaming bool
	streamID  string

	width  int
	height int
	ready  bool
}

// New creates the chat model. stateFn may be nil when there is no live
// session to observe.
func New(cfg *config.Config, theme *styles.Theme, stateFn func() conn.State) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	hist := history.NewStore(cfg.UI.MaxMessageHistory)
	hist.Append(model.NewSystemMessage(WelcomeMessage))

	return &Model{
		theme:     theme,
		cfg:       cfg,
		input:     ti,
		spinner:   sp,
		header:    components.NewHeader(theme),
		statusBar: components.NewStatusBar(theme),
		msgList:   components.NewMessageList(theme),
		history:   hist,
		coalescer: stream.NewCoalescer(cfg.UI.TextBatch()),
		throttle:  stream.NewThrottle(cfg.UI.ScrollThrottle()),
		stateFn:   stateFn,
	}
}

// History exposes the transcript store, read-only by convention.
func (m *Model) History() *history.Store {
	return m.history
}

// DemoMode reports whether the model routes sends to the offline
// responder.
func (m *Model) DemoMode() bool {
	return m.demoMode
}

// SetDemoMode forces demo mode, used when the client starts with no
// backend configured.
func (m *Model) SetDemoMode(demo bool) {
	m.demoMode = demo
	m.statusBar.SetDemoMode(demo)
}

// Streaming reports whether a response is currently being received.
func (m *Model) Streaming() bool {
	return m.streaming
}

// Init schedules the startup probe and the state poll.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		tea.Tick(probeDelay, func(time.Time) tea.Msg { return ProbeRequestMsg{} }),
		stateTickCmd(),
	)
}

// stateTickCmd schedules the next status-bar poll.
func stateTickCmd() tea.Cmd {
	return tea.Tick(statePollInterval, func(t time.Time) tea.Msg {
		return StateTickMsg{Time: t}
	})
}

// connState reads the machine, or Disconnected without one.
func (m *Model) connState() conn.State {
	if m.stateFn == nil {
		return conn.Disconnected
	}
	return m.stateFn()
}

// newStreamID tags a send so stale chunks from an aborted stream can be
// recognized and dropped.
func newStreamID() string {
	return "stream_" + uuid.NewString()
}
