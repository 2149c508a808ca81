// tidechat TUI - A terminal chat client with streaming responses.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/tidechat-tui/internal/config"
	"github.com/jeranaias/tidechat-tui/internal/conn"
	"github.com/jeranaias/tidechat-tui/internal/link"
	"github.com/jeranaias/tidechat-tui/internal/offline"
	"github.com/jeranaias/tidechat-tui/internal/session"
	"github.com/jeranaias/tidechat-tui/internal/ui/chat"
	"github.com/jeranaias/tidechat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

// send delivers a message to the running program from a worker goroutine.
func send(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	var (
		mobile      = flag.Bool("mobile", false, "use the mobile connection profile (aggressive pings, more retries)")
		serverURL   = flag.String("server", "", "WebSocket URL of the chat backend (overrides config)")
		configPath  = flag.String("config", "", "path to a config file (default ~/.tidechat/config.toml)")
		themeName   = flag.String("theme", "", "color theme: dark, light, auto (overrides config)")
		noWatch     = flag.Bool("no-watch", false, "disable config file hot reload")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tidechat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: tidechat requires an interactive terminal")
		os.Exit(1)
	}

	// Select the platform profile, then layer file and env on top.
	profile := config.Default()
	if *mobile {
		profile = config.Mobile()
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromPath(profile, *configPath)
	} else {
		cfg, err = config.Load(profile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config.
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *themeName != "" {
		cfg.UI.Theme = *themeName
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *configPath, *noWatch); err != nil {
		fmt.Fprintf(os.Stderr, "Error running tidechat: %v\n", err)
		os.Exit(1)
	}
}

// run assembles the transport stack and drives the Bubble Tea program
// until the user quits.
func run(cfg *config.Config, configPath string, noWatch bool) error {
	theme := styles.NewTheme(cfg.UI.Theme)

	lnk := link.NewLink(&link.Config{
		URL:               cfg.Server.URL,
		ConnectionTimeout: cfg.Connection.ConnectionTimeout(),
		PingInterval:      cfg.Connection.PingInterval(),
		PingTimeout:       cfg.Connection.PingTimeout(),
	})
	machine := conn.NewMachine(conn.RetryPolicy{
		MaxRetries: cfg.Connection.MaxRetries,
		RetryDelay: cfg.Connection.RetryDelay(),
		Backoff:    conn.BackoffFixed,
	})
	sess := session.New(lnk, machine)
	defer sess.Close()

	responder := offline.NewResponder(0)

	app := &App{
		chat:      chat.New(cfg, theme, machine.State),
		link:      lnk,
		session:   sess,
		responder: responder,
	}

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Hot reload of the config file, delivered onto the update loop.
	if !noWatch {
		path := configPath
		if path == "" {
			if defaultPath, err := config.ConfigPath(); err == nil {
				path = defaultPath
			}
		}
		if path != "" {
			if _, err := os.Stat(path); err == nil {
				watcher, err := config.WatchFile(path, 200*time.Millisecond, func(reloaded *config.Config) {
					send(chat.ConfigReloadedMsg{Config: reloaded})
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: config hot reload disabled: %v\n", err)
				} else {
					defer watcher.Close()
				}
			}
		}
	}

	_, err := p.Run()
	return err
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// App is the top-level Bubble Tea model. It wraps the chat view and runs
// its blocking requests (probe, connect, stream) on worker goroutines,
// delivering results back onto the update loop.
type App struct {
	chat      *chat.Model
	link      *link.Link
	session   *session.Session
	responder *offline.Responder
}

// Init initializes the wrapped chat view.
func (a *App) Init() tea.Cmd {
	return a.chat.Init()
}

// Update intercepts the chat view's outbound requests; everything else
// flows through to the chat model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chat.ProbeRequestMsg:
		return a, a.probeBackend()

	case chat.ProbeResultMsg:
		// Let the chat view record the result, then start connecting if
		// the backend answered.
		_, cmd := a.chat.Update(msg)
		if msg.Reachable {
			return a, tea.Batch(cmd, a.connectBackend())
		}
		return a, cmd

	case chat.SendRequestMsg:
		if msg.Demo {
			return a, a.streamDemo(msg)
		}
		return a, a.streamLive(msg)
	}

	_, cmd := a.chat.Update(msg)
	return a, cmd
}

// View renders the wrapped chat view.
func (a *App) View() string {
	return a.chat.View()
}

// =============================================================================
// WORKERS
// =============================================================================

// probeBackend checks backend reachability without touching connection
// state.
func (a *App) probeBackend() tea.Cmd {
	lnk := a.link
	timeout := 5 * time.Second

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return chat.ProbeResultMsg{Reachable: lnk.Probe(ctx)}
	}
}

// connectBackend runs the full connect cycle, including retries.
func (a *App) connectBackend() tea.Cmd {
	sess := a.session

	return func() tea.Msg {
		return chat.ConnectResultMsg{Err: sess.Connect(context.Background())}
	}
}

// streamLive submits a message over the live session. Chunks and
// completion arrive via send from the session's worker goroutine.
func (a *App) streamLive(msg chat.SendRequestMsg) tea.Cmd {
	sess := a.session

	return func() tea.Msg {
		err := sess.Send(context.Background(), msg.Content,
			func(chunk string) {
				send(chat.StreamChunkMsg{StreamID: msg.StreamID, Chunk: chunk})
			},
			func(err error) {
				send(chat.StreamCompleteMsg{StreamID: msg.StreamID, Err: err})
			},
		)
		if err != nil {
			// Rejected before the stream started (busy, not connected).
			return chat.StreamCompleteMsg{StreamID: msg.StreamID, Err: err}
		}
		return nil
	}
}

// streamDemo produces a canned response through the offline responder,
// paced to read like a live stream.
func (a *App) streamDemo(msg chat.SendRequestMsg) tea.Cmd {
	responder := a.responder

	return func() tea.Msg {
		err := responder.Stream(context.Background(), msg.Content, func(chunk string) {
			send(chat.StreamChunkMsg{StreamID: msg.StreamID, Chunk: chunk})
		})
		return chat.StreamCompleteMsg{StreamID: msg.StreamID, Err: err}
	}
}
