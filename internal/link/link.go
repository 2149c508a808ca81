// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package link

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds transport settings for the backend link.
type Config struct {
	// URL is the WebSocket endpoint of the chat backend.
	URL string

	// ConnectionTimeout bounds the opening handshake.
	ConnectionTimeout time.Duration

	// PingInterval is how often a ping is written on an idle link.
	PingInterval time.Duration

	// PingTimeout is how long to wait for the pong before declaring the
	// link dead.
	PingTimeout time.Duration
}

// DefaultConfig returns the desktop transport profile.
func DefaultConfig() *Config {
	return &Config{
		URL:               "ws://127.0.0.1:8765/ws",
		ConnectionTimeout: 30 * time.Second,
		PingInterval:      120 * time.Second,
		PingTimeout:       10 * time.Second,
	}
}

// =============================================================================
// LINK
// =============================================================================

// Link dials the chat backend over WebSocket. A Link is cheap and
// stateless; each successful Open produces an independent Handle.
type Link struct {
	config *Config
	dialer *websocket.Dialer
}

// NewLink creates a link with the given configuration. Zero-value fields
// are filled from DefaultConfig.
func NewLink(config *Config) *Link {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	if config.URL == "" {
		config.URL = def.URL
	}
	if config.ConnectionTimeout == 0 {
		config.ConnectionTimeout = def.ConnectionTimeout
	}
	if config.PingInterval == 0 {
		config.PingInterval = def.PingInterval
	}
	if config.PingTimeout == 0 {
		config.PingTimeout = def.PingTimeout
	}

	return &Link{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.ConnectionTimeout,
		},
	}
}

// Config returns the transport configuration.
func (l *Link) Config() *Config {
	return l.config
}

// Probe checks whether the backend is reachable without keeping the
// connection. Used at startup to decide between live and demo mode.
func (l *Link) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, l.config.ConnectionTimeout)
	defer cancel()

	ws, _, err := l.dialer.DialContext(ctx, l.config.URL, nil)
	if err != nil {
		return false
	}

	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	ws.Close()
	return true
}

// Open dials the backend and returns a live Handle with its read and ping
// pumps running. Dial failures are classified into LinkError kinds so the
// session can surface them distinctly.
func (l *Link) Open(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, l.config.ConnectionTimeout)
	defer cancel()

	ws, _, err := l.dialer.DialContext(ctx, l.config.URL, nil)
	if err != nil {
		return nil, classify(err)
	}

	return newHandle(ws, l.config), nil
}
