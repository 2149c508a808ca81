// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package link

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// newBackend starts a WebSocket test server that runs handler for each
// connection and returns its ws:// URL.
func newBackend(t *testing.T, handler func(*websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		handler(ws)
	}))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

// echoBackend answers each send frame with its text split into chunks.
func echoBackend(t *testing.T, chunks []string) string {
	_, url := newBackend(t, func(ws *websocket.Conn) {
		for {
			var f frame
			if err := ws.ReadJSON(&f); err != nil {
				return
			}
			if f.Type != frameSend {
				continue
			}
			for _, c := range chunks {
				ws.WriteJSON(frame{Type: frameChunk, Text: c})
			}
			ws.WriteJSON(frame{Type: frameDone})
		}
	})
	return url
}

func testConfig(url string) *Config {
	return &Config{
		URL:               url,
		ConnectionTimeout: 2 * time.Second,
		PingInterval:      time.Second,
		PingTimeout:       time.Second,
	}
}

func TestProbeReachableBackend(t *testing.T) {
	url := echoBackend(t, nil)
	l := NewLink(testConfig(url))

	assert.True(t, l.Probe(context.Background()))
}

func TestProbeUnreachableBackend(t *testing.T) {
	l := NewLink(&Config{
		URL:               "ws://127.0.0.1:1/ws",
		ConnectionTimeout: 500 * time.Millisecond,
	})

	assert.False(t, l.Probe(context.Background()))
}

func TestOpenClassifiesRefused(t *testing.T) {
	l := NewLink(&Config{
		URL:               "ws://127.0.0.1:1/ws",
		ConnectionTimeout: 500 * time.Millisecond,
	})

	_, err := l.Open(context.Background())
	require.Error(t, err)
	assert.True(t, IsRefused(err), "dial to closed port should classify as refused: %v", err)
}

func TestOpenClassifiesProtocolMismatch(t *testing.T) {
	// Plain HTTP endpoint that never upgrades.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	l := NewLink(testConfig("ws" + strings.TrimPrefix(srv.URL, "http")))
	_, err := l.Open(context.Background())
	require.Error(t, err)
	assert.True(t, IsProtocolMismatch(err), "failed upgrade should classify as protocol mismatch: %v", err)
}

func TestSendAndStreamDeliversChunksInOrder(t *testing.T) {
	url := echoBackend(t, []string{"Hel", "lo, ", "world"})
	l := NewLink(testConfig(url))

	h, err := l.Open(context.Background())
	require.NoError(t, err)
	defer h.Close()

	var got []string
	err = h.SendAndStream(context.Background(), "hi", func(chunk string) {
		got = append(got, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo, ", "world"}, got)
	assert.Equal(t, "Hello, world", strings.Join(got, ""))
}

func TestSendAndStreamErrorFrameAborts(t *testing.T) {
	_, url := newBackend(t, func(ws *websocket.Conn) {
		var f frame
		if err := ws.ReadJSON(&f); err != nil {
			return
		}
		ws.WriteJSON(frame{Type: frameChunk, Text: "partial"})
		ws.WriteJSON(frame{Type: frameError, Message: "model exploded"})
	})

	l := NewLink(testConfig(url))
	h, err := l.Open(context.Background())
	require.NoError(t, err)
	defer h.Close()

	var chunks int
	err = h.SendAndStream(context.Background(), "hi", func(string) { chunks++ })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model exploded")
	assert.Equal(t, 1, chunks)
}

func TestSecondStreamRejectedWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	_, url := newBackend(t, func(ws *websocket.Conn) {
		var f frame
		if err := ws.ReadJSON(&f); err != nil {
			return
		}
		<-release
		ws.WriteJSON(frame{Type: frameDone})
	})

	l := NewLink(testConfig(url))
	h, err := l.Open(context.Background())
	require.NoError(t, err)
	defer h.Close()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- h.SendAndStream(context.Background(), "first", func(string) {})
	}()

	// Wait until the first stream is registered.
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.streaming
	}, time.Second, 5*time.Millisecond)

	err = h.SendAndStream(context.Background(), "second", func(string) {})
	assert.ErrorIs(t, err, ErrStreamActive)

	close(release)
	assert.NoError(t, <-firstDone)
}

func TestMalformedFrameFailsLink(t *testing.T) {
	_, url := newBackend(t, func(ws *websocket.Conn) {
		var f frame
		if err := ws.ReadJSON(&f); err != nil {
			return
		}
		ws.WriteMessage(websocket.TextMessage, []byte("not json"))
		time.Sleep(100 * time.Millisecond)
	})

	l := NewLink(testConfig(url))
	h, err := l.Open(context.Background())
	require.NoError(t, err)
	defer h.Close()

	err = h.SendAndStream(context.Background(), "hi", func(string) {})
	require.Error(t, err)
	assert.True(t, IsProtocolMismatch(err))

	select {
	case lerr := <-h.Failed():
		assert.Equal(t, ErrKindProtocolMismatch, lerr.Kind)
	case <-time.After(time.Second):
		t.Fatal("Failed channel should deliver the link failure")
	}
}

func TestFailedDeliversOnServerDrop(t *testing.T) {
	_, url := newBackend(t, func(ws *websocket.Conn) {
		// Drop the connection without a close handshake.
		ws.UnderlyingConn().Close()
	})

	l := NewLink(testConfig(url))
	h, err := l.Open(context.Background())
	require.NoError(t, err)
	defer h.Close()

	select {
	case lerr := <-h.Failed():
		require.NotNil(t, lerr)
	case <-time.After(2 * time.Second):
		t.Fatal("expected failure after server drop")
	}
	assert.NotNil(t, h.Err())
}

func TestFailedDeliversTimeoutOnMissedPongs(t *testing.T) {
	// A backend that never reads never processes the client's pings, so
	// no pongs come back and the read deadline expires.
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	_, url := newBackend(t, func(ws *websocket.Conn) {
		<-done
	})

	l := NewLink(&Config{
		URL:               url,
		ConnectionTimeout: 2 * time.Second,
		PingInterval:      100 * time.Millisecond,
		PingTimeout:       100 * time.Millisecond,
	})
	h, err := l.Open(context.Background())
	require.NoError(t, err)
	defer h.Close()

	select {
	case lerr := <-h.Failed():
		require.NotNil(t, lerr)
		assert.Equal(t, ErrKindTimeout, lerr.Kind)
		assert.True(t, IsTimeout(lerr))
	case <-time.After(2 * time.Second):
		t.Fatal("missed pongs should fail the link with a timeout")
	}
	assert.NotNil(t, h.Err())
}

func TestCloseIsIdempotentAndClean(t *testing.T) {
	url := echoBackend(t, nil)
	l := NewLink(testConfig(url))

	h, err := l.Open(context.Background())
	require.NoError(t, err)

	h.Close()
	h.Close()

	select {
	case <-h.Closed():
	default:
		t.Fatal("Closed should be closed after Close")
	}

	// Clean close records no failure.
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, h.Err())
}

func TestNewLinkFillsDefaults(t *testing.T) {
	l := NewLink(&Config{URL: "ws://example.test/ws"})

	def := DefaultConfig()
	assert.Equal(t, "ws://example.test/ws", l.Config().URL)
	assert.Equal(t, def.ConnectionTimeout, l.Config().ConnectionTimeout)
	assert.Equal(t, def.PingInterval, l.Config().PingInterval)
	assert.Equal(t, def.PingTimeout, l.Config().PingTimeout)
}
