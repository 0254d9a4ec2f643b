package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// feedServer stands in for the petition backend's WebSocket surface.
func feedServer(t *testing.T, payloads ...string) string {
	t.Helper()

	push := func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, payload := range payloads {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}
		// Hold the connection open until the client walks away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}

	r := chi.NewRouter()
	r.Get("/ws/petitions", push)
	r.Get("/ws/petitions/my/{userId}", push)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWSFeed(t *testing.T) {
	t.Run("broadcast feed delivers pushed messages", func(t *testing.T) {
		base := feedServer(t, `{"type":"update","petitions":[{"petition_id":1}]}`)
		feed := NewBroadcastFeed(base)
		assert.Equal(t, "broadcast", feed.Name())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		out := make(chan json.RawMessage, 4)
		done := make(chan error, 1)
		go func() { done <- feed.Run(ctx, out) }()

		select {
		case msg := <-out:
			assert.JSONEq(t, `{"type":"update","petitions":[{"petition_id":1}]}`, string(msg))
		case <-time.After(2 * time.Second):
			t.Fatal("no message from broadcast feed")
		}

		cancel()
		require.NoError(t, <-done)
	})

	t.Run("user feed addresses the per-user path", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			conn.Close()
		}))
		defer server.Close()

		feed := NewUserFeed("ws"+strings.TrimPrefix(server.URL, "http"), 7)
		assert.Equal(t, "user", feed.Name())

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		feed.Run(ctx, make(chan json.RawMessage, 1))
		assert.Equal(t, "/ws/petitions/my/7", gotPath)
	})

	t.Run("unreachable server surfaces a dial error", func(t *testing.T) {
		feed := NewBroadcastFeed("ws://127.0.0.1:1")
		err := feed.Run(context.Background(), make(chan json.RawMessage, 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dial broadcast feed")
	})

	t.Run("cancellation ends the read loop cleanly", func(t *testing.T) {
		base := feedServer(t)
		feed := NewBroadcastFeed(base)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- feed.Run(ctx, make(chan json.RawMessage, 1)) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("feed did not stop after cancellation")
		}
	})
}
