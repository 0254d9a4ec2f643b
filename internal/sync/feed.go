package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/grievease/petition-client-go/internal/config"
)

// UpdateSource is one push channel feeding raw petition messages into
// the reconciler. Run blocks until the connection drops or ctx is
// cancelled; both feed implementations are best-effort and a failed
// Run never takes down the watcher.
type UpdateSource interface {
	Name() string
	Run(ctx context.Context, out chan<- json.RawMessage) error
}

// wsFeed reads framed messages from one server WebSocket endpoint.
type wsFeed struct {
	name string
	url  string
}

// NewUserFeed follows the per-user petition channel. It needs the
// numeric user id, so it is only opened for signed-in citizens.
func NewUserFeed(wsBaseURL string, userID int64) UpdateSource {
	return &wsFeed{
		name: "user",
		url:  fmt.Sprintf("%s/ws/petitions/my/%d", wsBaseURL, userID),
	}
}

// NewBroadcastFeed follows the global petition channel, which is open
// to any client regardless of identity.
func NewBroadcastFeed(wsBaseURL string) UpdateSource {
	return &wsFeed{
		name: "broadcast",
		url:  wsBaseURL + "/ws/petitions",
	}
}

func (f *wsFeed) Name() string {
	return f.name
}

func (f *wsFeed) Run(ctx context.Context, out chan<- json.RawMessage) error {
	dialer := websocket.Dialer{HandshakeTimeout: config.WSHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s feed: %w", f.name, err)
	}
	defer conn.Close()

	log.Debug().Str("feed", f.name).Str("url", f.url).Msg("feed connected")

	// Unblock ReadMessage when the watcher shuts down.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go f.keepAlive(ctx, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s feed: %w", f.name, err)
		}
		select {
		case out <- json.RawMessage(data):
		case <-ctx.Done():
			return nil
		}
	}
}

func (f *wsFeed) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(config.WSPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(config.WSWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
