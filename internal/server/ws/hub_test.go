package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufferlabs/buffer-solver/internal/telemetry"
)

func startHub(t *testing.T) (*telemetry.Bus, *websocket.Conn) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	bus := telemetry.NewBus(16, logger)
	t.Cleanup(bus.Close)

	hub := NewHub(bus, "first-eligible", logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return bus, conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func frameType(t *testing.T, frame map[string]json.RawMessage) string {
	t.Helper()
	var typ string
	require.NoError(t, json.Unmarshal(frame["type"], &typ))
	return typ
}

// TestHubGreeting checks a fresh connection is greeted with the status
// frame before any events.
func TestHubGreeting(t *testing.T) {
	_, conn := startHub(t)

	frame := readFrame(t, conn)
	require.Equal(t, "status", frameType(t, frame))

	var status statusFrame
	require.NoError(t, json.Unmarshal(frame["strategy"], &status.Strategy))
	assert.Equal(t, "first-eligible", status.Strategy)
}

// TestHubBroadcastsEvents checks bus events reach the client as JSON
// text frames.
func TestHubBroadcastsEvents(t *testing.T) {
	bus, conn := startHub(t)

	// The greeting doubles as the registration barrier: once it arrives,
	// the client is known to the hub and no published event can be lost.
	require.Equal(t, "status", frameType(t, readFrame(t, conn)))

	bus.Publish(telemetry.TopicSolutionBuilt, map[string]any{"auction_id": "7"})

	frame := readFrame(t, conn)
	require.Equal(t, "event", frameType(t, frame))

	var ev telemetry.Event
	require.NoError(t, json.Unmarshal(frame["event"], &ev))
	assert.Equal(t, telemetry.TopicSolutionBuilt, ev.Topic)
	assert.NotEmpty(t, ev.ID)
}

func TestClientSubscriptionMatching(t *testing.T) {
	c := &client{subs: map[string]bool{"*": true}}

	assert.True(t, c.isSubscribed(telemetry.TopicAuctionReceived))
	assert.True(t, c.isSubscribed(telemetry.TopicNotifyReceived))

	// The first explicit subscribe replaces the catch-all.
	c.handleSubscription(subscribeMsg{Action: "subscribe", Topics: []string{"solution.*"}})
	assert.True(t, c.isSubscribed(telemetry.TopicSolutionBuilt))
	assert.True(t, c.isSubscribed(telemetry.TopicSolutionEmpty))
	assert.False(t, c.isSubscribed(telemetry.TopicAuctionReceived))

	c.handleSubscription(subscribeMsg{Action: "subscribe", Topics: []string{telemetry.TopicAuctionRejected}})
	assert.True(t, c.isSubscribed(telemetry.TopicAuctionRejected))
	assert.False(t, c.isSubscribed(telemetry.TopicAuctionReceived))

	c.handleSubscription(subscribeMsg{Action: "unsubscribe", Topics: []string{"solution.*"}})
	assert.False(t, c.isSubscribed(telemetry.TopicSolutionBuilt))
	assert.True(t, c.isSubscribed(telemetry.TopicAuctionRejected))
}

// TestHubShutdownClosesClients checks cancelling the run context closes
// client connections.
func TestHubShutdownClosesClients(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	bus := telemetry.NewBus(16, logger)
	t.Cleanup(bus.Close)

	hub := NewHub(bus, "last", logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	readFrame(t, conn)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
