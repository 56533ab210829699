package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bufferlabs/buffer-solver/internal/metrics"
	"github.com/bufferlabs/buffer-solver/internal/telemetry"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 256
)

// EventSource is the subscription half of the telemetry bus the hub
// feeds from.
type EventSource interface {
	Subscribe(pattern string) (<-chan telemetry.Event, func())
}

// upgrader configures the WebSocket upgrade parameters.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The feed is read-only telemetry; origin policy is left to the
		// CORS layer in front of dashboards.
		return true
	},
}

// client represents a single WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	subs map[string]bool // subscribed topic patterns
	mu   sync.RWMutex
}

// subscribeMsg is the JSON message a client sends to change its topic
// subscriptions, e.g. {"action":"subscribe","topics":["auction.*"]}.
type subscribeMsg struct {
	Action string   `json:"action"` // "subscribe" or "unsubscribe"
	Topics []string `json:"topics"`
}

// eventFrame is the wire shape of one telemetry event pushed to clients.
type eventFrame struct {
	Type  string          `json:"type"`
	Event telemetry.Event `json:"event"`
}

// statusFrame greets a client on connect so dashboards can render
// immediately, before any auction traffic arrives.
type statusFrame struct {
	Type          string `json:"type"`
	Strategy      string `json:"strategy"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Hub bridges the telemetry bus to connected WebSocket clients. Each
// client holds a set of topic patterns and receives only matching
// events.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	source     EventSource
	mu         sync.RWMutex
	logger     *slog.Logger
	strategy   string
	startedAt  time.Time
}

// NewHub creates a hub fed by the given event source. The strategy name
// is reported in the greeting frame.
func NewHub(source EventSource, strategy string, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		source:     source,
		logger:     logger.With(slog.String("component", "ws")),
		strategy:   strategy,
		startedAt:  time.Now().UTC(),
	}
}

// Run starts the hub's main event loop. It should be called in a
// goroutine and exits when the context is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	events, cancel := h.source.Subscribe("*")
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			metrics.WSClients.Set(0)
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			metrics.WSClients.Inc()
			h.logger.Info("client connected",
				slog.Int("total_clients", h.clientCount()),
			)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				metrics.WSClients.Dec()
			}
			h.mu.Unlock()
			h.logger.Info("client disconnected",
				slog.Int("total_clients", h.clientCount()),
			)

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			h.broadcast(ev)
		}
	}
}

// broadcast marshals the event once and fans it out to every subscribed
// client. Slow clients lose the frame rather than stalling the hub.
func (h *Hub) broadcast(ev telemetry.Event) {
	data, err := json.Marshal(eventFrame{Type: "event", Event: ev})
	if err != nil {
		h.logger.Warn("event marshal failed",
			slog.String("topic", ev.Topic),
			slog.String("error", err.Error()),
		)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.isSubscribed(ev.Topic) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping frame for slow client",
				slog.String("topic", ev.Topic),
			)
		}
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection and
// registers the client with the hub.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		// Everything until the client narrows its subscriptions.
		subs: map[string]bool{"*": true},
	}

	h.register <- c
	c.sendStatus()

	go c.writePump()
	go c.readPump()
}

// clientCount returns the number of currently connected clients.
func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// sendStatus queues the greeting frame.
func (c *client) sendStatus() {
	uptime := int64(time.Since(c.hub.startedAt).Seconds())
	if uptime < 0 {
		uptime = 0
	}

	data, err := json.Marshal(statusFrame{
		Type:          "status",
		Strategy:      c.hub.strategy,
		UptimeSeconds: uptime,
	})
	if err != nil {
		return
	}

	select {
	case c.send <- data:
	default:
	}
}

// readPump reads messages from the WebSocket connection. The only thing
// clients may send is subscription management (JSON text frames).
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected close error",
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var sub subscribeMsg
		if err := json.Unmarshal(message, &sub); err == nil && len(sub.Topics) > 0 {
			c.handleSubscription(sub)
		}
	}
}

// handleSubscription processes subscribe/unsubscribe requests. The first
// explicit subscribe replaces the catch-all default.
func (c *client) handleSubscription(msg subscribeMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Action {
	case "subscribe":
		if c.subs["*"] && len(c.subs) == 1 {
			delete(c.subs, "*")
		}
		for _, topic := range msg.Topics {
			c.subs[topic] = true
		}
	case "unsubscribe":
		for _, topic := range msg.Topics {
			delete(c.subs, topic)
		}
	}
}

// isSubscribed checks whether any of the client's patterns match the
// topic. A trailing "*" matches a topic family, so "auction.*" covers
// "auction.received" and "auction.rejected".
func (c *client) isSubscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.subs[topic] || c.subs["*"] {
		return true
	}
	for pattern := range c.subs {
		if strings.HasSuffix(pattern, "*") &&
			strings.HasPrefix(topic, pattern[:len(pattern)-1]) {
			return true
		}
	}
	return false
}

// writePump pumps frames from the hub to the WebSocket connection and
// sends periodic pings for keepalive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
