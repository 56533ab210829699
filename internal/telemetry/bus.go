// Package telemetry carries the endpoint's activity feed: a small
// in-process pub/sub bus that handlers publish to and the WebSocket hub
// subscribes to, plus running counters for the status endpoint.
package telemetry

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bufferlabs/buffer-solver/internal/metrics"
)

// Topics published by the endpoint. Subscribers may match a family with
// a trailing wildcard, e.g. "auction.*".
const (
	TopicAuctionReceived = "auction.received"
	TopicAuctionRejected = "auction.rejected"
	TopicSolutionBuilt   = "solution.built"
	TopicSolutionEmpty   = "solution.empty"
	TopicNotifyReceived  = "notify.received"
)

// Event is one telemetry record. Payload holds topic-specific fields and
// must marshal cleanly to JSON, since events go to WebSocket clients
// verbatim.
type Event struct {
	ID      string    `json:"id"`
	Topic   string    `json:"topic"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

type subscriber struct {
	pattern string
	ch      chan Event
}

// Bus fans events out to subscribers in process. Publish never blocks:
// a subscriber whose buffer is full loses the event, which keeps a slow
// WebSocket client from stalling the solve path.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	buffer int
	closed bool
	logger *slog.Logger
}

// NewBus creates a bus whose subscriber channels buffer up to buffer
// events.
func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		subs:   make(map[int]*subscriber),
		buffer: buffer,
		logger: logger.With(slog.String("component", "telemetry")),
	}
}

// Publish delivers an event to every subscriber whose pattern matches
// the topic.
func (b *Bus) Publish(topic string, payload any) {
	ev := Event{
		ID:      uuid.NewString(),
		Topic:   topic,
		Time:    time.Now().UTC(),
		Payload: payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if !matchTopic(s.pattern, topic) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			metrics.EventsDropped.Inc()
			b.logger.Debug("event dropped for slow subscriber",
				slog.String("topic", topic))
		}
	}
}

// Subscribe registers a subscriber for topics matching pattern and
// returns its event channel along with a cancel function. Cancel is
// idempotent and closes the channel.
func (b *Bus) Subscribe(pattern string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = &subscriber{pattern: pattern, ch: ch}

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
	}
	return ch, cancel
}

// Close shuts the bus down: all subscriber channels are closed and
// further publishes are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		close(s.ch)
	}
}

// matchTopic reports whether pattern matches topic. A pattern is either
// an exact topic name, "*" for everything, or a prefix ending in "*"
// such as "auction.*".
func matchTopic(pattern, topic string) bool {
	if pattern == topic || pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(topic, pattern[:len(pattern)-1])
	}
	return false
}
