package realtime

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tmusial/convoy/internal/metrics"
)

// subscriberBuffer is the per-subscriber event queue size. A subscriber
// that falls this far behind is dropped rather than blocking publishers.
const subscriberBuffer = 16

// Subscriber receives events for a set of topics.
type Subscriber struct {
	events chan Event
	topics []string
}

// Events returns the subscriber's event channel. The channel is closed
// when the subscriber is dropped or unsubscribed.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Hub fans change events out to per-topic subscribers.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}

	upgrader websocket.Upgrader
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscriber]struct{}),
		upgrader: websocket.Upgrader{
			// Tokens already gate the endpoint; the feed carries no
			// cross-origin state.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe registers a new subscriber for the given topics.
func (h *Hub) Subscribe(topics ...string) *Subscriber {
	sub := &Subscriber{
		events: make(chan Event, subscriberBuffer),
		topics: topics,
	}

	h.mu.Lock()
	for _, topic := range topics {
		if h.topics[topic] == nil {
			h.topics[topic] = make(map[*Subscriber]struct{})
		}
		h.topics[topic][sub] = struct{}{}
	}
	h.mu.Unlock()

	metrics.RealtimeClients.Inc()
	return sub
}

// Unsubscribe removes the subscriber and closes its event channel.
// Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	removed := false
	for _, topic := range sub.topics {
		if subs, ok := h.topics[topic]; ok {
			if _, present := subs[sub]; present {
				delete(subs, sub)
				removed = true
			}
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	h.mu.Unlock()

	if removed {
		close(sub.events)
		metrics.RealtimeClients.Dec()
	}
}

// Publish delivers the event to every subscriber of the topic. Slow
// subscribers are dropped; persisted state is the source of truth, so a
// reconnecting client re-reads and resumes.
func (h *Hub) Publish(topic string, ev Event) {
	h.mu.RLock()
	var slow []*Subscriber
	for sub := range h.topics[topic] {
		select {
		case sub.events <- ev:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		slog.Warn("dropping slow realtime subscriber", "topic", topic)
		h.Unsubscribe(sub)
	}
}

// ServeWS upgrades the request to a WebSocket and streams events for the
// given topics until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, topics ...string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := h.Subscribe(topics...)
	defer h.Unsubscribe(sub)

	// Reader goroutine: only used to detect disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
