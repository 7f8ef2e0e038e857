package notifier

import (
	"sync"

	"buslane/pkg/logger"
)

// Subscription is one live listener. Events arrives buffered; a subscriber
// that stops draining loses events rather than blocking the publisher.
type Subscription struct {
	Events chan Event

	hub *Hub
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub is the in-process broadcast point for live events. Delivery is
// best-effort: a slow subscriber's events are dropped, never queued
// unboundedly.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	closed      bool

	bufferSize int
	log        *logger.Logger
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscription]struct{}),
		bufferSize:  64,
		log:         logger.GetDefault(),
	}
}

// Subscribe attaches a new listener.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		Events: make(chan Event, h.bufferSize),
		hub:    h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.Events)
		return sub
	}
	h.subscribers[sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.Events)
	}
}

// Publish broadcasts the event to all live subscribers.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		select {
		case sub.Events <- event:
		default:
			h.log.Warn("dropping event for slow subscriber",
				"event_type", event.Type)
		}
	}
}

// SubscriberCount reports how many listeners are attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Shutdown detaches and closes every subscription.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		close(sub.Events)
	}
}
