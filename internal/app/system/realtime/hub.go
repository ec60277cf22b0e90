// Package realtime fans storage changes out to live clients.
//
// A Hub is an in-process broadcaster. Changes reach it from two places:
// stores publish after their own successful writes, and a Watcher relays
// MongoDB change streams so writes made by other instances are seen too.
package realtime

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Change operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Sessions is the collection of server-side login sessions. A Change on it
// carries the session id; live connections re-check their own session.
const Sessions = "sessions"

// Change identifies a single write. Subscribers re-read whatever they
// need; a Change never carries the document itself.
type Change struct {
	Collection string             `json:"collection"`
	Op         string             `json:"op"`
	ID         primitive.ObjectID `json:"id"`
}

// DefaultBuffer is the subscriber channel size used when Subscribe is
// given a non-positive size.
const DefaultBuffer = 64

// Hub broadcasts Changes to subscribers. Publish never blocks: a
// subscriber whose buffer is full is dropped and its channel closed.
// A nil *Hub accepts and discards everything.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Change]struct{}
	closed bool
	log    *zap.Logger
}

// NewHub returns an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs: make(map[chan Change]struct{}),
		log:  logger,
	}
}

// Subscribe registers a new subscriber. The returned channel is closed
// when the subscriber is dropped, unsubscribed, or the Hub is closed.
func (h *Hub) Subscribe(buffer int) <-chan Change {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Change, buffer)
	if h == nil {
		close(ch)
		return ch
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes sub and closes it. Unknown or already-dropped
// channels are ignored.
func (h *Hub) Unsubscribe(sub <-chan Change) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		if ch == sub {
			delete(h.subs, ch)
			close(ch)
			return
		}
	}
}

// Publish delivers c to every subscriber.
func (h *Hub) Publish(c Change) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- c:
		default:
			delete(h.subs, ch)
			close(ch)
			h.log.Warn("dropped slow realtime subscriber",
				zap.String("collection", c.Collection))
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops every subscriber. Later Subscribe calls get a closed channel.
func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.closed = true
}
