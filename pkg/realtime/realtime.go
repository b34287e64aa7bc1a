// Package realtime is an in-process publish/subscribe hub fanning index
// events out to live web sessions.
//
// Delivery is best effort: each listener owns a buffered channel and
// events that do not fit are dropped for that listener only, so a slow
// browser never holds up an import.
package realtime

import (
	"sync"
	"time"
)

// Event types.
const (
	TypeIndexUpdated = "index_updated"
)

// IndexEvent reports a batch of hacks written to the index.
type IndexEvent struct {
	// Imported is the number of hacks stored by the batch.
	Imported int `json:"imported"`
	// Origin names where the batch came from, e.g. a dump file name or
	// "api".
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Event is the envelope delivered to listeners.
type Event struct {
	Type  string     `json:"type"`
	Index IndexEvent `json:"index"`
}

// NewIndexUpdated wraps an index update in an Event.
func NewIndexUpdated(imported int, origin string) Event {
	return Event{
		Type:  TypeIndexUpdated,
		Index: IndexEvent{Imported: imported, Origin: origin, At: time.Now().UTC()},
	}
}

// Hub dispatches events to registered listeners. It is safe for
// concurrent use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
}

// NewHub returns a hub giving each listener a buffer of bufSize events
// (32 when bufSize <= 0).
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a listener. Callers must Unregister the returned id.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes a listener and closes its channel. Unknown ids are
// ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers ev to every listener with room for it.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			// Drop for slow listener.
		}
	}
}

// Size returns the number of registered listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
