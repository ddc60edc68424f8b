// Package realtime fans facade events out to any number of in-process
// subscribers, such as WebSocket sessions.
//
// Delivery is best effort: every subscriber has its own buffered channel
// and an event that does not fit is dropped for that subscriber only, so
// a slow client never blocks the facade. There is no persistence or
// replay; a client that connects late asks the facade for a snapshot.
package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
)

// Event types.
const (
	TypeResultsChanged  = "results_changed"
	TypeRecentChanged   = "recent_changed"
	TypeDropdownChanged = "dropdown_changed"
	TypeNavigate        = "navigate"
)

var logger = log.ForService("realtime")

// Event is the envelope delivered to subscribers. Only the field matching
// Type is meaningful.
type Event struct {
	Type    string      `json:"type"`
	Results []core.Item `json:"results"`
	Recent  []string    `json:"recent"`
	Open    bool        `json:"open"`
	Target  string      `json:"target,omitempty"`
	At      time.Time   `json:"at"`
}

// Hub is an in-memory fan-out dispatcher. It is safe for concurrent use
// and satisfies the facade's Listener interface.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
	dropped   atomic.Uint64
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a new listener and returns (listenerID, receiveOnlyChannel).
// Callers must later Unregister(id) to release resources.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener with the given id and closes its channel.
// It is safe to call multiple times; unknown ids are ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers ev to all registered listeners (best effort).
func (h *Hub) Broadcast(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
			logger.Debugf("dropped %s event for slow listener %d", ev.Type, id)
		}
	}
}

// Size returns the current number of active listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Dropped returns how many deliveries were dropped for slow listeners.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close unregisters every listener.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.listeners {
		delete(h.listeners, id)
		close(ch)
	}
}

func (h *Hub) ResultsChanged(items []core.Item) {
	if items == nil {
		items = []core.Item{}
	}
	h.Broadcast(Event{Type: TypeResultsChanged, Results: items})
}

func (h *Hub) RecentSearchesChanged(queries []string) {
	if queries == nil {
		queries = []string{}
	}
	h.Broadcast(Event{Type: TypeRecentChanged, Recent: queries})
}

func (h *Hub) DropdownOpenChanged(open bool) {
	h.Broadcast(Event{Type: TypeDropdownChanged, Open: open})
}

func (h *Hub) Navigate(target string) {
	h.Broadcast(Event{Type: TypeNavigate, Target: target})
}
