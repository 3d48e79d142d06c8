package generator

import (
	"sync"
	"time"

	"k8s.io/klog/v2"

	"gensetgateway/pkg/generator/runtime"
	"gensetgateway/pkg/utils/uuidutil"
)

const subscriberBuffer = 16

// Event is one entry on the monitor's notification stream.
type Event struct {
	Type      EventType                `json:"type"`
	Timestamp time.Time                `json:"timestamp"`
	Status    *runtime.GeneratorStatus `json:"status,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// Hub fans monitor events out to subscribers. Publishing never blocks, a
// subscriber that stops draining loses events instead of stalling the poll
// loop. Zero subscribers is a valid steady state.
type Hub struct {
	mux         sync.RWMutex
	subscribers map[string]chan Event
	closed      bool
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]chan Event)}
}

// Subscribe registers a listener and returns the id used to cancel it. On a
// closed hub the returned channel is already closed.
func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuidutil.UUID()
	ch := make(chan Event, subscriberBuffer)
	h.mux.Lock()
	if h.closed {
		close(ch)
	} else {
		h.subscribers[id] = ch
	}
	h.mux.Unlock()
	return id, ch
}

// Unsubscribe drops the listener and closes its channel. Unknown ids are
// ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mux.Lock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
	h.mux.Unlock()
}

func (h *Hub) Publish(event Event) {
	h.mux.RLock()
	defer h.mux.RUnlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			klog.V(5).InfoS("Dropped event, subscriber not keeping up", "subscriber", id, "type", EventTypeToString[event.Type])
		}
	}
}

// Close drops every subscriber. Publish afterwards is a no-op.
func (h *Hub) Close() {
	h.mux.Lock()
	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
	h.mux.Unlock()
}
