package reconstruction

import (
	"sync"

	"github.com/google/uuid"
)

// Hub fans change notifications out to per-user subscribers. Publishers
// (the upload pipeline, the reconstruction webhook) poke it after mutating
// upload records; subscribers re-read and re-project on every poke.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[uuid.UUID]map[int]chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]map[int]chan struct{}),
	}
}

// Notify wakes every subscriber for the user. Slow subscribers that already
// have a pending wakeup are not queued twice.
func (h *Hub) Notify(userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Register adds a subscriber channel for the user and returns it along with
// an unregister function the owner must call on teardown.
func (h *Hub) Register(userID uuid.UUID) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID

	ch := make(chan struct{}, 1)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan struct{})
	}
	h.subs[userID][id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[userID], id)
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
	}
}
