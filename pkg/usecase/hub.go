package usecase

import (
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
)

// subscriberBuffer bounds how many undelivered events a subscriber may hold.
// Publish never blocks the worker; when a subscriber is full its oldest
// event is dropped to make room.
const subscriberBuffer = 64

// progressHub fans session progress events out to UI subscribers.
type progressHub struct {
	mu   sync.Mutex
	subs map[string]chan model.ProgressEvent
}

func newProgressHub() *progressHub {
	return &progressHub{
		subs: make(map[string]chan model.ProgressEvent),
	}
}

// Subscribe registers a new subscriber. The returned function removes the
// subscription and closes its channel.
func (h *progressHub) Subscribe() (<-chan model.ProgressEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan model.ProgressEvent, subscriberBuffer)
	h.subs[id] = ch

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if ch, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Publish delivers an event to all current subscribers without blocking.
func (h *progressHub) Publish(event model.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
			// Full: drop the oldest event, then deliver.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}
