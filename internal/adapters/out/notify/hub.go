// Package notify fans order snapshots out to in-process subscribers. The
// HTTP status stream subscribes here; publishers are the command handlers,
// which only publish after the snapshot is persisted.
package notify

import (
	"sync"

	"ordering/internal/core/domain/model/order"
)

const subscriberBuffer = 8

// Hub is an in-memory publish/subscribe exchange keyed by order id.
// A slow subscriber never blocks a publisher: when a subscriber's buffer is
// full the oldest pending snapshot is dropped, because only the latest state
// matters to a status viewer.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan *order.Order
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string][]chan *order.Order)}
}

// Subscribe registers a listener for one order's snapshots. The returned
// cancel function releases the subscription and closes the channel; it is
// safe to call more than once.
func (h *Hub) Subscribe(orderID string) (<-chan *order.Order, func()) {
	ch := make(chan *order.Order, subscriberBuffer)

	h.mu.Lock()
	h.subs[orderID] = append(h.subs[orderID], ch)
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			subs := h.subs[orderID]
			for i, sub := range subs {
				if sub == ch {
					h.subs[orderID] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			if len(h.subs[orderID]) == 0 {
				delete(h.subs, orderID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the snapshot to every subscriber of the order. Per the
// OrderPublisher contract the snapshot is an independent copy, so subscribers
// may read it long after the publisher moved on.
func (h *Hub) Publish(o *order.Order) {
	if o == nil {
		return
	}

	// The read lock is held across the sends. Cancel removes the channel
	// under the write lock before closing it, so a channel reachable here
	// cannot be closed mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[o.ID().String()] {
		for {
			select {
			case ch <- o:
			default:
				// Buffer full: evict the oldest snapshot and retry.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}
