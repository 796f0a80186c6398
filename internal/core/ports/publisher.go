package ports

import "ordering/internal/core/domain/model/order"

// OrderPublisher fans an order snapshot out to subscribed viewers.
// Delivery is at-least-once; consumers treat every snapshot as the full
// current state. Publishers must always hand over the latest persisted
// snapshot, never a stale in-memory copy, so a subscriber can never observe
// an older status after a newer one. The published order must be an
// independent copy: subscribers read it concurrently with later mutations
// of the live aggregate.
type OrderPublisher interface {
	Publish(o *order.Order)
}
