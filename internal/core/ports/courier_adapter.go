package ports

import (
	"context"

	"ordering/internal/core/domain/model/order"
)

// DeliveryQuote is a pre-checkout estimate from a dispatch provider.
// Quoting is optional; order placement never depends on it.
type DeliveryQuote struct {
	FeeCents   int64
	ETAMinutes int
}

// CourierJob identifies an accepted dispatch request.
type CourierJob struct {
	JobID       string
	TrackingURL string
}

// RestaurantInfo is the pickup side of a dispatch request.
type RestaurantInfo struct {
	Name    string
	Phone   string
	Address string
}

// CourierAdapter integrates one third-party delivery-dispatch provider.
// Same contracts as PosAdapter: stateless, concurrency-safe, context-aware.
type CourierAdapter interface {
	// Name returns the provider key used in webhook routes and order records.
	Name() string

	// QuoteDelivery estimates fee and pickup ETA between two addresses.
	QuoteDelivery(ctx context.Context, pickupAddress, dropoffAddress string) (DeliveryQuote, error)

	// RequestDelivery dispatches a courier for a delivery order that
	// reached ready. The orchestrator guarantees at most one call per
	// order (the recorded job id is the guard); adapters additionally use
	// the order id as an idempotency key so a retried call cannot create a
	// second job on the provider side.
	RequestDelivery(ctx context.Context, o *order.Order, restaurant RestaurantInfo) (CourierJob, error)

	// UpdateOrder pushes a patch (e.g. a revised ready time) to an active
	// job. Best effort, like PosAdapter.UpdateOrder.
	UpdateOrder(ctx context.Context, jobID string, patch OrderPatch) error

	// ParseWebhook translates a raw provider payload into the normalized
	// event shape; ErrMalformedWebhook only for unparseable payloads.
	ParseWebhook(payload []byte) (WebhookEvent, error)

	// MapToOrderStatus maps a normalized event to an order status, total
	// over the provider's event vocabulary with order.StatusUnknown as the
	// default.
	MapToOrderStatus(event WebhookEvent) order.Status
}
