package ports

import (
	"context"
	"errors"
	"time"

	"ordering/internal/core/domain/model/order"
)

// ErrPosRejected is returned by PosAdapter.CreateOrder when the provider
// refused the order outright. The orchestrator treats it as non-fatal: the
// order proceeds in "POS not connected" mode and the kitchen is reached
// manually.
var ErrPosRejected = errors.New("pos provider rejected the order")

// ErrMalformedWebhook is returned by ParseWebhook for payloads that are not
// even valid JSON. Valid-but-unrecognized payloads are not an error; they
// normalize to order.StatusUnknown instead.
var ErrMalformedWebhook = errors.New("webhook payload is malformed")

// WebhookEvent is the normalized form of a provider callback. MappedStatus
// is order.StatusUnknown when the adapter cannot classify the event; the
// orchestrator ignores such events rather than applying them.
type WebhookEvent struct {
	ProviderEventType string
	ExternalID        string
	MappedStatus      order.Status
}

// OrderPatch carries the best-effort fields a provider order can be updated
// with after submission.
type OrderPatch struct {
	ReadyAt *time.Time
	Note    string
}

// PosAdapter integrates one point-of-sale provider. Implementations are
// stateless and safe for concurrent use across orders; every network call
// must respect the context deadline.
type PosAdapter interface {
	// Name returns the provider key used in webhook routes and order records.
	Name() string

	// CreateOrder submits the order to the provider's kitchen system and
	// returns the external order id. It must be idempotent with respect to
	// repeated calls for the same order id; callers retry on network
	// failure. A provider-side rejection surfaces as ErrPosRejected.
	CreateOrder(ctx context.Context, o *order.Order) (string, error)

	// UpdateOrder pushes a patch to an already-submitted order. Best
	// effort: failures are logged by the caller, never propagated to the
	// customer-visible order.
	UpdateOrder(ctx context.Context, externalOrderID string, patch OrderPatch) error

	// ParseWebhook translates a raw provider payload into the normalized
	// event shape. It never fails on unrecognized-but-valid JSON; only an
	// unparseable payload yields ErrMalformedWebhook.
	ParseWebhook(payload []byte) (WebhookEvent, error)

	// MapToOrderStatus maps a normalized event to an order status. It is a
	// total function: every event type the provider can emit is covered,
	// and anything else falls through to order.StatusUnknown.
	MapToOrderStatus(event WebhookEvent) order.Status
}
