package ports

import (
	"context"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// It is a key-value store with read-your-writes consistency per order;
// no transaction spans multiple orders. Callers serialize writes to one
// order through the per-order lock, never through the store.
type OrderRepository interface {
	// Add persists a new order aggregate. The order must be valid and not
	// already exist.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its identifier. Returns an
	// errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByPosOrderID resolves the order a POS webhook refers to.
	GetByPosOrderID(ctx context.Context, provider, externalOrderID string) (*order.Order, error)

	// GetByCourierJobID resolves the order a courier webhook refers to.
	GetByCourierJobID(ctx context.Context, provider, jobID string) (*order.Order, error)

	// GetAwaitingDispatch retrieves delivery orders in ready status with no
	// courier job recorded yet. Used by the dispatch retry job.
	GetAwaitingDispatch(ctx context.Context) ([]*order.Order, error)

	// GetActive retrieves all orders that have not reached a terminal
	// status, newest first.
	GetActive(ctx context.Context) ([]*order.Order, error)
}
