package queries

import (
	"context"

	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

// GetOrderQueryHandler serves single-order lookups. It reads through the
// repository rather than raw SQL because the aggregate's value objects live
// in jsonb documents the repository already knows how to decode.
type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetOrderQueryHandler creates a handler for single-order lookups.
func NewGetOrderQueryHandler(repo ports.OrderRepository) (GetOrderQueryHandler, error) {
	if repo == nil {
		return GetOrderQueryHandler{}, errs.NewValueIsRequiredError("repo")
	}
	return GetOrderQueryHandler{repo: repo}, nil
}

// Handle returns the order view or an ObjectNotFoundError.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	o, err := h.repo.Get(ctx, query.OrderID())
	if err != nil {
		return OrderView{}, err
	}

	return NewOrderView(o), nil
}
