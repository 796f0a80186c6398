package queries

import (
	"context"

	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

// GetActiveOrdersQueryHandler lists non-terminal orders, newest first.
type GetActiveOrdersQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetActiveOrdersQueryHandler creates a handler for the active-orders view.
func NewGetActiveOrdersQueryHandler(repo ports.OrderRepository) (GetActiveOrdersQueryHandler, error) {
	if repo == nil {
		return GetActiveOrdersQueryHandler{}, errs.NewValueIsRequiredError("repo")
	}
	return GetActiveOrdersQueryHandler{repo: repo}, nil
}

// Handle returns the active order views.
func (h GetActiveOrdersQueryHandler) Handle(ctx context.Context, query GetActiveOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, NewOrderView(o))
	}
	return views, nil
}
