package queries_test

import (
	"context"
	"testing"
	"time"

	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByPosOrderID(ctx context.Context, provider, externalOrderID string) (*order.Order, error) {
	args := m.Called(ctx, provider, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByCourierJobID(ctx context.Context, provider, jobID string) (*order.Order, error) {
	args := m.Called(ctx, provider, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAwaitingDispatch(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetActive(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func deliveryOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		kernel.NewUUID(),
		order.FulfillmentDelivery,
		order.Customer{Name: "Amina", Phone: "+16305550100"},
		&order.Address{Street: "12 Elm St", DistanceTenthsKm: 34},
		[]order.CartLine{{SKU: "naan", Name: "Naan", UnitPriceCents: 300, Quantity: 2}},
		order.Totals{SubtotalCents: 600, TaxCents: 53, DeliveryFeeCents: 499, GrandTotalCents: 1152},
		time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return o
}

func TestGetOrderQueryHandler(t *testing.T) {
	t.Run("returns the order view", func(t *testing.T) {
		o := deliveryOrder(t)
		repo := new(MockOrderRepository)
		repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()

		handler, err := queries.NewGetOrderQueryHandler(repo)
		require.NoError(t, err)
		query, err := queries.NewGetOrderQuery(o.ID())
		require.NoError(t, err)

		view, err := handler.Handle(t.Context(), query)

		require.NoError(t, err)
		assert.Equal(t, o.ID().String(), view.ID)
		assert.Equal(t, "delivery", view.Fulfillment)
		assert.Equal(t, "created", view.Status)
		assert.Equal(t, int64(1152), view.Totals.GrandTotalCents)
		require.NotNil(t, view.DeliveryAddress)
		assert.Contains(t, view.Timestamps, "created")
		repo.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		id := kernel.NewUUID()
		repo := new(MockOrderRepository)
		repo.On("Get", mock.Anything, id).
			Return(nil, errs.NewObjectNotFoundError("order", id.String())).Once()

		handler, err := queries.NewGetOrderQueryHandler(repo)
		require.NoError(t, err)
		query, err := queries.NewGetOrderQuery(id)
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), query)

		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("zero value query is rejected", func(t *testing.T) {
		handler, err := queries.NewGetOrderQueryHandler(new(MockOrderRepository))
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), queries.GetOrderQuery{})

		assert.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)
	})
}

func TestGetActiveOrdersQueryHandler(t *testing.T) {
	t.Run("projects every active order", func(t *testing.T) {
		first := deliveryOrder(t)
		second := deliveryOrder(t)
		repo := new(MockOrderRepository)
		repo.On("GetActive", mock.Anything).Return([]*order.Order{second, first}, nil).Once()

		handler, err := queries.NewGetActiveOrdersQueryHandler(repo)
		require.NoError(t, err)

		views, err := handler.Handle(t.Context(), queries.NewGetActiveOrdersQuery())

		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, second.ID().String(), views[0].ID)
		assert.Equal(t, first.ID().String(), views[1].ID)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("GetActive", mock.Anything).Return([]*order.Order{}, nil).Once()

		handler, err := queries.NewGetActiveOrdersQueryHandler(repo)
		require.NoError(t, err)

		views, err := handler.Handle(t.Context(), queries.NewGetActiveOrdersQuery())

		require.NoError(t, err)
		assert.Empty(t, views)
	})
}
