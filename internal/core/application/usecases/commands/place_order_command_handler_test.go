package commands_test

import (
	"testing"
	"time"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPlaceOrderHandler(t *testing.T, repo *fakeOrderRepository, publisher *recordingPublisher, posAdapter ports.PosAdapter) commands.PlaceOrderCommandHandler {
	t.Helper()
	calculator, err := services.NewTotalsCalculator(88750, 10000, services.DefaultDeliveryFeePolicy())
	require.NoError(t, err)

	transitioner := newTestTransitioner(t, repo, publisher, &MockCourierAdapter{name: "doordash"})
	handler, err := commands.NewPlaceOrderCommandHandler(
		repo, calculator, stubPosRegistry{adapter: posAdapter}, transitioner, publisher, nil,
	)
	require.NoError(t, err)
	return handler
}

func TestPlaceOrderCommandHandler(t *testing.T) {
	customer := order.Customer{Name: "Amina", Phone: "+16305550100"}

	t.Run("creates and prices the order", func(t *testing.T) {
		repo := newFakeOrderRepository()
		publisher := &recordingPublisher{}
		handler := newPlaceOrderHandler(t, repo, publisher, &MockPosAdapter{name: "square"})

		items := []order.CartLine{{SKU: "lamb-kebab", Name: "Lamb Kebab", UnitPriceCents: 1000, Quantity: 2}}
		cmd, err := commands.NewPlaceOrderCommand(
			order.FulfillmentPickup, customer, nil, items,
			services.TipSpec{}, services.DiscountSpec{}, "",
		)
		require.NoError(t, err)

		o, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.StatusCreated, o.Status())
		assert.Equal(t, int64(2000), o.Totals().SubtotalCents)
		assert.Equal(t, int64(178), o.Totals().TaxCents)
		assert.Equal(t, int64(20), o.Totals().ServiceFeeCents)
		assert.Equal(t, int64(2198), o.Totals().GrandTotalCents)

		stored, err := repo.Get(t.Context(), o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.StatusCreated, stored.Status())
		assert.Equal(t, 1, publisher.count())
	})

	t.Run("delivery order gets the distance-tiered fee", func(t *testing.T) {
		repo := newFakeOrderRepository()
		publisher := &recordingPublisher{}
		handler := newPlaceOrderHandler(t, repo, publisher, &MockPosAdapter{name: "square"})

		cmd, err := commands.NewPlaceOrderCommand(
			order.FulfillmentDelivery, customer,
			&order.Address{Street: "12 Elm St", DistanceTenthsKm: 34},
			testItems(), services.TipSpec{}, services.DiscountSpec{}, "",
		)
		require.NoError(t, err)

		o, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, int64(499), o.Totals().DeliveryFeeCents)
	})

	t.Run("records the pos reference once the provider accepts", func(t *testing.T) {
		repo := newFakeOrderRepository()
		publisher := &recordingPublisher{}
		posAdapter := &MockPosAdapter{name: "square"}
		posAdapter.On("CreateOrder", mock.Anything, mock.Anything).Return("SQ-77", nil).Once()
		handler := newPlaceOrderHandler(t, repo, publisher, posAdapter)

		cmd, err := commands.NewPlaceOrderCommand(
			order.FulfillmentPickup, customer, nil, testItems(),
			services.TipSpec{}, services.DiscountSpec{}, "square",
		)
		require.NoError(t, err)

		o, err := handler.Handle(t.Context(), cmd)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			stored, getErr := repo.Get(t.Context(), o.ID())
			return getErr == nil && stored.PosOrderID() == "SQ-77"
		}, 2*time.Second, 10*time.Millisecond)
		posAdapter.AssertExpectations(t)
	})

	t.Run("pos rejection does not fail placement", func(t *testing.T) {
		repo := newFakeOrderRepository()
		publisher := &recordingPublisher{}
		posAdapter := &MockPosAdapter{name: "square", createDone: make(chan struct{}, 1)}
		posAdapter.On("CreateOrder", mock.Anything, mock.Anything).Return("", ports.ErrPosRejected).Once()
		handler := newPlaceOrderHandler(t, repo, publisher, posAdapter)

		cmd, err := commands.NewPlaceOrderCommand(
			order.FulfillmentPickup, customer, nil, testItems(),
			services.TipSpec{}, services.DiscountSpec{}, "square",
		)
		require.NoError(t, err)

		o, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		select {
		case <-posAdapter.createDone:
		case <-time.After(2 * time.Second):
			t.Fatal("pos submission was never attempted")
		}

		stored, err := repo.Get(t.Context(), o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.StatusCreated, stored.Status())
		assert.Empty(t, stored.PosOrderID())
	})

	t.Run("unknown pos provider still places the order", func(t *testing.T) {
		repo := newFakeOrderRepository()
		publisher := &recordingPublisher{}
		handler := newPlaceOrderHandler(t, repo, publisher, &MockPosAdapter{name: "square"})

		cmd, err := commands.NewPlaceOrderCommand(
			order.FulfillmentPickup, customer, nil, testItems(),
			services.TipSpec{}, services.DiscountSpec{}, "aloha",
		)
		require.NoError(t, err)

		o, err := handler.Handle(t.Context(), cmd)

		require.NoError(t, err)
		stored, err := repo.Get(t.Context(), o.ID())
		require.NoError(t, err)
		assert.Empty(t, stored.PosProvider())
	})

	t.Run("unconstructed command is rejected", func(t *testing.T) {
		repo := newFakeOrderRepository()
		handler := newPlaceOrderHandler(t, repo, &recordingPublisher{}, &MockPosAdapter{name: "square"})

		_, err := handler.Handle(t.Context(), commands.PlaceOrderCommand{})

		assert.ErrorIs(t, err, commands.ErrPlaceOrderCommandIsNotConstructed)
	})
}
