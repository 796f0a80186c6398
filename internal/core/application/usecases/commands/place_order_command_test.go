package commands_test

import (
	"testing"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaceOrderCommand(t *testing.T) {
	customer := order.Customer{Name: "Amina", Phone: "+16305550100"}
	address := &order.Address{Street: "12 Elm St", DistanceTenthsKm: 34}

	t.Run("valid delivery checkout", func(t *testing.T) {
		cmd, err := commands.NewPlaceOrderCommand(
			order.FulfillmentDelivery, customer, address, testItems(),
			services.TipSpec{Percent: 15}, services.DiscountSpec{}, "square",
		)

		require.NoError(t, err)
		assert.NoError(t, cmd.Validate())
		assert.Equal(t, order.FulfillmentDelivery, cmd.Fulfillment())
		assert.Equal(t, "square", cmd.PosProvider())
		assert.Len(t, cmd.Items(), 2)
	})

	t.Run("delivery without address fails", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(
			order.FulfillmentDelivery, customer, nil, testItems(),
			services.TipSpec{}, services.DiscountSpec{}, "",
		)

		assert.ErrorIs(t, err, commands.ErrDeliveryAddressMissing)
	})

	t.Run("pickup with address fails", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(
			order.FulfillmentPickup, customer, address, testItems(),
			services.TipSpec{}, services.DiscountSpec{}, "",
		)

		assert.ErrorIs(t, err, commands.ErrPickupHasAddress)
	})

	t.Run("empty cart fails", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(
			order.FulfillmentPickup, customer, nil, nil,
			services.TipSpec{}, services.DiscountSpec{}, "",
		)

		assert.ErrorIs(t, err, commands.ErrCartIsEmpty)
	})

	t.Run("missing customer phone fails", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(
			order.FulfillmentPickup, order.Customer{Name: "Amina"}, nil, testItems(),
			services.TipSpec{}, services.DiscountSpec{}, "",
		)

		assert.Error(t, err)
	})

	t.Run("zero value command does not validate", func(t *testing.T) {
		var cmd commands.PlaceOrderCommand

		assert.ErrorIs(t, cmd.Validate(), commands.ErrPlaceOrderCommandIsNotConstructed)
	})
}
