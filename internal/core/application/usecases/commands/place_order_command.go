package commands

import (
	"errors"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/pkg/guard"
)

var (
	ErrPlaceOrderCommandIsNotConstructed = errors.New(
		"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
	)
	ErrCartIsEmpty            = errors.New("cart must contain at least one line")
	ErrDeliveryAddressMissing = errors.New("delivery orders require an address")
	ErrPickupHasAddress       = errors.New("pickup orders must not carry an address")
)

// PlaceOrderCommand represents a customer checkout: a validated cart plus
// fulfillment choice, ready for pricing and persistence. The POS provider
// key may be empty, which places the order in "POS not connected" mode.
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	fulfillment     order.Fulfillment
	customer        order.Customer
	deliveryAddress *order.Address
	items           []order.CartLine
	tip             services.TipSpec
	discount        services.DiscountSpec
	posProvider     string

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand validates the checkout input. A delivery order must
// carry an address; a pickup order must not.
func NewPlaceOrderCommand(
	fulfillment order.Fulfillment,
	customer order.Customer,
	deliveryAddress *order.Address,
	items []order.CartLine,
	tip services.TipSpec,
	discount services.DiscountSpec,
	posProvider string,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setFulfillment(fulfillment, deliveryAddress),
		cmd.setCustomer(customer),
		cmd.setItems(items),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	cmd.tip = tip
	cmd.discount = discount
	cmd.posProvider = posProvider
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

// Fulfillment returns the chosen fulfillment track.
func (c PlaceOrderCommand) Fulfillment() order.Fulfillment {
	return c.fulfillment
}

// Customer returns the checkout contact.
func (c PlaceOrderCommand) Customer() order.Customer {
	return c.customer
}

// DeliveryAddress returns the dropoff address, nil for pickup.
func (c PlaceOrderCommand) DeliveryAddress() *order.Address {
	return c.deliveryAddress
}

// Items returns the cart lines.
func (c PlaceOrderCommand) Items() []order.CartLine {
	return c.items
}

// Tip returns the tip choice.
func (c PlaceOrderCommand) Tip() services.TipSpec {
	return c.tip
}

// Discount returns the discount applied at checkout.
func (c PlaceOrderCommand) Discount() services.DiscountSpec {
	return c.discount
}

// PosProvider returns the POS provider key, empty when no POS is connected.
func (c PlaceOrderCommand) PosProvider() string {
	return c.posProvider
}

func (c *PlaceOrderCommand) setFulfillment(fulfillment order.Fulfillment, deliveryAddress *order.Address) error {
	if err := fulfillment.Validate(); err != nil {
		return err
	}
	if fulfillment == order.FulfillmentDelivery && deliveryAddress == nil {
		return ErrDeliveryAddressMissing
	}
	if fulfillment == order.FulfillmentPickup && deliveryAddress != nil {
		return ErrPickupHasAddress
	}
	if deliveryAddress != nil {
		if err := deliveryAddress.Validate(); err != nil {
			return err
		}
	}

	c.fulfillment = fulfillment
	c.deliveryAddress = deliveryAddress
	return nil
}

func (c *PlaceOrderCommand) setCustomer(customer order.Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}

	c.customer = customer
	return nil
}

func (c *PlaceOrderCommand) setItems(items []order.CartLine) error {
	if len(items) == 0 {
		return ErrCartIsEmpty
	}
	for _, line := range items {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	c.items = items
	return nil
}
