package order

import (
	"fmt"

	"ordering/internal/pkg/errs"
)

// Fulfillment selects the track an order follows through the state machine.
type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

// Validate checks that f is a known fulfillment kind.
func (f Fulfillment) Validate() error {
	if f != FulfillmentPickup && f != FulfillmentDelivery {
		return errs.NewValueIsInvalidErrorWithCause("fulfillment is invalid",
			fmt.Errorf("%q is not a known fulfillment", string(f)))
	}
	return nil
}

// Modifier is an option applied to a cart line, priced in integer cents.
type Modifier struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// CartLine is an immutable snapshot of one cart entry taken when the order
// is created. Money is always integer cents; floats never enter the model.
type CartLine struct {
	SKU            string     `json:"sku"`
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Quantity       int        `json:"quantity"`
	Modifiers      []Modifier `json:"modifiers,omitempty"`
	Note           string     `json:"note,omitempty"`
}

// Validate rejects non-positive quantities and negative prices at the
// boundary, before any pricing or persistence happens.
func (l CartLine) Validate() error {
	if l.SKU == "" {
		return errs.NewValueIsRequiredError("sku")
	}
	if l.Quantity < 1 {
		return errs.NewValueIsOutOfRangeError("quantity", l.Quantity, 1, "unbounded")
	}
	if l.UnitPriceCents < 0 {
		return errs.NewValueIsInvalidErrorWithCause("unit price is invalid",
			fmt.Errorf("%d cents is negative", l.UnitPriceCents))
	}
	for _, m := range l.Modifiers {
		if m.PriceCents < 0 {
			return errs.NewValueIsInvalidErrorWithCause("modifier price is invalid",
				fmt.Errorf("modifier %s: %d cents is negative", m.ID, m.PriceCents))
		}
	}
	return nil
}

// TotalCents returns (unit price + sum of modifier prices) x quantity.
func (l CartLine) TotalCents() int64 {
	unit := l.UnitPriceCents
	for _, m := range l.Modifiers {
		unit += m.PriceCents
	}
	return unit * int64(l.Quantity)
}

// Customer identifies who placed the order.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Validate requires a name and a phone number; providers need the phone to
// reach the customer.
func (c Customer) Validate() error {
	if c.Name == "" {
		return errs.NewValueIsRequiredError("customer name")
	}
	if c.Phone == "" {
		return errs.NewValueIsRequiredError("customer phone")
	}
	return nil
}

// Address is the delivery destination, present only on delivery orders.
// DistanceTenthsKm is the courier distance from the restaurant in tenths of
// a kilometer, resolved upstream; the pricing fee schedule keys off it.
type Address struct {
	Street           string `json:"street"`
	City             string `json:"city,omitempty"`
	Zip              string `json:"zip,omitempty"`
	Instructions     string `json:"instructions,omitempty"`
	DistanceTenthsKm int    `json:"distance_tenths_km,omitempty"`
}

// Validate requires at least a street line.
func (a Address) Validate() error {
	if a.Street == "" {
		return errs.NewValueIsRequiredError("delivery street")
	}
	if a.DistanceTenthsKm < 0 {
		return errs.NewValueIsOutOfRangeError("distance", a.DistanceTenthsKm, 0, "unbounded")
	}
	return nil
}

// Totals is the immutable pricing breakdown computed once at creation.
// All amounts are integer cents.
type Totals struct {
	SubtotalCents    int64 `json:"subtotal_cents"`
	TaxCents         int64 `json:"tax_cents"`
	ServiceFeeCents  int64 `json:"service_fee_cents"`
	DeliveryFeeCents int64 `json:"delivery_fee_cents"`
	DiscountCents    int64 `json:"discount_cents"`
	TipCents         int64 `json:"tip_cents"`
	GrandTotalCents  int64 `json:"grand_total_cents"`
}

// Validate checks the structural invariant
// grand = subtotal + tax + serviceFee + deliveryFee + tip - discount.
func (t Totals) Validate() error {
	sum := t.SubtotalCents + t.TaxCents + t.ServiceFeeCents + t.DeliveryFeeCents + t.TipCents - t.DiscountCents
	if sum != t.GrandTotalCents {
		return errs.NewValueIsInvalidErrorWithCause("totals are inconsistent",
			fmt.Errorf("grand total %d does not equal component sum %d", t.GrandTotalCents, sum))
	}
	if t.SubtotalCents < 0 || t.TaxCents < 0 || t.ServiceFeeCents < 0 ||
		t.DeliveryFeeCents < 0 || t.DiscountCents < 0 || t.TipCents < 0 {
		return errs.NewValueIsInvalidError("totals contain a negative component")
	}
	return nil
}
