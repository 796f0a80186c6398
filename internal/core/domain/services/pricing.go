package services

import (
	"fmt"
	"sort"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"
)

// TipSpec describes the requested tip. A fixed amount always wins over a
// percentage when both are present.
type TipSpec struct {
	Percent    int
	FixedCents int64
	HasFixed   bool
}

// DiscountSpec describes a flat discount applied to the grand total.
type DiscountSpec struct {
	AmountCents int64
}

// FeeTier is one step of the delivery fee schedule: orders within
// UpToTenthsKm of the restaurant pay FeeCents.
type FeeTier struct {
	UpToTenthsKm int
	FeeCents     int64
}

// DeliveryFeePolicy is a lookup table, not hard-coded branching, so tenants
// can supply new fee schedules without touching the engine. Tiers are
// evaluated in ascending distance order; a subtotal at or above
// FreeAboveSubtotalCents (when positive) waives the fee entirely. Distances
// beyond the last tier are out of range and carry no fee.
type DeliveryFeePolicy struct {
	Tiers                  []FeeTier
	FreeAboveSubtotalCents int64
}

// DefaultDeliveryFeePolicy mirrors the zone fees the business runs today.
func DefaultDeliveryFeePolicy() DeliveryFeePolicy {
	return DeliveryFeePolicy{
		Tiers: []FeeTier{
			{UpToTenthsKm: 20, FeeCents: 299},
			{UpToTenthsKm: 50, FeeCents: 499},
			{UpToTenthsKm: 100, FeeCents: 799},
		},
	}
}

// feeFor resolves the fee for a distance and subtotal.
func (p DeliveryFeePolicy) feeFor(distanceTenthsKm int, subtotalCents int64) int64 {
	if p.FreeAboveSubtotalCents > 0 && subtotalCents >= p.FreeAboveSubtotalCents {
		return 0
	}

	tiers := make([]FeeTier, len(p.Tiers))
	copy(tiers, p.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].UpToTenthsKm < tiers[j].UpToTenthsKm })

	for _, tier := range tiers {
		if distanceTenthsKm <= tier.UpToTenthsKm {
			return tier.FeeCents
		}
	}
	return 0
}

// TotalsCalculator is the pricing engine. It is pure and deterministic:
// same inputs always produce a byte-identical Totals. Rates are integer
// parts-per-million (88750 = 8.875%) so fractional percentages stay exact
// and no floating point ever enters the computation; rounding is half-up
// on the cent boundary, uniformly.
type TotalsCalculator struct {
	taxRatePPM        int64
	serviceFeeRatePPM int64
	feePolicy         DeliveryFeePolicy
}

// NewTotalsCalculator creates a calculator for one tenant's rates.
// Rates are configuration inputs, never constants baked into the engine.
func NewTotalsCalculator(taxRatePPM, serviceFeeRatePPM int64, feePolicy DeliveryFeePolicy) (TotalsCalculator, error) {
	if taxRatePPM < 0 {
		return TotalsCalculator{}, errs.NewValueIsOutOfRangeError("tax rate", taxRatePPM, 0, "unbounded")
	}
	if serviceFeeRatePPM < 0 {
		return TotalsCalculator{}, errs.NewValueIsOutOfRangeError("service fee rate", serviceFeeRatePPM, 0, "unbounded")
	}
	return TotalsCalculator{
		taxRatePPM:        taxRatePPM,
		serviceFeeRatePPM: serviceFeeRatePPM,
		feePolicy:         feePolicy,
	}, nil
}

// Calculate produces the totals breakdown for a cart.
//
// The engine assumes validated, non-negative inputs (the boundary's
// responsibility) but still rejects negative quantities and prices rather
// than produce a corrupt breakdown. A zero-item cart yields all-zero
// Totals, not an error. The delivery fee applies only on the delivery
// track; distanceTenthsKm is ignored for pickup.
func (c TotalsCalculator) Calculate(
	items []order.CartLine,
	fulfillment order.Fulfillment,
	distanceTenthsKm int,
	tip TipSpec,
	discount DiscountSpec,
) (order.Totals, error) {
	var subtotal int64
	for _, line := range items {
		if err := line.Validate(); err != nil {
			return order.Totals{}, err
		}
		subtotal += line.TotalCents()
	}

	tax := roundHalfUpPPM(subtotal, c.taxRatePPM)
	serviceFee := roundHalfUpPPM(subtotal, c.serviceFeeRatePPM)

	var deliveryFee int64
	if fulfillment == order.FulfillmentDelivery {
		deliveryFee = c.feePolicy.feeFor(distanceTenthsKm, subtotal)
	}

	tipCents, err := resolveTip(subtotal, tip)
	if err != nil {
		return order.Totals{}, err
	}

	if discount.AmountCents < 0 {
		return order.Totals{}, errs.NewValueIsOutOfRangeError("discount", discount.AmountCents, 0, "unbounded")
	}

	totals := order.Totals{
		SubtotalCents:    subtotal,
		TaxCents:         tax,
		ServiceFeeCents:  serviceFee,
		DeliveryFeeCents: deliveryFee,
		DiscountCents:    discount.AmountCents,
		TipCents:         tipCents,
	}
	totals.GrandTotalCents = totals.SubtotalCents + totals.TaxCents + totals.ServiceFeeCents +
		totals.DeliveryFeeCents + totals.TipCents - totals.DiscountCents

	return totals, nil
}

// resolveTip computes the tip in cents. A fixed override wins over a
// percentage when both are present.
func resolveTip(subtotalCents int64, tip TipSpec) (int64, error) {
	if tip.HasFixed {
		if tip.FixedCents < 0 {
			return 0, errs.NewValueIsOutOfRangeError("tip", tip.FixedCents, 0, "unbounded")
		}
		return tip.FixedCents, nil
	}
	if tip.Percent < 0 {
		return 0, errs.NewValueIsOutOfRangeError("tip percent", tip.Percent, 0, "unbounded")
	}
	return roundHalfUpPPM(subtotalCents, int64(tip.Percent)*10000), nil
}

// roundHalfUpPPM applies a parts-per-million rate to an amount of cents,
// rounding half-up on the cent boundary using integer arithmetic only.
func roundHalfUpPPM(amountCents, ratePPM int64) int64 {
	return (amountCents*ratePPM + 500000) / 1000000
}

// FormatCents renders integer cents as a dollar string for logs and
// receipts.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
