// Package queries contains the read-side operations: customer-facing order
// views assembled from persisted aggregates. Queries never mutate state.
package queries

import (
	"time"

	"ordering/internal/core/domain/model/order"
)

// OrderView is the customer-facing projection of an order. It is what the
// HTTP API returns and what the status stream pushes on every update.
type OrderView struct {
	ID              string               `json:"id"`
	Fulfillment     string               `json:"fulfillment"`
	Status          string               `json:"status"`
	Customer        order.Customer       `json:"customer"`
	DeliveryAddress *order.Address       `json:"delivery_address,omitempty"`
	Items           []order.CartLine     `json:"items"`
	Totals          order.Totals         `json:"totals"`
	PosProvider     string               `json:"pos_provider,omitempty"`
	PosOrderID      string               `json:"pos_order_id,omitempty"`
	CourierProvider string               `json:"courier_provider,omitempty"`
	TrackingURL     string               `json:"tracking_url,omitempty"`
	PlacedAt        time.Time            `json:"placed_at"`
	ETA             time.Time            `json:"eta"`
	Timestamps      map[string]time.Time `json:"timestamps"`
}

// NewOrderView projects an aggregate into its API shape.
func NewOrderView(o *order.Order) OrderView {
	timestamps := make(map[string]time.Time, len(o.Timestamps()))
	for status, at := range o.Timestamps() {
		timestamps[string(status)] = at
	}

	return OrderView{
		ID:              o.ID().String(),
		Fulfillment:     string(o.Fulfillment()),
		Status:          string(o.Status()),
		Customer:        o.Customer(),
		DeliveryAddress: o.DeliveryAddress(),
		Items:           o.Items(),
		Totals:          o.Totals(),
		PosProvider:     o.PosProvider(),
		PosOrderID:      o.PosOrderID(),
		CourierProvider: o.CourierProvider(),
		TrackingURL:     o.TrackingURL(),
		PlacedAt:        o.PlacedAt(),
		ETA:             o.ETA(),
		Timestamps:      timestamps,
	}
}
