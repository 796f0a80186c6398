// Package orderrepo persists order aggregates with GORM. The aggregate's
// value objects (cart, totals, timestamps) travel as jsonb documents; only
// the columns the queries filter on are first-class.
package orderrepo

import (
	"encoding/json"
	"fmt"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the database shape of an order aggregate. Provider reference
// pairs are composite-indexed because webhooks resolve orders through them
// on every callback.
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Fulfillment     string          `gorm:"type:varchar(16)"`
	Status          string          `gorm:"type:varchar(32);index"`
	Customer        json.RawMessage `gorm:"type:jsonb"`
	DeliveryAddress json.RawMessage `gorm:"type:jsonb"`
	Items           json.RawMessage `gorm:"type:jsonb"`
	Totals          json.RawMessage `gorm:"type:jsonb"`
	Timestamps      json.RawMessage `gorm:"type:jsonb"`
	PosProvider     string          `gorm:"type:varchar(32);index:idx_orders_pos_ref"`
	PosOrderID      string          `gorm:"index:idx_orders_pos_ref"`
	CourierProvider string          `gorm:"type:varchar(32);index:idx_orders_courier_ref"`
	CourierJobID    string          `gorm:"index:idx_orders_courier_ref"`
	TrackingURL     string
	PlacedAt        time.Time `gorm:"index"`
	ETA             time.Time
}

// TableName overrides GORM's default naming convention.
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) (OrderDTO, error) {
	customer, err := json.Marshal(o.Customer())
	if err != nil {
		return OrderDTO{}, fmt.Errorf("marshal customer: %w", err)
	}
	items, err := json.Marshal(o.Items())
	if err != nil {
		return OrderDTO{}, fmt.Errorf("marshal items: %w", err)
	}
	totals, err := json.Marshal(o.Totals())
	if err != nil {
		return OrderDTO{}, fmt.Errorf("marshal totals: %w", err)
	}
	timestamps, err := json.Marshal(o.Timestamps())
	if err != nil {
		return OrderDTO{}, fmt.Errorf("marshal timestamps: %w", err)
	}

	var address json.RawMessage
	if addr := o.DeliveryAddress(); addr != nil {
		address, err = json.Marshal(addr)
		if err != nil {
			return OrderDTO{}, fmt.Errorf("marshal delivery address: %w", err)
		}
	}

	return OrderDTO{
		ID:              o.ID().Bytes(),
		Fulfillment:     string(o.Fulfillment()),
		Status:          string(o.Status()),
		Customer:        customer,
		DeliveryAddress: address,
		Items:           items,
		Totals:          totals,
		Timestamps:      timestamps,
		PosProvider:     o.PosProvider(),
		PosOrderID:      o.PosOrderID(),
		CourierProvider: o.CourierProvider(),
		CourierJobID:    o.CourierJobID(),
		TrackingURL:     o.TrackingURL(),
		PlacedAt:        o.PlacedAt().UTC(),
		ETA:             o.ETA().UTC(),
	}, nil
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var customer order.Customer
	if err := json.Unmarshal(dto.Customer, &customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}

	var items []order.CartLine
	if err := json.Unmarshal(dto.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}

	var totals order.Totals
	if err := json.Unmarshal(dto.Totals, &totals); err != nil {
		return nil, fmt.Errorf("unmarshal totals: %w", err)
	}

	var timestamps map[order.Status]time.Time
	if err := json.Unmarshal(dto.Timestamps, &timestamps); err != nil {
		return nil, fmt.Errorf("unmarshal timestamps: %w", err)
	}

	var address *order.Address
	if len(dto.DeliveryAddress) > 0 && string(dto.DeliveryAddress) != "null" {
		address = &order.Address{}
		if err := json.Unmarshal(dto.DeliveryAddress, address); err != nil {
			return nil, fmt.Errorf("unmarshal delivery address: %w", err)
		}
	}

	return order.RestoreOrder(
		id,
		order.Fulfillment(dto.Fulfillment),
		customer,
		address,
		items,
		totals,
		order.Status(dto.Status),
		dto.PosProvider, dto.PosOrderID,
		dto.CourierProvider, dto.CourierJobID, dto.TrackingURL,
		timestamps,
		dto.PlacedAt, dto.ETA,
	)
}
