package order

import (
	"errors"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not
// created through NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// ErrProviderRefAlreadySet is returned when a POS order id or courier job id
// would be overwritten with a different value. Both references are set at
// most once for the lifetime of the order.
var ErrProviderRefAlreadySet = errors.New("provider reference is already set")

// Initial ETA offsets applied at creation, and buffers applied when the
// kitchen reports ready. Later courier milestones tighten the estimate
// further. Offsets are fixed per status, not derived from wall-clock
// webhook arrival order.
const (
	pickupInitialETA   = 25 * time.Minute
	deliveryInitialETA = 45 * time.Minute
	pickupReadyBuffer  = 10 * time.Minute
	deliveryReadyETA   = 20 * time.Minute
	enRouteETA         = 15 * time.Minute
	pickedUpETA        = 10 * time.Minute
)

// Order is the canonical order record and the aggregate root of this
// subsystem. The orchestration layer is its sole mutator: status, provider
// references, timestamps, and ETA change only through the methods below,
// always under the caller's per-order lock. Everything else is fixed at
// creation.
type Order struct {
	id              kernel.UUID
	fulfillment     Fulfillment
	customer        Customer
	deliveryAddress *Address
	items           []CartLine
	totals          Totals

	status          Status
	posProvider     string
	posOrderID      string
	courierProvider string
	courierJobID    string
	trackingURL     string

	timestamps map[Status]time.Time
	placedAt   time.Time
	eta        time.Time

	isConstructed bool
}

// NewOrder creates an order in StatusCreated with its cart and totals
// snapshot. deliveryAddress must be non-nil iff fulfillment is delivery.
// The creation instant is stamped and the initial ETA derived from it.
func NewOrder(
	id kernel.UUID,
	fulfillment Fulfillment,
	customer Customer,
	deliveryAddress *Address,
	items []CartLine,
	totals Totals,
	now time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		fulfillment.Validate(),
		customer.Validate(),
		totals.Validate(),
		validateItems(items),
		validateAddress(fulfillment, deliveryAddress),
	); err != nil {
		return nil, err
	}

	o := &Order{
		id:              id,
		fulfillment:     fulfillment,
		customer:        customer,
		deliveryAddress: cloneAddress(deliveryAddress),
		items:           cloneItems(items),
		totals:          totals,
		status:          StatusCreated,
		timestamps:      map[Status]time.Time{StatusCreated: now},
		placedAt:        now,
		isConstructed:   true,
	}
	o.eta = o.initialETA()

	return o, nil
}

// RestoreOrder reconstructs an aggregate from persistence without re-running
// creation-time side effects. The stored status and timestamps are trusted;
// only structural validity is checked.
func RestoreOrder(
	id kernel.UUID,
	fulfillment Fulfillment,
	customer Customer,
	deliveryAddress *Address,
	items []CartLine,
	totals Totals,
	status Status,
	posProvider, posOrderID string,
	courierProvider, courierJobID, trackingURL string,
	timestamps map[Status]time.Time,
	placedAt, eta time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		fulfillment.Validate(),
		status.Validate(),
		validateItems(items),
		validateAddress(fulfillment, deliveryAddress),
	); err != nil {
		return nil, err
	}

	ts := make(map[Status]time.Time, len(timestamps))
	for k, v := range timestamps {
		ts[k] = v
	}

	return &Order{
		id:              id,
		fulfillment:     fulfillment,
		customer:        customer,
		deliveryAddress: cloneAddress(deliveryAddress),
		items:           cloneItems(items),
		totals:          totals,
		status:          status,
		posProvider:     posProvider,
		posOrderID:      posOrderID,
		courierProvider: courierProvider,
		courierJobID:    courierJobID,
		trackingURL:     trackingURL,
		timestamps:      ts,
		placedAt:        placedAt,
		eta:             eta,
		isConstructed:   true,
	}, nil
}

// Validate ensures the Order was built through a constructor, guarding
// against zero-value instances slipping in from persistence.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// Fulfillment returns the order's fulfillment track.
func (o *Order) Fulfillment() Fulfillment { return o.fulfillment }

// Customer returns who placed the order.
func (o *Order) Customer() Customer { return o.customer }

// DeliveryAddress returns a copy of the delivery destination, or nil for
// pickup orders.
func (o *Order) DeliveryAddress() *Address { return cloneAddress(o.deliveryAddress) }

// Items returns a copy of the immutable cart snapshot.
func (o *Order) Items() []CartLine { return cloneItems(o.items) }

// Totals returns the immutable pricing breakdown.
func (o *Order) Totals() Totals { return o.totals }

// Status returns the current lifecycle status.
func (o *Order) Status() Status { return o.status }

// PosProvider returns the POS provider name, empty until POS submission
// succeeds.
func (o *Order) PosProvider() string { return o.posProvider }

// PosOrderID returns the external POS order id, empty while the order runs
// in "POS not connected" mode.
func (o *Order) PosOrderID() string { return o.posOrderID }

// CourierProvider returns the courier provider name, empty until dispatch.
func (o *Order) CourierProvider() string { return o.courierProvider }

// CourierJobID returns the courier job id, empty until dispatch succeeds.
func (o *Order) CourierJobID() string { return o.courierJobID }

// TrackingURL returns the courier tracking link, if any.
func (o *Order) TrackingURL() string { return o.trackingURL }

// PlacedAt returns the creation instant.
func (o *Order) PlacedAt() time.Time { return o.placedAt }

// ETA returns the current estimate for the order reaching the customer
// (delivery) or being ready for pickup.
func (o *Order) ETA() time.Time { return o.eta }

// Timestamps returns a copy of the status entry instants.
func (o *Order) Timestamps() map[Status]time.Time {
	ts := make(map[Status]time.Time, len(o.timestamps))
	for k, v := range o.timestamps {
		ts[k] = v
	}
	return ts
}

// StatusEnteredAt returns when the order entered the given status.
func (o *Order) StatusEnteredAt(s Status) (time.Time, bool) {
	t, ok := o.timestamps[s]
	return t, ok
}

// ApplyStatus advances the order to next if the monotonic transition rule
// permits it, stamping the entry instant and revising the ETA. A stale or
// duplicate status yields ErrStaleTransition; a transition on a finished
// order yields ErrTerminalStatus. Both are discard signals, not failures.
func (o *Order) ApplyStatus(next Status, now time.Time) error {
	if err := o.status.CanAdvanceTo(next, o.fulfillment); err != nil {
		return err
	}

	o.status = next
	o.timestamps[next] = now
	o.reviseETA(next, now)
	return nil
}

// AttachPos records the POS provider and external order id. It is
// idempotent for the same id and refuses to overwrite a different one.
func (o *Order) AttachPos(provider, externalOrderID string) error {
	if externalOrderID == "" {
		return errs.NewValueIsRequiredError("pos order id")
	}
	if o.posOrderID != "" {
		if o.posOrderID == externalOrderID {
			return nil
		}
		return ErrProviderRefAlreadySet
	}
	o.posProvider = provider
	o.posOrderID = externalOrderID
	return nil
}

// AttachCourier records the courier provider, job id, and tracking link.
// Same idempotence contract as AttachPos; the orchestrator relies on it to
// prevent double-dispatch.
func (o *Order) AttachCourier(provider, jobID, trackingURL string) error {
	if jobID == "" {
		return errs.NewValueIsRequiredError("courier job id")
	}
	if o.courierJobID != "" {
		if o.courierJobID == jobID {
			return nil
		}
		return ErrProviderRefAlreadySet
	}
	o.courierProvider = provider
	o.courierJobID = jobID
	o.trackingURL = trackingURL
	return nil
}

// Clone returns an independent copy of the aggregate. Published snapshots
// are clones: a subscriber must never hold a pointer the orchestrator keeps
// mutating under the order lock.
func (o *Order) Clone() *Order {
	c := *o
	c.deliveryAddress = cloneAddress(o.deliveryAddress)
	c.items = cloneItems(o.items)
	ts := make(map[Status]time.Time, len(o.timestamps))
	for k, v := range o.timestamps {
		ts[k] = v
	}
	c.timestamps = ts
	return &c
}

// NeedsCourierDispatch reports whether the ready-triggered dispatch reaction
// applies: a delivery order that reached ready without a courier job yet.
// The caller must hold the per-order lock across this check and the
// subsequent AttachCourier to keep dispatch idempotent.
func (o *Order) NeedsCourierDispatch() bool {
	return o.fulfillment == FulfillmentDelivery &&
		o.status == StatusReady &&
		o.courierJobID == ""
}

func (o *Order) initialETA() time.Time {
	if o.fulfillment == FulfillmentDelivery {
		return o.placedAt.Add(deliveryInitialETA)
	}
	return o.placedAt.Add(pickupInitialETA)
}

func (o *Order) reviseETA(entered Status, now time.Time) {
	switch entered {
	case StatusReady:
		if o.fulfillment == FulfillmentDelivery {
			o.eta = now.Add(deliveryReadyETA)
		} else {
			o.eta = now.Add(pickupReadyBuffer)
		}
	case StatusDriverEnRoute:
		o.eta = now.Add(enRouteETA)
	case StatusPickedUp:
		o.eta = now.Add(pickedUpETA)
	case StatusDelivered:
		o.eta = now
	}
}

func validateItems(items []CartLine) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("order items")
	}
	for _, l := range items {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateAddress(f Fulfillment, a *Address) error {
	if f == FulfillmentDelivery {
		if a == nil {
			return errs.NewValueIsRequiredError("delivery address")
		}
		return a.Validate()
	}
	if a != nil {
		return errs.NewValueIsInvalidError("pickup order must not carry a delivery address")
	}
	return nil
}

func cloneAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func cloneItems(items []CartLine) []CartLine {
	out := make([]CartLine, len(items))
	copy(out, items)
	for i, l := range items {
		if len(l.Modifiers) > 0 {
			mods := make([]Modifier, len(l.Modifiers))
			copy(mods, l.Modifiers)
			out[i].Modifiers = mods
		}
	}
	return out
}
