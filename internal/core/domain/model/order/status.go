package order

import (
	"errors"
	"fmt"

	"ordering/internal/pkg/errs"
)

// Status represents the lifecycle state of an order. Persisted values and
// the per-track ordinal tables below are part of the public contract; a new
// status must be inserted into the tables, never assumed to sort
// lexicographically.
//
// Pickup track:
//
//	created -> accepted -> in_kitchen -> ready
//
// Delivery track:
//
//	created -> accepted -> in_kitchen -> ready
//	        -> courier_requested -> driver_en_route -> picked_up -> delivered
//
// The exception statuses rejected, canceled, and failed are reachable from
// any non-terminal status and are terminal themselves.
type Status string

const (
	// StatusUnknown is the sentinel an adapter returns for a provider event
	// it cannot classify. It is never applied to an order.
	StatusUnknown Status = "unknown"

	StatusCreated          Status = "created"
	StatusAccepted         Status = "accepted"
	StatusInKitchen        Status = "in_kitchen"
	StatusReady            Status = "ready"
	StatusCourierRequested Status = "courier_requested"
	StatusDriverEnRoute    Status = "driver_en_route"
	StatusPickedUp         Status = "picked_up"
	StatusDelivered        Status = "delivered"

	StatusRejected Status = "rejected"
	StatusCanceled Status = "canceled"
	StatusFailed   Status = "failed"
)

var (
	// ErrStaleTransition reports an incoming status that is not strictly
	// later in the order's track than the current one. Callers discard it
	// and log at debug level; it is not a failure.
	ErrStaleTransition = errors.New("transition is stale or out of order")

	// ErrTerminalStatus reports a transition attempted on an order that has
	// already reached a terminal status.
	ErrTerminalStatus = errors.New("order is in a terminal status")
)

// Ordinal tables per fulfillment track. Lower ordinals are earlier in the
// real-world flow; webhook arrival order carries no meaning.
var (
	pickupOrdinals = map[Status]int{
		StatusCreated:   0,
		StatusAccepted:  1,
		StatusInKitchen: 2,
		StatusReady:     3,
	}

	deliveryOrdinals = map[Status]int{
		StatusCreated:          0,
		StatusAccepted:         1,
		StatusInKitchen:        2,
		StatusReady:            3,
		StatusCourierRequested: 4,
		StatusDriverEnRoute:    5,
		StatusPickedUp:         6,
		StatusDelivered:        7,
	}
)

// trackOrdinals returns the ordinal table for a fulfillment track.
func trackOrdinals(f Fulfillment) map[Status]int {
	if f == FulfillmentDelivery {
		return deliveryOrdinals
	}
	return pickupOrdinals
}

// IsException reports whether s is one of the exception statuses that may
// interrupt an order from any non-terminal state.
func (s Status) IsException() bool {
	return s == StatusRejected || s == StatusCanceled || s == StatusFailed
}

// IsTerminal reports whether an order in status s accepts further
// transitions. Delivered and the exception statuses are terminal on both
// tracks. Ready ends the pickup forward track but still admits exceptions,
// so it is not terminal here.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s.IsException()
}

// Validate checks that s is a status an order can actually hold.
// StatusUnknown and arbitrary strings are invalid.
func (s Status) Validate() error {
	if _, ok := deliveryOrdinals[s]; ok {
		return nil
	}
	if s.IsException() {
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a known order status", string(s)))
}

// CanAdvanceTo decides whether an order in status s on track f may move to
// next. It returns:
//   - nil when the transition is forward progress or a permitted exception
//   - ErrTerminalStatus when s accepts no further transitions
//   - ErrStaleTransition when next is unknown, off-track, or not strictly
//     later than s
//
// This is the single rule that enforces monotonicity against out-of-order
// and duplicate webhook delivery.
func (s Status) CanAdvanceTo(next Status, f Fulfillment) error {
	if s.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalStatus, s)
	}

	if next.IsException() {
		return nil
	}

	ordinals := trackOrdinals(f)
	cur, ok := ordinals[s]
	if !ok {
		// Current status off its own track only happens with corrupted
		// state; refuse to advance.
		return fmt.Errorf("%w: current status %s not on %s track", ErrStaleTransition, s, f)
	}

	nxt, ok := ordinals[next]
	if !ok || nxt <= cur {
		return fmt.Errorf("%w: %s -> %s on %s track", ErrStaleTransition, s, next, f)
	}

	return nil
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
