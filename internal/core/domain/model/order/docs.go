// Package order provides the canonical order record and its state machine.
// It implements the Order aggregate root consumed and mutated by the
// orchestration layer.
//
// The package includes:
//   - Order: the aggregate root holding the immutable cart snapshot, totals,
//     provider references, and the lifecycle status
//   - Status: a monotonic state machine with a fixed ordinal table per
//     fulfillment track
//   - CartLine, Totals, Customer, Address: value objects fixed at creation
//
// Key business rules:
//   - Items and totals are immutable once the order is created
//   - A status update is applied only if it is strictly later in the order's
//     track than the current status, or is one of the exception statuses
//   - Exception statuses (rejected, canceled, failed) and delivered are
//     terminal: no further transitions are accepted
//   - Every accepted transition stamps a timestamp and revises the ETA
//
// The ordinal tables are part of the public contract: webhook delivery order
// is not guaranteed, so they are the sole defense against stale or duplicate
// provider events.
package order
