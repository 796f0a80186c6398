// Package services provides domain services for business computations that
// don't naturally belong to a single aggregate root.
//
// The package includes:
//   - TotalsCalculator: the pricing engine producing the immutable totals
//     breakdown for a cart
//
// Domain services here are pure: they perform no I/O and are deterministic,
// which the pricing invariants depend on.
package services
