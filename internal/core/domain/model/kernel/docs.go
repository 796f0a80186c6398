// Package kernel provides core domain primitives for the ordering system.
//
// It contains a single building block:
//   - UUID: a value object for entity identifiers with validation and
//     comparison capabilities. Identifiers are time-ordered (UUIDv7) so
//     that order IDs sort by creation time.
//
// The primitives are immutable and thread-safe, and enforce their
// invariants through constructor functions.
package kernel
