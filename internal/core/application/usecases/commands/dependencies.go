// Package commands contains the write-side operations of the ordering
// pipeline. Every handler funnels status changes through the shared
// Transitioner, which owns the per-order critical section.
package commands

import "ordering/internal/core/ports"

type (
	// PosProviderRegistry resolves a POS adapter by provider key.
	PosProviderRegistry interface {
		Get(name string) (ports.PosAdapter, error)
	}

	// CourierProviderRegistry resolves a courier adapter by provider key.
	CourierProviderRegistry interface {
		Get(name string) (ports.CourierAdapter, error)
	}
)
