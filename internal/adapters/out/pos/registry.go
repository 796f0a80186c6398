package pos

import (
	"sort"

	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

// Registry resolves a POS adapter by its provider key. It is assembled once
// in the composition root and read-only afterwards, so lookups need no
// locking.
type Registry struct {
	adapters map[string]ports.PosAdapter
}

func NewRegistry(adapters ...ports.PosAdapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]ports.PosAdapter, len(adapters))}
	for _, adapter := range adapters {
		if adapter == nil {
			return nil, errs.NewValueIsRequiredError("adapter")
		}
		if _, exists := r.adapters[adapter.Name()]; exists {
			return nil, errs.NewValueIsInvalidError("adapter " + adapter.Name() + " registered twice")
		}
		r.adapters[adapter.Name()] = adapter
	}
	return r, nil
}

// Get returns the adapter registered under name or an ObjectNotFoundError,
// which the webhook route turns into a 404.
func (r *Registry) Get(name string) (ports.PosAdapter, error) {
	adapter, ok := r.adapters[name]
	if !ok {
		return nil, errs.NewObjectNotFoundError("pos provider", name)
	}
	return adapter, nil
}

// Names lists the registered provider keys in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
