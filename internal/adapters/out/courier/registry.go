package courier

import (
	"sort"

	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

// Registry resolves a courier adapter by its provider key. Assembled once in
// the composition root, read-only afterwards.
type Registry struct {
	adapters map[string]ports.CourierAdapter
}

func NewRegistry(adapters ...ports.CourierAdapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]ports.CourierAdapter, len(adapters))}
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

// Get returns the adapter registered under name or an ObjectNotFoundError.
func (r *Registry) Get(name string) (ports.CourierAdapter, error) {
	adapter, ok := r.adapters[name]
	if !ok {
		return nil, errs.NewObjectNotFoundError("courier provider", name)
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
