package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/network"
)

// Factory creates a processor of one class with the given identifier.
type Factory func(id string) (*network.Processor, error)

// Registry manages the available processor classes.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Default returns a registry with the built-in classes registered.
func Default() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register adds a class to the registry.
// If a class with the same name exists, it is overwritten.
func (r *Registry) Register(class string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[class] = fn
}

// Create looks up a class and builds a processor from it.
// Returns ErrUnknownClass if the class is not registered.
func (r *Registry) Create(class, id string) (*network.Processor, error) {
	r.mu.RLock()
	fn, ok := r.factories[class]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("class %q: %w", class, domain.ErrUnknownClass)
	}

	p, err := fn(id)
	if err != nil {
		return nil, fmt.Errorf("create %s %q: %w", class, id, err)
	}
	return p, nil
}

// Has reports whether the class is registered.
func (r *Registry) Has(class string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[class]
	return ok
}

// Classes returns the registered class names, sorted.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
