package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/portflow/pkg/domain"
)

// Store implements ports.DefinitionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.NetworkDefinition
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.NetworkDefinition),
	}
}

// Save persists a deep copy of the definition.
func (s *Store) Save(ctx context.Context, name string, def *domain.NetworkDefinition) error {
	if name == "" {
		return fmt.Errorf("save definition: %w", domain.ErrEmptyIdentifier)
	}
	copied := def.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load retrieves a copy of the definition, so callers can't mutate the
// stored one by pointer.
func (s *Store) Load(ctx context.Context, name string) (*domain.NetworkDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("load %q: %w", name, domain.ErrNetworkNotFound)
	}
	return def.Clone(), nil
}

// Delete removes the definition.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
