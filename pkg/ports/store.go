package ports

import (
	"context"

	"github.com/aretw0/portflow/pkg/domain"
)

// DefinitionStore defines the interface for persisting network topologies.
type DefinitionStore interface {
	// Save persists the definition under the given name, replacing any previous one.
	Save(ctx context.Context, name string, def *domain.NetworkDefinition) error

	// Load retrieves the definition stored under name.
	// Returns domain.ErrNetworkNotFound if nothing is stored there.
	Load(ctx context.Context, name string) (*domain.NetworkDefinition, error)

	// Delete removes the definition. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names, sorted.
	List(ctx context.Context) ([]string, error)
}
