package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDefinitionStoreContract runs a suite of tests to verify that a DefinitionStore
// implementation adheres to the defined interface contract.
func RunDefinitionStoreContract(t *testing.T, store DefinitionStore) {
	ctx := context.Background()
	name := "contract-test-network-" + time.Now().Format("20060102150405")

	sample := func(n string) *domain.NetworkDefinition {
		limit := 0
		return &domain.NetworkDefinition{
			Name: n,
			Processors: []domain.ProcessorDefinition{
				{ID: "src", Class: "source", Metadata: map[string]any{"value": "hello"}},
				{ID: "join", Class: "merge", Inports: []domain.PortDefinition{{ID: "in", MaxConnections: &limit}}},
			},
			Connections: []domain.ConnectionDefinition{{From: "src/out", To: "join/in"}},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		def := sample(name)

		err := store.Save(ctx, name, def)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, def.Name, loaded.Name)
		assert.Equal(t, def.Connections, loaded.Connections)
		require.Len(t, loaded.Processors, 2)
		assert.Equal(t, "hello", loaded.Processors[0].Metadata["value"])
		require.NotNil(t, loaded.Processors[1].Inports[0].MaxConnections)
		assert.Equal(t, 0, *loaded.Processors[1].Inports[0].MaxConnections)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample(name)))

		first, err := store.Load(ctx, name)
		require.NoError(t, err)
		first.Processors[0].ID = "mutated"

		second, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "src", second.Processors[0].ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrNetworkNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample(name)))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrNetworkNotFound, "Load after Delete should return ErrNetworkNotFound")

		assert.NoError(t, store.Delete(ctx, name), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		_ = store.Save(ctx, id1, sample(id1))
		_ = store.Save(ctx, id2, sample(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsIncreasing(t, names)
	})
}
