package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/portflow/pkg/adapters/sqlite"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunDefinitionStoreContract(t, newTestStore(t, ":memory:"))
}

func TestSQLiteStore_Overwrite(t *testing.T) {
	store := newTestStore(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "demo", &domain.NetworkDefinition{Name: "demo"}))
	require.NoError(t, store.Save(ctx, "demo", &domain.NetworkDefinition{
		Name:       "demo",
		Processors: []domain.ProcessorDefinition{{ID: "src", Class: "source"}},
	}))

	loaded, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, loaded.Processors, 1)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, names)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.db")
	ctx := context.Background()

	first, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "kept", &domain.NetworkDefinition{Name: "kept"}))
	require.NoError(t, first.Close())

	second := newTestStore(t, path)
	loaded, err := second.Load(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "kept", loaded.Name)
}

func TestSQLiteStore_EmptyName(t *testing.T) {
	store := newTestStore(t, ":memory:")
	assert.ErrorIs(t, store.Save(context.Background(), "", &domain.NetworkDefinition{}), domain.ErrEmptyIdentifier)
}

func TestSQLiteStore_EmptyList(t *testing.T) {
	names, err := newTestStore(t, ":memory:").List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
