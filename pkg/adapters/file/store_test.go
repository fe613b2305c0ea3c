package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/portflow/pkg/adapters/file"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunDefinitionStoreContract(t, store)
}

func TestFileStore_WritesReadableYAML(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	def := &domain.NetworkDefinition{
		Name:       "demo",
		Processors: []domain.ProcessorDefinition{{ID: "src", Class: "source"}},
	}
	require.NoError(t, store.Save(ctx, "demo", def))

	data, err := os.ReadFile(filepath.Join(dir, "demo.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: demo")
	assert.Contains(t, string(data), "class: source")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileStore_RejectsBadNames(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, "", &domain.NetworkDefinition{}), domain.ErrEmptyIdentifier)
	assert.Error(t, store.Save(ctx, "../escape", &domain.NetworkDefinition{}))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
