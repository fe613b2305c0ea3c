package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/portflow/pkg/adapters/redis"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunDefinitionStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	name := "net-ttl"
	def := &domain.NetworkDefinition{
		Name:       name,
		Processors: []domain.ProcessorDefinition{{ID: "src", Class: "source"}},
	}

	err := store.Save(ctx, name, def)
	require.NoError(t, err)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, name)

	// Key expiration happens on miniredis' clock.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, name)
	assert.ErrorIs(t, err, domain.ErrNetworkNotFound)

	// Index pruning uses the wall clock, so wait past the score.
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	name := "my-network"

	err := store.Save(ctx, name, &domain.NetworkDefinition{Name: name})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:my-network"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, list)
}

func TestRedisStore_RejectsEmptyName(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	err := store.Save(context.Background(), "", &domain.NetworkDefinition{})
	assert.ErrorIs(t, err, domain.ErrEmptyIdentifier)
}
