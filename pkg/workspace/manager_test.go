package workspace_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/portflow/pkg/adapters/memory"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/network"
	"github.com/aretw0/portflow/pkg/ports"
	"github.com/aretw0/portflow/pkg/registry"
	"github.com/aretw0/portflow/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeline() *domain.NetworkDefinition {
	return &domain.NetworkDefinition{
		Name: "pipeline",
		Processors: []domain.ProcessorDefinition{
			{ID: "src", Class: registry.ClassSource, Metadata: map[string]any{"value": 42}},
			{ID: "snk", Class: registry.ClassSink},
		},
	}
}

func srcOut() domain.PortRef { return domain.PortRef{Processor: "src", Port: "out"} }
func snkIn() domain.PortRef  { return domain.PortRef{Processor: "snk", Port: "in"} }

// SlowStore wraps the memory store and sleeps on every call, widening the
// window for races between concurrent callers.
type SlowStore struct {
	*memory.Store
	loads atomic.Int32
}

func (s *SlowStore) Load(ctx context.Context, name string) (*domain.NetworkDefinition, error) {
	s.loads.Add(1)
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, name)
}

func (s *SlowStore) Save(ctx context.Context, name string, def *domain.NetworkDefinition) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, name, def)
}

func TestManager_OpenMissing(t *testing.T) {
	mgr := workspace.NewManager(memory.NewStore())
	_, err := mgr.Open(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNetworkNotFound)

	_, err = mgr.Open(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyIdentifier)
}

func TestManager_ImportNilDefinition(t *testing.T) {
	mgr := workspace.NewManager(memory.NewStore())
	net, err := mgr.Import(context.Background(), "demo", nil)
	assert.Nil(t, net)
	assert.ErrorIs(t, err, domain.ErrNilDefinition)

	_, err = mgr.Open(context.Background(), "demo")
	assert.ErrorIs(t, err, domain.ErrNetworkNotFound, "nothing was saved")
}

func TestManager_ImportAndOpen(t *testing.T) {
	store := memory.NewStore()
	mgr := workspace.NewManager(store, workspace.WithFactory(registry.Default()))
	ctx := context.Background()

	imported, err := mgr.Import(ctx, "demo", pipeline())
	require.NoError(t, err)
	assert.Equal(t, "demo", imported.Name())

	opened, err := mgr.Open(ctx, "demo")
	require.NoError(t, err)
	assert.Same(t, imported, opened, "the live network is reused")

	stored, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, stored.Processors, 2)
	assert.Equal(t, []string{"demo"}, mgr.Live())
}

func TestManager_OpenBuildsFromStore(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	def := pipeline()
	def.Connections = []domain.ConnectionDefinition{{From: "src/out", To: "snk/in"}}
	require.NoError(t, store.Save(ctx, "stored", def))

	mgr := workspace.NewManager(store, workspace.WithFactory(registry.Default()))
	net, err := mgr.Open(ctx, "stored")
	require.NoError(t, err)
	assert.True(t, net.IsConnected(srcOut(), snkIn()))
	assert.False(t, net.IsModified())
}

func TestManager_EditPersistsChanges(t *testing.T) {
	store := memory.NewStore()
	mgr := workspace.NewManager(store, workspace.WithFactory(registry.Default()))
	ctx := context.Background()
	_, err := mgr.Import(ctx, "demo", pipeline())
	require.NoError(t, err)

	err = mgr.Edit(ctx, "demo", func(ctx context.Context, net *network.Network) error {
		return net.AddConnection(srcOut(), snkIn())
	})
	require.NoError(t, err)

	stored, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnectionDefinition{{From: "src/out", To: "snk/in"}}, stored.Connections)

	net, err := mgr.Open(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, net.IsModified(), "saving clears the modified flag")
}

func TestManager_EditFailureSkipsSave(t *testing.T) {
	store := memory.NewStore()
	mgr := workspace.NewManager(store, workspace.WithFactory(registry.Default()))
	ctx := context.Background()
	_, err := mgr.Import(ctx, "demo", pipeline())
	require.NoError(t, err)

	boom := errors.New("boom")
	err = mgr.Edit(ctx, "demo", func(ctx context.Context, net *network.Network) error {
		if err := net.AddConnection(srcOut(), snkIn()); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Empty(t, stored.Connections)
}

func TestManager_SaveRequiresOpenNetwork(t *testing.T) {
	mgr := workspace.NewManager(memory.NewStore())
	err := mgr.Save(context.Background(), "nothing")
	assert.ErrorIs(t, err, domain.ErrNetworkNotFound)
}

func TestManager_CloseAndDelete(t *testing.T) {
	store := memory.NewStore()
	mgr := workspace.NewManager(store, workspace.WithFactory(registry.Default()))
	ctx := context.Background()

	first, err := mgr.Import(ctx, "demo", pipeline())
	require.NoError(t, err)

	require.NoError(t, mgr.Close(ctx, "demo"))
	assert.Empty(t, mgr.Live())

	reopened, err := mgr.Open(ctx, "demo")
	require.NoError(t, err)
	assert.NotSame(t, first, reopened, "closing forces a rebuild from the store")

	require.NoError(t, mgr.Delete(ctx, "demo"))
	_, err = mgr.Open(ctx, "demo")
	assert.ErrorIs(t, err, domain.ErrNetworkNotFound)

	names, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestManager_OpenOrCreateIsAtomic(t *testing.T) {
	store := &SlowStore{Store: memory.NewStore()}
	mgr := workspace.NewManager(store)
	ctx := context.Background()

	results := make([]*network.Network, 4)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			net, err := mgr.OpenOrCreate(ctx, "fresh")
			assert.NoError(t, err)
			results[i] = net
		}(i)
	}
	wg.Wait()

	for _, net := range results[1:] {
		assert.Same(t, results[0], net)
	}
	assert.EqualValues(t, 1, store.loads.Load(), "only the first caller reaches the store")

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names)
}

func TestManager_WithLockSerializes(t *testing.T) {
	mgr := workspace.NewManager(memory.NewStore())
	ctx := context.Background()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithLock(ctx, "shared", func(ctx context.Context) error {
				now := inside.Add(1)
				for {
					prev := maxInside.Load()
					if now <= prev || maxInside.CompareAndSwap(prev, now) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxInside.Load())
}

type fakeLocker struct {
	mu        sync.Mutex
	keys      []string
	ttl       time.Duration
	lockErr   error
	unlockErr error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	f.keys = append(f.keys, key)
	f.ttl = ttl
	return func(context.Context) error { return f.unlockErr }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{unlockErr: errors.New("expired")}
	mgr := workspace.NewManager(memory.NewStore(),
		workspace.WithLocker(locker),
		workspace.WithLockTTL(time.Minute),
	)
	ctx := context.Background()

	ran := false
	err := mgr.WithLock(ctx, "demo", func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err, "a failed release is only logged")
	assert.True(t, ran)
	assert.Equal(t, []string{"demo"}, locker.keys)
	assert.Equal(t, time.Minute, locker.ttl)

	locker.lockErr = errors.New("busy")
	err = mgr.WithLock(ctx, "demo", func(context.Context) error {
		t.Fatal("must not run without the lock")
		return nil
	})
	assert.ErrorContains(t, err, "busy")
}
