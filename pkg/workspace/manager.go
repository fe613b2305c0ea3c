package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/portflow/internal/logging"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/network"
	"github.com/aretw0/portflow/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to named networks, ensuring safe concurrent
// operations. It uses reference counting to garbage collect unused locks.
type Manager struct {
	store   ports.DefinitionStore
	factory network.Factory
	netOpts []network.Option

	mu    sync.Mutex            // guards locks and live
	locks map[string]*lockEntry // active locks
	live  map[string]*network.Network

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithFactory sets the factory used to create classed processors when a
// stored definition is built.
func WithFactory(factory network.Factory) Option {
	return func(m *Manager) {
		m.factory = factory
	}
}

// WithNetworkOptions adds options applied to every network the manager
// builds, such as hooks or auto evaluation.
func WithNetworkOptions(opts ...network.Option) Option {
	return func(m *Manager) {
		m.netOpts = append(m.netOpts, opts...)
	}
}

// NewManager creates a Manager on top of the given store.
func NewManager(store ports.DefinitionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]*network.Network),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(name) after unlocking.
func (m *Manager) acquire(name string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		entry = &lockEntry{}
		m.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, name)
	}
}

// Open returns the live network for name, building it from the store the
// first time. A missing definition yields domain.ErrNetworkNotFound.
func (m *Manager) Open(ctx context.Context, name string) (*network.Network, error) {
	var net *network.Network
	err := m.WithLock(ctx, name, func(ctx context.Context) error {
		var err error
		net, err = m.open(ctx, name)
		return err
	})
	return net, err
}

// OpenOrCreate opens name, or creates and persists an empty network when
// nothing is stored under it.
func (m *Manager) OpenOrCreate(ctx context.Context, name string) (*network.Network, error) {
	var net *network.Network
	err := m.WithLock(ctx, name, func(ctx context.Context) error {
		var err error
		net, err = m.open(ctx, name)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNetworkNotFound) {
			return fmt.Errorf("failed to check network existence: %w", err)
		}

		net = network.New(m.options(name)...)
		def := net.Definition()
		// Persist immediately to reserve the name.
		if err := m.store.Save(ctx, name, &def); err != nil {
			return fmt.Errorf("failed to initialize network: %w", err)
		}
		m.setLive(name, net)
		return nil
	})
	return net, err
}

// Import builds def under name, replacing any live network and stored
// definition with the same name.
func (m *Manager) Import(ctx context.Context, name string, def *domain.NetworkDefinition) (*network.Network, error) {
	if def == nil {
		return nil, fmt.Errorf("import %s: %w", name, domain.ErrNilDefinition)
	}
	var net *network.Network
	err := m.WithLock(ctx, name, func(ctx context.Context) error {
		var err error
		net, err = network.Build(*def, m.factory, m.options(name)...)
		if err != nil {
			return err
		}
		saved := net.Definition()
		if err := m.store.Save(ctx, name, &saved); err != nil {
			return err
		}
		m.setLive(name, net)
		return nil
	})
	return net, err
}

// Edit runs fn against the live network under the name's lock and saves
// the topology afterwards if fn modified it. Nothing is saved when fn
// fails.
func (m *Manager) Edit(ctx context.Context, name string, fn func(context.Context, *network.Network) error) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		net, err := m.open(ctx, name)
		if err != nil {
			return err
		}
		if err := fn(ctx, net); err != nil {
			return err
		}
		if !net.IsModified() {
			return nil
		}
		return m.save(ctx, name, net)
	})
}

// Save persists the topology of the live network.
func (m *Manager) Save(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		net, ok := m.getLive(name)
		if !ok {
			return fmt.Errorf("save %q: network is not open: %w", name, domain.ErrNetworkNotFound)
		}
		return m.save(ctx, name, net)
	})
}

// Close drops the live network. The stored definition is kept.
func (m *Manager) Close(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.live, name)
		m.mu.Unlock()
		return nil
	})
}

// Delete removes the network from memory and from the store.
func (m *Manager) Delete(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.live, name)
		m.mu.Unlock()
		return m.store.Delete(ctx, name)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Live returns the names of the networks currently held in memory, sorted.
func (m *Manager) Live() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.live))
	for name := range m.live {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store returns the underlying definition store.
func (m *Manager) Store() ports.DefinitionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the network.
func (m *Manager) WithLock(ctx context.Context, name string, fn func(context.Context) error) error {
	if name == "" {
		return fmt.Errorf("network name: %w", domain.ErrEmptyIdentifier)
	}

	entry := m.acquire(name)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(name)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, name, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"network", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// open must run under the name's lock.
func (m *Manager) open(ctx context.Context, name string) (*network.Network, error) {
	if net, ok := m.getLive(name); ok {
		return net, nil
	}
	def, err := m.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	net, err := network.Build(*def, m.factory, m.options(name)...)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("network loaded", "network", name, "processors", len(def.Processors))
	m.setLive(name, net)
	return net, nil
}

func (m *Manager) save(ctx context.Context, name string, net *network.Network) error {
	def := net.Definition()
	def.Name = name
	if err := m.store.Save(ctx, name, &def); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	net.SetModified(false)
	return nil
}

func (m *Manager) options(name string) []network.Option {
	opts := append([]network.Option{network.WithLogger(m.logger)}, m.netOpts...)
	return append(opts, network.WithName(name))
}

func (m *Manager) getLive(name string) (*network.Network, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	net, ok := m.live[name]
	return net, ok
}

func (m *Manager) setLive(name string, net *network.Network) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[name] = net
}
