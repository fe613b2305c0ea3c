package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/portflow/pkg/adapters/file"
	"github.com/aretw0/portflow/pkg/adapters/memory"
	"github.com/aretw0/portflow/pkg/adapters/redis"
	"github.com/aretw0/portflow/pkg/adapters/sqlite"
	"github.com/aretw0/portflow/pkg/persistence/middleware"
	"github.com/aretw0/portflow/pkg/ports"
	"github.com/aretw0/portflow/pkg/registry"
	"github.com/aretw0/portflow/pkg/workspace"
)

// DefaultSQLitePath is the database used by --store=sqlite without --sqlite-path.
var DefaultSQLitePath = filepath.Join(".portflow", "networks.db")

// Backend bundles a definition store with its optional locker.
type Backend struct {
	Store  ports.DefinitionStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Manager wraps the backend in a workspace manager building processors
// from reg.
func (b *Backend) Manager(reg *registry.Registry, logger *slog.Logger) *workspace.Manager {
	opts := []workspace.Option{
		workspace.WithFactory(reg),
		workspace.WithLogger(logger),
	}
	if b.Locker != nil {
		opts = append(opts, workspace.WithLocker(b.Locker))
	}
	return workspace.NewManager(b.Store, opts...)
}

// OpenBackend selects the store named by opts.Store and wraps it in the
// redaction and encryption middlewares the options ask for.
func OpenBackend(opts Options) (*Backend, error) {
	backend, err := openStore(opts)
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if len(opts.Redact) > 0 {
		redact, err := middleware.NewRedactMiddleware(opts.Redact)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		mws = append(mws, redact)
	}
	if opts.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(opts.EncryptionKey)
		if err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("decode %s: %w", EncryptionKeyEnv, err)
		}
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		mws = append(mws, encrypt)
	}
	backend.Store = middleware.Chain(backend.Store, mws...)
	return backend, nil
}

func openStore(opts Options) (*Backend, error) {
	switch opts.Store {
	case "", StoreFile:
		return &Backend{Store: file.New(opts.StoreDir)}, nil
	case StoreMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case StoreSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = DefaultSQLitePath
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to ensure database directory: %w", err)
			}
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, close: store.Close}, nil
	case StoreRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("--redis-addr is required with --store=redis")
		}
		store := redis.New(opts.RedisAddr, "", 0)
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), "portflow:"),
			close:  store.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store %q (want file, sqlite, redis or memory)", opts.Store)
}
