package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/portflow"
	"github.com/aretw0/portflow/internal/logging"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/schema"
)

// LoadDefinition reads the definition from --file, or from the store under
// --network.
func LoadDefinition(ctx context.Context, opts Options) (*domain.NetworkDefinition, error) {
	if opts.File != "" {
		return schema.LoadFile(opts.File)
	}
	if opts.Network == "" {
		return nil, fmt.Errorf("either --file or --network is required")
	}
	backend, err := OpenBackend(opts)
	if err != nil {
		return nil, err
	}
	defer backend.Close()
	return backend.Store.Load(ctx, opts.Network)
}

// CreateEngine builds an engine with standard CLI conventions: the given
// logger, debug hooks in debug mode, plus any extra options.
func CreateEngine(ctx context.Context, opts Options, logger *slog.Logger, extra ...portflow.Option) (*portflow.Engine, error) {
	def, err := LoadDefinition(ctx, opts)
	if err != nil {
		return nil, err
	}

	engineOpts := []portflow.Option{portflow.WithLogger(logger)}
	if opts.Debug {
		engineOpts = append(engineOpts, portflow.WithLifecycleHooks(logging.DebugHooks(logger)))
	}
	engineOpts = append(engineOpts, extra...)

	eng, err := portflow.New(def, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine from %s: %w", opts.Source(), err)
	}
	return eng, nil
}
