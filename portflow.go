package portflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/portflow/internal/logging"
	"github.com/aretw0/portflow/internal/validator"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/network"
	"github.com/aretw0/portflow/pkg/ports"
	"github.com/aretw0/portflow/pkg/registry"
	"github.com/aretw0/portflow/pkg/schema"
)

// Engine is the high-level entry point for the portflow library.
// It wraps one live network and exposes it through context-aware methods.
type Engine struct {
	net          *network.Network
	registry     *registry.Registry
	hooks        []domain.LifecycleHooks
	logger       *slog.Logger
	autoEvaluate bool
	onRequest    func()
	Name         string
}

var _ ports.NetworkService = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks. It may be given more
// than once; the hook sets are chained in order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry sets the processor classes available to definitions.
// The default registry holds the built-in classes.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithAutoEvaluate evaluates the network whenever it requests it.
func WithAutoEvaluate(enabled bool) Option {
	return func(e *Engine) {
		e.autoEvaluate = enabled
	}
}

// WithEvaluationRequest registers a callback for evaluation requests.
func WithEvaluationRequest(fn func()) Option {
	return func(e *Engine) {
		e.onRequest = fn
	}
}

// New validates def and builds an engine around it.
func New(def *domain.NetworkDefinition, opts ...Option) (*Engine, error) {
	if def == nil {
		return nil, domain.ErrNilDefinition
	}
	eng := &Engine{Name: def.Name}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.registry == nil {
		eng.registry = registry.Default()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if err := validator.Validate(def, eng.registry); err != nil {
		return nil, fmt.Errorf("invalid network definition: %w", err)
	}

	net, err := network.Build(*def, eng.registry, eng.networkOptions()...)
	if err != nil {
		return nil, err
	}
	eng.net = net
	eng.logger.Debug("network built", "network", def.Name, "processors", len(def.Processors), "connections", len(def.Connections))
	return eng, nil
}

// Open loads a YAML or JSON definition from path and builds an engine.
func Open(path string, opts ...Option) (*Engine, error) {
	def, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(def, opts...)
}

func (e *Engine) networkOptions() []network.Option {
	opts := []network.Option{
		network.WithLogger(e.logger),
		network.WithAutoEvaluate(e.autoEvaluate),
	}
	if len(e.hooks) > 0 {
		opts = append(opts, network.WithHooks(domain.ChainHooks(e.hooks...)))
	}
	if e.onRequest != nil {
		opts = append(opts, network.WithEvaluationRequest(e.onRequest))
	}
	return opts
}

// Network returns the underlying live network.
func (e *Engine) Network() *network.Network {
	return e.net
}

// Registry returns the processor classes the engine builds from.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Definition returns the current topology.
func (e *Engine) Definition(ctx context.Context) (domain.NetworkDefinition, error) {
	if err := ctx.Err(); err != nil {
		return domain.NetworkDefinition{}, err
	}
	return e.net.Definition(), nil
}

// Status returns the runtime snapshot of every processor.
func (e *Engine) Status(ctx context.Context) ([]domain.ProcessorStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.net.Status(), nil
}

// Ports returns the port snapshots of one processor.
func (e *Engine) Ports(ctx context.Context, processorID string) ([]domain.PortInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.net.Ports(processorID)
}

// PortInfo returns the snapshot of a single port.
func (e *Engine) PortInfo(ctx context.Context, ref domain.PortRef) (domain.PortInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.PortInfo{}, err
	}
	return e.net.PortInfo(ref)
}

// Connect adds an edge from an outport to an inport.
func (e *Engine) Connect(ctx context.Context, from, to domain.PortRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.net.AddConnection(from, to)
}

// Disconnect removes an edge.
func (e *Engine) Disconnect(ctx context.Context, from, to domain.PortRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.net.RemoveConnection(from, to)
}

// CheckCircular reports whether connecting from to to would close a cycle.
func (e *Engine) CheckCircular(ctx context.Context, from, to domain.PortRef) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.net.WouldCreateCycle(from, to)
}

// Evaluate runs the invalid, ready processors in topological order.
func (e *Engine) Evaluate(ctx context.Context) ([]string, error) {
	return e.net.Evaluate(ctx)
}

// Publish sets data on an outport and invalidates its consumers.
func (e *Engine) Publish(ctx context.Context, ref domain.PortRef, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.net.Publish(ref, data)
}
