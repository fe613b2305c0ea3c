package network

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/portflow/internal/logging"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/port"
)

// Network owns a set of processors and the connections between them.
// All public methods are serialized by a single mutex. Port callbacks,
// hooks and ProcessFuncs run on the calling goroutine while it is held.
//
// The end of an invalidation wave, every connection change, Invalidate and
// Publish request an evaluation. Requests are coalesced and emitted once
// the lock is released and no batch is open.
type Network struct {
	mu sync.Mutex

	name         string
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	autoEvaluate bool
	onRequest    func()

	processors  map[string]*Processor
	connections map[domain.PortConnection]struct{}

	modified     bool
	batch        int
	pending      bool
	invalidating []*Processor
}

// Option configures a Network.
type Option func(*Network)

// WithName labels the network in logs and lifecycle events.
func WithName(name string) Option {
	return func(n *Network) {
		n.name = name
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) {
		n.logger = logger
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(n *Network) {
		n.hooks = hooks
	}
}

// WithAutoEvaluate runs Evaluate whenever an evaluation is requested.
func WithAutoEvaluate(enabled bool) Option {
	return func(n *Network) {
		n.autoEvaluate = enabled
	}
}

// WithEvaluationRequest registers a callback fired, outside the lock, when
// an invalidation wave ends and the network needs evaluating.
func WithEvaluationRequest(fn func()) Option {
	return func(n *Network) {
		n.onRequest = fn
	}
}

// New creates an empty network.
func New(opts ...Option) *Network {
	n := &Network{
		processors:  make(map[string]*Processor),
		connections: make(map[domain.PortConnection]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logging.NewNop()
	}
	n.logger = logging.ForNetwork(n.logger, n.name)
	return n
}

// Name returns the network label.
func (n *Network) Name() string { return n.name }

// AddProcessor registers p and invalidates it at InvalidResources.
func (n *Network) AddProcessor(p *Processor) error {
	defer n.flush()
	n.mu.Lock()
	defer n.mu.Unlock()

	if p == nil {
		return fmt.Errorf("add processor: %w", domain.ErrEmptyIdentifier)
	}
	if _, exists := n.processors[p.id]; exists {
		return fmt.Errorf("add processor %q: %w", p.id, domain.ErrProcessorExists)
	}
	n.processors[p.id] = p
	p.observer = n
	n.modified = true
	n.logger.Debug("processor added", "processor", p.id, "class", p.class)
	if n.hooks.OnProcessorAdded != nil {
		n.hooks.OnProcessorAdded(n.processorEvent(domain.EventProcessorAdded, p))
	}
	p.Invalidate(domain.InvalidResources)
	return nil
}

// RemoveProcessor severs every connection of the processor, then removes it.
func (n *Network) RemoveProcessor(id string) error {
	defer n.flush()
	n.mu.Lock()
	defer n.mu.Unlock()

	p, ok := n.processors[id]
	if !ok {
		return fmt.Errorf("remove processor %q: %w", id, domain.ErrProcessorNotFound)
	}
	for _, c := range p.connections() {
		n.removeConnection(c)
	}
	delete(n.processors, id)
	n.forgetInvalidating(p)
	p.observer = nil
	n.modified = true
	n.logger.Debug("processor removed", "processor", id)
	if n.hooks.OnProcessorRemoved != nil {
		n.hooks.OnProcessorRemoved(n.processorEvent(domain.EventProcessorRemoved, p))
	}
	return nil
}

// Processor returns the processor with the given identifier.
func (n *Network) Processor(id string) (*Processor, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.processors[id]
	if !ok {
		return nil, fmt.Errorf("processor %q: %w", id, domain.ErrProcessorNotFound)
	}
	return p, nil
}

// Processors returns every processor ordered by identifier.
func (n *Network) Processors() []*Processor {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sortedProcessors()
}

// Inport resolves a reference to an inport.
func (n *Network) Inport(ref domain.PortRef) (*port.Inport, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.inport(ref)
}

// Outport resolves a reference to an outport.
func (n *Network) Outport(ref domain.PortRef) (*port.Outport, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.outport(ref)
}

// PortInfo returns the diagnostic snapshot of the referenced port. Inports
// take precedence when a processor has an inport and an outport with the
// same identifier.
func (n *Network) PortInfo(ref domain.PortRef) (domain.PortInfo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if in, err := n.inport(ref); err == nil {
		return in.Info(), nil
	}
	out, err := n.outport(ref)
	if err != nil {
		return domain.PortInfo{}, err
	}
	return out.Info(), nil
}

// AddConnection connects the outport to the inport. Connecting an existing
// edge is a no-op. Unknown ports, ports without capacity or with
// mismatched data types, and edges closing a cycle are rejected before
// anything is mutated.
func (n *Network) AddConnection(from, to domain.PortRef) error {
	defer n.flush()
	n.mu.Lock()
	defer n.mu.Unlock()

	out, in, err := n.resolve(from, to)
	if err != nil {
		return err
	}
	c := domain.PortConnection{Outport: from, Inport: to}
	if in.IsConnectedTo(out) {
		return nil
	}
	if wouldCreateCycle(out, in) {
		return fmt.Errorf("connect %s: %w", c, domain.ErrCircularConnection)
	}
	if !in.CanConnectTo(out) {
		return fmt.Errorf("connect %s: %w", c, domain.ErrIncompatiblePorts)
	}

	n.connections[c] = struct{}{}
	n.modified = true
	n.pending = true
	in.ConnectTo(out)
	n.logger.Debug("connection added", "connection", c.String())
	if n.hooks.OnConnectionAdded != nil {
		n.hooks.OnConnectionAdded(n.connectionEvent(domain.EventConnectionAdded, c))
	}
	return nil
}

// RemoveConnection disconnects the edge. Removing a missing edge between
// existing ports is a no-op.
func (n *Network) RemoveConnection(from, to domain.PortRef) error {
	defer n.flush()
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, _, err := n.resolve(from, to); err != nil {
		return err
	}
	n.removeConnection(domain.PortConnection{Outport: from, Inport: to})
	return nil
}

func (n *Network) removeConnection(c domain.PortConnection) {
	out, in, err := n.resolve(c.Outport, c.Inport)
	if err != nil || !in.IsConnectedTo(out) {
		return
	}
	delete(n.connections, c)
	n.modified = true
	n.pending = true
	in.DisconnectFrom(out)
	n.logger.Debug("connection removed", "connection", c.String())
	if n.hooks.OnConnectionRemoved != nil {
		n.hooks.OnConnectionRemoved(n.connectionEvent(domain.EventConnectionRemoved, c))
	}
}

// IsConnected reports whether the edge exists.
func (n *Network) IsConnected(from, to domain.PortRef) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.connections[domain.PortConnection{Outport: from, Inport: to}]
	return ok
}

// Connections returns every edge ordered by its textual form.
func (n *Network) Connections() []domain.PortConnection {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sortedConnections()
}

// WouldCreateCycle reports whether connecting from to to would close a
// cycle, without mutating the network.
func (n *Network) WouldCreateCycle(from, to domain.PortRef) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out, in, err := n.resolve(from, to)
	if err != nil {
		return false, err
	}
	return wouldCreateCycle(out, in), nil
}

// Invalidate raises the invalidation level of a processor.
func (n *Network) Invalidate(id string, level domain.InvalidationLevel) error {
	defer n.flush()
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.processors[id]
	if !ok {
		return fmt.Errorf("invalidate %q: %w", id, domain.ErrProcessorNotFound)
	}
	p.Invalidate(level)
	n.pending = true
	return nil
}

// Publish sets data on an outport and invalidates everything downstream of
// it. The producer is left as it is, so a valid producer does not run again
// and overwrite the data; consumers see the outport as a changed source.
func (n *Network) Publish(ref domain.PortRef, data any) error {
	defer n.flush()
	n.mu.Lock()
	defer n.mu.Unlock()
	out, err := n.outport(ref)
	if err != nil {
		return err
	}
	out.SetData(data)
	out.Invalidate(domain.InvalidOutput)
	out.SetValid()
	n.pending = true
	return nil
}

// PropagateEvent sends ev downstream from the processor and reports
// whether any consumer used it.
func (n *Network) PropagateEvent(id string, ev domain.Event) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.processors[id]
	if !ok {
		return false, fmt.Errorf("propagate %q: %w", id, domain.ErrProcessorNotFound)
	}
	return p.PropagateEvent(ev), nil
}

// IsModified reports whether the topology changed since the flag was reset.
func (n *Network) IsModified() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.modified
}

// SetModified sets or resets the modified flag.
func (n *Network) SetModified(modified bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.modified = modified
}

// IsInvalidating reports whether an invalidation wave is in progress.
func (n *Network) IsInvalidating() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.invalidating) > 0
}

// InvalidationInitiator returns the processor that started the current
// invalidation wave, or nil.
func (n *Network) InvalidationInitiator() *Processor {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.invalidating) == 0 {
		return nil
	}
	return n.invalidating[0]
}

// BeginBatch defers evaluation requests until the matching EndBatch.
// Batches nest.
func (n *Network) BeginBatch() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batch++
}

// EndBatch closes a batch. The outermost EndBatch emits any evaluation
// request raised during the batch.
func (n *Network) EndBatch() {
	n.mu.Lock()
	if n.batch > 0 {
		n.batch--
	}
	n.mu.Unlock()
	n.flush()
}

// Batch runs fn inside BeginBatch/EndBatch.
func (n *Network) Batch(fn func() error) error {
	n.BeginBatch()
	defer n.EndBatch()
	return fn()
}

// Clear invalidates every inport and removes all processors.
func (n *Network) Clear() {
	var ids []string
	n.mu.Lock()
	for _, p := range n.sortedProcessors() {
		for _, in := range p.inports {
			in.Invalidate(domain.InvalidResources)
		}
		ids = append(ids, p.id)
	}
	n.mu.Unlock()

	_ = n.Batch(func() error {
		for _, id := range ids {
			_ = n.RemoveProcessor(id)
		}
		return nil
	})
}

// flush emits a pending evaluation request once no batch is open.
func (n *Network) flush() {
	n.mu.Lock()
	if n.batch > 0 || !n.pending {
		n.mu.Unlock()
		return
	}
	n.pending = false
	n.mu.Unlock()

	n.logger.Debug("evaluation requested")
	if n.onRequest != nil {
		n.onRequest()
	}
	if n.autoEvaluate {
		if _, err := n.Evaluate(context.Background()); err != nil {
			n.logger.Error("auto evaluation failed", "error", err)
		}
	}
}

func (n *Network) invalidationBegan(p *Processor) {
	n.invalidating = append(n.invalidating, p)
	n.logger.Debug("processor invalidated", "processor", p.id, "level", p.level.String())
	if n.hooks.OnInvalidated != nil {
		n.hooks.OnInvalidated(n.processorEvent(domain.EventInvalidated, p))
	}
}

func (n *Network) invalidationEnded(p *Processor) {
	n.forgetInvalidating(p)
	if len(n.invalidating) == 0 {
		n.pending = true
	}
}

func (n *Network) forgetInvalidating(p *Processor) {
	for i, cand := range n.invalidating {
		if cand == p {
			n.invalidating = append(n.invalidating[:i], n.invalidating[i+1:]...)
			return
		}
	}
}

func (n *Network) resolve(from, to domain.PortRef) (*port.Outport, *port.Inport, error) {
	out, err := n.outport(from)
	if err != nil {
		return nil, nil, err
	}
	in, err := n.inport(to)
	if err != nil {
		return nil, nil, err
	}
	return out, in, nil
}

func (n *Network) inport(ref domain.PortRef) (*port.Inport, error) {
	p, ok := n.processors[ref.Processor]
	if !ok {
		return nil, fmt.Errorf("inport %s: %w", ref, domain.ErrPortNotFound)
	}
	in := p.Inport(ref.Port)
	if in == nil {
		return nil, fmt.Errorf("inport %s: %w", ref, domain.ErrPortNotFound)
	}
	return in, nil
}

func (n *Network) outport(ref domain.PortRef) (*port.Outport, error) {
	p, ok := n.processors[ref.Processor]
	if !ok {
		return nil, fmt.Errorf("outport %s: %w", ref, domain.ErrPortNotFound)
	}
	out := p.Outport(ref.Port)
	if out == nil {
		return nil, fmt.Errorf("outport %s: %w", ref, domain.ErrPortNotFound)
	}
	return out, nil
}

func (n *Network) sortedProcessors() []*Processor {
	list := make([]*Processor, 0, len(n.processors))
	for _, p := range n.processors {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })
	return list
}

func (n *Network) sortedConnections() []domain.PortConnection {
	list := make([]domain.PortConnection, 0, len(n.connections))
	for c := range n.connections {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].String() < list[j].String() })
	return list
}

func (n *Network) processorEvent(t domain.EventType, p *Processor) *domain.ProcessorEvent {
	return &domain.ProcessorEvent{
		EventBase:   domain.EventBase{Timestamp: time.Now(), Type: t, Network: n.name},
		ProcessorID: p.id,
		ClassID:     p.class,
		Level:       p.level,
	}
}

func (n *Network) connectionEvent(t domain.EventType, c domain.PortConnection) *domain.ConnectionEvent {
	return &domain.ConnectionEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: t, Network: n.name},
		Connection: c,
	}
}

// Status returns the runtime snapshot of every processor, ordered by
// identifier.
func (n *Network) Status() []domain.ProcessorStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	list := n.sortedProcessors()
	out := make([]domain.ProcessorStatus, len(list))
	for i, p := range list {
		out[i] = p.Status()
	}
	return out
}

// Ports returns the port snapshots of a processor, inports first.
func (n *Network) Ports(id string) ([]domain.PortInfo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.processors[id]
	if !ok {
		return nil, fmt.Errorf("processor %q: %w", id, domain.ErrProcessorNotFound)
	}
	return p.Info(), nil
}
