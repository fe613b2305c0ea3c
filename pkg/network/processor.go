package network

import (
	"context"
	"fmt"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/port"
)

// ProcessFunc does the work of a processor during evaluation. It reads from
// the processor's inports and publishes on its outports with SetData.
// It runs while the network is locked and must not call back into it.
type ProcessFunc func(ctx context.Context, p *Processor) error

// EventFunc lets a processor consume a propagated event. Returning true
// marks the event as used; propagation continues either way.
type EventFunc func(ev domain.Event, via port.Port) bool

// invalidationObserver is notified when a processor leaves the valid state.
type invalidationObserver interface {
	invalidationBegan(p *Processor)
	invalidationEnded(p *Processor)
}

// Processor is a processing node with ordered inports and outports.
// A processor starts valid; adding it to a network invalidates it at
// InvalidResources so the first evaluation runs it.
type Processor struct {
	id       string
	class    string
	inports  []*port.Inport
	outports []*port.Outport
	level    domain.InvalidationLevel
	process  ProcessFunc
	onEvent  EventFunc
	metadata map[string]any
	observer invalidationObserver
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithClass sets the class identifier the processor was created from.
func WithClass(class string) ProcessorOption {
	return func(p *Processor) {
		p.class = class
	}
}

// WithProcessFunc sets the evaluation body.
func WithProcessFunc(fn ProcessFunc) ProcessorOption {
	return func(p *Processor) {
		p.process = fn
	}
}

// WithEventFunc sets the handler for propagated events.
func WithEventFunc(fn EventFunc) ProcessorOption {
	return func(p *Processor) {
		p.onEvent = fn
	}
}

// WithMetadata attaches free-form editor metadata.
func WithMetadata(md map[string]any) ProcessorOption {
	return func(p *Processor) {
		p.metadata = md
	}
}

// NewProcessor creates a processor without ports.
func NewProcessor(id string, opts ...ProcessorOption) (*Processor, error) {
	if id == "" {
		return nil, fmt.Errorf("processor: %w", domain.ErrEmptyIdentifier)
	}
	p := &Processor{id: id}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// MustProcessor is like NewProcessor but panics on error.
func MustProcessor(id string, opts ...ProcessorOption) *Processor {
	p, err := NewProcessor(id, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Identifier returns the unique identifier of the processor in its network.
func (p *Processor) Identifier() string { return p.id }

// ClassIdentifier returns the class the processor was created from.
func (p *Processor) ClassIdentifier() string { return p.class }

// Metadata returns the editor metadata. The map is shared, not copied.
func (p *Processor) Metadata() map[string]any { return p.metadata }

// AddInport creates an inport owned by the processor.
func (p *Processor) AddInport(id string, opts ...port.Option) (*port.Inport, error) {
	if p.Inport(id) != nil {
		return nil, fmt.Errorf("processor %q inport %q: %w", p.id, id, domain.ErrDuplicatePort)
	}
	in, err := port.NewInport(id, p, opts...)
	if err != nil {
		return nil, fmt.Errorf("processor %q: %w", p.id, err)
	}
	p.inports = append(p.inports, in)
	return in, nil
}

// AddOutport creates an outport owned by the processor.
func (p *Processor) AddOutport(id string, opts ...port.Option) (*port.Outport, error) {
	if p.Outport(id) != nil {
		return nil, fmt.Errorf("processor %q outport %q: %w", p.id, id, domain.ErrDuplicatePort)
	}
	out, err := port.NewOutport(id, p, opts...)
	if err != nil {
		return nil, fmt.Errorf("processor %q: %w", p.id, err)
	}
	p.outports = append(p.outports, out)
	return out, nil
}

// Inport returns the inport with the given identifier, or nil.
func (p *Processor) Inport(id string) *port.Inport {
	for _, in := range p.inports {
		if in.Identifier() == id {
			return in
		}
	}
	return nil
}

// Outport returns the outport with the given identifier, or nil.
func (p *Processor) Outport(id string) *port.Outport {
	for _, out := range p.outports {
		if out.Identifier() == id {
			return out
		}
	}
	return nil
}

// Inports returns the inports in declaration order.
func (p *Processor) Inports() []*port.Inport {
	return append([]*port.Inport(nil), p.inports...)
}

// Outports returns the outports in declaration order.
func (p *Processor) Outports() []*port.Outport {
	return append([]*port.Outport(nil), p.outports...)
}

// InvalidationLevel returns the high-water mark since the last evaluation.
func (p *Processor) InvalidationLevel() domain.InvalidationLevel { return p.level }

// IsValid reports whether the processor needs no evaluation.
func (p *Processor) IsValid() bool { return p.level == domain.Valid }

// Invalidate raises the processor's level. Only the transition away from
// Valid cascades: every outport is invalidated at InvalidOutput, so
// consumers are invalidated depth-first before Invalidate returns.
func (p *Processor) Invalidate(level domain.InvalidationLevel) {
	if level == domain.Valid {
		return
	}
	wasValid := p.IsValid()
	p.level = domain.Combine(p.level, level)
	if !wasValid {
		return
	}
	if p.observer != nil {
		p.observer.invalidationBegan(p)
	}
	for _, out := range p.outports {
		out.Invalidate(domain.InvalidOutput)
	}
	if p.observer != nil {
		p.observer.invalidationEnded(p)
	}
}

// IsReady reports whether every non-optional inport is ready.
func (p *Processor) IsReady() bool {
	for _, in := range p.inports {
		if in.IsOptional() {
			continue
		}
		if !in.IsReady() {
			return false
		}
	}
	return true
}

// IsSource reports whether no inport is connected.
func (p *Processor) IsSource() bool {
	for _, in := range p.inports {
		if in.IsConnected() {
			return false
		}
	}
	return true
}

// IsSink reports whether no outport is connected.
func (p *Processor) IsSink() bool {
	for _, out := range p.outports {
		if out.IsConnected() {
			return false
		}
	}
	return true
}

// Process fires change notifications on the changed inports and runs the
// ProcessFunc. It does not mark the processor valid.
func (p *Processor) Process(ctx context.Context) error {
	for _, in := range p.inports {
		in.CallOnChangeIfChanged()
	}
	if p.process == nil {
		return nil
	}
	return p.process(ctx, p)
}

// SetValid resets the processor after a successful evaluation: its inports
// are consumed and every outport announces fresh data downstream.
func (p *Processor) SetValid() {
	p.level = domain.Valid
	for _, in := range p.inports {
		in.SetValid(nil)
		in.SetChanged(false, nil)
	}
	for _, out := range p.outports {
		out.SetValid()
	}
}

// HandleEvent consumes an event arriving through one of the processor's
// ports and keeps it moving in the same direction.
func (p *Processor) HandleEvent(ev domain.Event, via port.Port) bool {
	return p.handleEvent(ev, via, make(map[*Processor]bool))
}

// PropagateEvent sends ev downstream through every outport and reports
// whether any consumer used it.
func (p *Processor) PropagateEvent(ev domain.Event) bool {
	visited := map[*Processor]bool{p: true}
	return p.forwardEvent(ev, true, visited)
}

// handleEvent visits each processor at most once per propagation. A
// processor that uses the event does not forward it.
func (p *Processor) handleEvent(ev domain.Event, via port.Port, visited map[*Processor]bool) bool {
	if visited[p] {
		return false
	}
	visited[p] = true
	if p.onEvent != nil && p.onEvent(ev, via) {
		return true
	}
	_, downstream := via.(*port.Inport)
	return p.forwardEvent(ev, downstream, visited)
}

func (p *Processor) forwardEvent(ev domain.Event, downstream bool, visited map[*Processor]bool) bool {
	used := false
	if downstream {
		for _, out := range p.outports {
			for _, in := range out.ConnectedInports() {
				if next, ok := in.Owner().(*Processor); ok {
					used = next.handleEvent(ev, in, visited) || used
				} else {
					used = out.PropagateEvent(ev, in) || used
				}
			}
		}
		return used
	}
	for _, in := range p.inports {
		for _, out := range in.ConnectedOutports() {
			if next, ok := out.Owner().(*Processor); ok {
				used = next.handleEvent(ev, out, visited) || used
			} else {
				used = in.PropagateEvent(ev, out) || used
			}
		}
	}
	return used
}

// connections lists every edge touching the processor.
func (p *Processor) connections() []domain.PortConnection {
	var conns []domain.PortConnection
	for _, in := range p.inports {
		for _, out := range in.ConnectedOutports() {
			conns = append(conns, domain.PortConnection{Outport: port.Ref(out), Inport: port.Ref(in)})
		}
	}
	for _, out := range p.outports {
		for _, in := range out.ConnectedInports() {
			conns = append(conns, domain.PortConnection{Outport: port.Ref(out), Inport: port.Ref(in)})
		}
	}
	return conns
}

// Info returns the diagnostic snapshot of every port, inports first.
func (p *Processor) Info() []domain.PortInfo {
	infos := make([]domain.PortInfo, 0, len(p.inports)+len(p.outports))
	for _, in := range p.inports {
		infos = append(infos, in.Info())
	}
	for _, out := range p.outports {
		infos = append(infos, out.Info())
	}
	return infos
}

// Status returns the runtime snapshot of the processor.
func (p *Processor) Status() domain.ProcessorStatus {
	return domain.ProcessorStatus{
		ID:       p.id,
		Class:    p.class,
		Level:    p.level,
		Ready:    p.IsReady(),
		Source:   p.IsSource(),
		Sink:     p.IsSink(),
		Inports:  len(p.inports),
		Outports: len(p.outports),
	}
}
