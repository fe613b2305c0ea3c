package port

import (
	"fmt"

	"github.com/aretw0/portflow/pkg/domain"
)

// Outport produces data and fans out to any number of inports.
// Edges are established by the inport; the outport only records the
// reverse reference.
type Outport struct {
	base
	maxConnections int
	connected      []*Inport

	data    any
	hasData bool
	readyFn func(*Outport) bool
}

// NewOutport creates an outport owned by node. owner may be nil for a
// detached port.
func NewOutport(id string, owner Node, opts ...Option) (*Outport, error) {
	if id == "" {
		return nil, fmt.Errorf("outport: %w", domain.ErrEmptyIdentifier)
	}
	cfg := newConfig(opts)
	o := &Outport{
		base: base{id: id, help: cfg.help, dataType: cfg.dataType, owner: owner},
	}
	if cfg.maxConnections != nil {
		o.maxConnections = *cfg.maxConnections
	}
	o.readyFn = cfg.outportReady
	if o.readyFn == nil {
		o.readyFn = func(o *Outport) bool { return o.hasData }
	}
	return o, nil
}

// ConnectedInports returns the inports fed by this outport, in connection order.
func (o *Outport) ConnectedInports() []*Inport {
	return append([]*Inport(nil), o.connected...)
}

// IsConnected reports whether at least one inport is connected.
func (o *Outport) IsConnected() bool {
	return len(o.connected) > 0
}

// IsConnectedTo reports whether the given inport is fed by this outport.
func (o *Outport) IsConnectedTo(in *Inport) bool {
	return indexOfInport(o.connected, in) >= 0
}

// MaxConnections returns the connection cap; 0 means unbounded.
func (o *Outport) MaxConnections() int {
	return o.maxConnections
}

// IsReady reports whether the outport has data to offer.
func (o *Outport) IsReady() bool {
	return o.readyFn(o)
}

// SetData publishes a payload and refreshes the readiness of every
// connected inport.
func (o *Outport) SetData(data any) {
	o.data = data
	o.hasData = true
	o.notifyReady()
}

// ClearData drops the payload and refreshes downstream readiness.
func (o *Outport) ClearData() {
	o.data = nil
	o.hasData = false
	o.notifyReady()
}

// Data returns the current payload.
func (o *Outport) Data() any {
	return o.data
}

// HasData reports whether a payload has been published.
func (o *Outport) HasData() bool {
	return o.hasData
}

// Invalidate forwards an invalidation level to every connected inport.
func (o *Outport) Invalidate(level domain.InvalidationLevel) {
	for _, in := range o.ConnectedInports() {
		in.Invalidate(level)
	}
}

// SetValid announces fresh data: every connected inport is reset to Valid
// and marked changed with this outport as source.
func (o *Outport) SetValid() {
	for _, in := range o.ConnectedInports() {
		in.SetValid(o)
	}
}

// PropagateEvent forwards ev to target, or to every connected inport when
// target is nil. It reports whether any consumer used the event.
func (o *Outport) PropagateEvent(ev domain.Event, target *Inport) bool {
	if target != nil {
		if !o.IsConnectedTo(target) {
			return false
		}
		return deliver(target, ev)
	}
	used := false
	for _, in := range o.ConnectedInports() {
		used = deliver(in, ev) || used
	}
	return used
}

// DisconnectAll severs every edge of the outport. Owners must call it
// before discarding the port.
func (o *Outport) DisconnectAll() {
	for _, in := range o.ConnectedInports() {
		in.DisconnectFrom(o)
	}
}

// Info returns a diagnostic snapshot of the port.
func (o *Outport) Info() domain.PortInfo {
	info := domain.PortInfo{
		Identifier:     o.id,
		Processor:      o.ownerID(),
		ClassName:      "Outport",
		DataType:       o.dataType,
		Direction:      domain.DirectionOut,
		Help:           o.help,
		Connected:      o.IsConnected(),
		Ready:          o.IsReady(),
		Connections:    len(o.connected),
		MaxConnections: o.maxConnections,
	}
	for _, in := range o.connected {
		info.ConnectedTo = append(info.ConnectedTo, Ref(in).String())
	}
	return info
}

func (o *Outport) hasCapacity() bool {
	return o.maxConnections == 0 || len(o.connected) < o.maxConnections
}

// connectTo records the reverse edge. Idempotent.
func (o *Outport) connectTo(in *Inport) {
	if !o.IsConnectedTo(in) {
		o.connected = append(o.connected, in)
	}
}

// disconnectFrom drops the reverse edge. Idempotent.
func (o *Outport) disconnectFrom(in *Inport) {
	if i := indexOfInport(o.connected, in); i >= 0 {
		o.connected = append(o.connected[:i], o.connected[i+1:]...)
	}
}

func (o *Outport) notifyReady() {
	for _, in := range o.connected {
		in.UpdateReady()
	}
}

func indexOfInport(list []*Inport, in *Inport) int {
	for i, candidate := range list {
		if candidate == in {
			return i
		}
	}
	return -1
}
