package port

import (
	"fmt"

	"github.com/aretw0/portflow/pkg/domain"
)

// State is the connection state of an inport.
type State int

const (
	Unconnected State = iota
	ConnectedNotReady
	ConnectedReady
)

func (s State) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case ConnectedNotReady:
		return "connected_not_ready"
	case ConnectedReady:
		return "connected_ready"
	default:
		return "unknown"
	}
}

// ConnectionFunc is called when an inport gains or loses an outport.
type ConnectionFunc func(in *Inport, out *Outport)

// InportFunc is called for change and invalidation notifications.
type InportFunc func(in *Inport)

// Inport consumes data from one outport, or several for multi-inports.
// It drives edge creation: ConnectTo and DisconnectFrom update both sides.
//
// Readiness and optionality are memoized and recomputed eagerly on every
// topology change and whenever a connected outport's data changes, so a
// cached value is never observed stale.
type Inport struct {
	base
	maxConnections int
	connected      []*Outport
	changedSources []*Outport

	ready       bool
	readyFn     func(*Inport) bool
	optional    bool
	optionalFn  func(*Inport) bool
	lastInvalid domain.InvalidationLevel

	onConnect    listeners[ConnectionFunc]
	onDisconnect listeners[ConnectionFunc]
	onChange     listeners[InportFunc]
	onInvalid    listeners[InportFunc]
}

// NewInport creates an inport owned by node. owner may be nil for a
// detached port. Inports accept a single connection unless
// WithMaxConnections says otherwise.
func NewInport(id string, owner Node, opts ...Option) (*Inport, error) {
	if id == "" {
		return nil, fmt.Errorf("inport: %w", domain.ErrEmptyIdentifier)
	}
	cfg := newConfig(opts)
	in := &Inport{
		base:           base{id: id, help: cfg.help, dataType: cfg.dataType, owner: owner},
		maxConnections: 1,
		readyFn:        DefaultReady,
	}
	if cfg.maxConnections != nil {
		in.maxConnections = *cfg.maxConnections
	}
	if cfg.inportReady != nil {
		in.readyFn = cfg.inportReady
	}
	optional := cfg.optional
	in.optionalFn = func(*Inport) bool { return optional }
	in.UpdateReady()
	in.UpdateOptional()
	return in, nil
}

// DefaultReady is the default readiness rule: connected and every
// connected outport ready.
func DefaultReady(in *Inport) bool {
	if !in.IsConnected() {
		return false
	}
	for _, o := range in.connected {
		if !o.IsReady() {
			return false
		}
	}
	return true
}

// ConnectTo attaches the outport. Connecting an already connected pair is
// a no-op that fires no callbacks.
func (in *Inport) ConnectTo(o *Outport) {
	if o == nil || in.IsConnectedTo(o) {
		return
	}
	in.connected = append(in.connected, o)
	o.connectTo(in)
	in.SetChanged(true, o)
	in.UpdateReady()
	in.onConnect.each(func(fn ConnectionFunc) { fn(in, o) })
	in.Invalidate(domain.InvalidOutput)
}

// DisconnectFrom detaches the outport. Only acts when currently connected.
// The outport leaves the changed-source set with the edge.
func (in *Inport) DisconnectFrom(o *Outport) {
	i := indexOfOutport(in.connected, o)
	if i < 0 {
		return
	}
	in.connected = append(in.connected[:i], in.connected[i+1:]...)
	o.disconnectFrom(in)
	in.SetChanged(false, o)
	in.UpdateReady()
	in.onDisconnect.each(func(fn ConnectionFunc) { fn(in, o) })
	in.Invalidate(domain.InvalidOutput)
}

// DisconnectAll severs every edge. Owners must call it before discarding
// the port.
func (in *Inport) DisconnectAll() {
	for _, o := range in.ConnectedOutports() {
		in.DisconnectFrom(o)
	}
}

// IsConnected reports whether any outport is attached.
func (in *Inport) IsConnected() bool {
	return len(in.connected) > 0
}

// IsConnectedTo reports whether o feeds this inport.
func (in *Inport) IsConnectedTo(o *Outport) bool {
	return indexOfOutport(in.connected, o) >= 0
}

// ConnectedOutport returns the highest-priority (first connected) outport, or nil.
func (in *Inport) ConnectedOutport() *Outport {
	if len(in.connected) == 0 {
		return nil
	}
	return in.connected[0]
}

// ConnectedOutports returns the attached outports in insertion order.
func (in *Inport) ConnectedOutports() []*Outport {
	return append([]*Outport(nil), in.connected...)
}

// MaxConnections returns the connection cap; 0 means unbounded.
func (in *Inport) MaxConnections() int {
	return in.maxConnections
}

// CanConnectTo reports whether an edge from o is allowed by capacity and
// data type. Ports of the same owner never connect. Longer cycles are left
// to CircularConnection.
func (in *Inport) CanConnectTo(o *Outport) bool {
	if o == nil {
		return false
	}
	if in.owner != nil && in.owner == o.owner {
		return false
	}
	if in.IsConnectedTo(o) {
		return true
	}
	if in.maxConnections > 0 && len(in.connected) >= in.maxConnections {
		return false
	}
	if !o.hasCapacity() {
		return false
	}
	return typesCompatible(in.dataType, o.dataType)
}

// State returns the connection state derived from topology and readiness.
func (in *Inport) State() State {
	switch {
	case !in.IsConnected():
		return Unconnected
	case in.ready:
		return ConnectedReady
	default:
		return ConnectedNotReady
	}
}

// Invalidate raises the port's invalidation level. Only the first move
// away from Valid fires OnInvalid. The raw level is always forwarded to
// the owner.
// The level is raised before subscribers run, so they observe it and a
// nested Invalidate does not fire them again.
func (in *Inport) Invalidate(level domain.InvalidationLevel) {
	prev := in.lastInvalid
	in.lastInvalid = domain.Combine(prev, level)
	if prev == domain.Valid && level >= domain.InvalidOutput {
		in.onInvalid.each(func(fn InportFunc) { fn(in) })
	}
	if in.owner != nil {
		in.owner.Invalidate(level)
	}
}

// InvalidationLevel returns the high-water mark since the last SetValid.
func (in *Inport) InvalidationLevel() domain.InvalidationLevel {
	return in.lastInvalid
}

// SetValid resets the port and records source as having delivered new data.
func (in *Inport) SetValid(source *Outport) {
	in.lastInvalid = domain.Valid
	in.SetChanged(true, source)
}

// IsChanged reports whether any upstream source marked a change since the
// last consumption.
func (in *Inport) IsChanged() bool {
	return len(in.changedSources) > 0
}

// ChangedOutports returns the sources that contributed a change.
func (in *Inport) ChangedOutports() []*Outport {
	return append([]*Outport(nil), in.changedSources...)
}

// SetChanged updates the changed-source set. Clearing with a nil source
// resets every source; clearing with a source removes only that one.
// Marking requires a source and has set semantics.
func (in *Inport) SetChanged(changed bool, source *Outport) {
	switch {
	case !changed && source == nil:
		in.changedSources = nil
	case !changed:
		if i := indexOfOutport(in.changedSources, source); i >= 0 {
			in.changedSources = append(in.changedSources[:i], in.changedSources[i+1:]...)
		}
	case source != nil:
		if indexOfOutport(in.changedSources, source) < 0 {
			in.changedSources = append(in.changedSources, source)
		}
	}
}

// CallOnChangeIfChanged fires OnChange subscribers only when the port is changed.
func (in *Inport) CallOnChangeIfChanged() {
	if in.IsChanged() {
		in.onChange.each(func(fn InportFunc) { fn(in) })
	}
}

// IsReady returns the memoized readiness.
func (in *Inport) IsReady() bool {
	return in.ready
}

// UpdateReady recomputes the memoized readiness and reports whether it changed.
func (in *Inport) UpdateReady() bool {
	next := in.readyFn(in)
	changed := next != in.ready
	in.ready = next
	return changed
}

// SetReadyPredicate replaces the readiness rule and recomputes it.
// A nil predicate restores DefaultReady.
func (in *Inport) SetReadyPredicate(fn func(*Inport) bool) {
	if fn == nil {
		fn = DefaultReady
	}
	in.readyFn = fn
	in.UpdateReady()
}

// IsOptional returns the memoized optional flag. Processors exclude
// optional inports when deciding whether they can run.
func (in *Inport) IsOptional() bool {
	return in.optional
}

// UpdateOptional recomputes the memoized optional flag.
func (in *Inport) UpdateOptional() bool {
	next := in.optionalFn(in)
	changed := next != in.optional
	in.optional = next
	return changed
}

// SetOptional fixes the optional flag to a constant.
func (in *Inport) SetOptional(optional bool) {
	in.SetOptionalPredicate(func(*Inport) bool { return optional })
}

// SetOptionalPredicate replaces the optional rule and recomputes it.
func (in *Inport) SetOptionalPredicate(fn func(*Inport) bool) {
	if fn == nil {
		fn = func(*Inport) bool { return false }
	}
	in.optionalFn = fn
	in.UpdateOptional()
}

// CircularConnection reports whether an edge from candidate into this
// inport would close a cycle: the inport's owner is the candidate's owner
// or one of its (transitive) predecessors.
func (in *Inport) CircularConnection(candidate Port, g PredecessorFinder) bool {
	if candidate == nil || in.owner == nil {
		return false
	}
	source := candidate.Owner()
	if source == nil {
		return false
	}
	if source == in.owner {
		return true
	}
	if g == nil {
		return false
	}
	for _, p := range g.Predecessors(source) {
		if p == in.owner {
			return true
		}
	}
	return false
}

// PropagateEvent forwards ev upstream to target, or to every connected
// outport when target is nil, and reports whether any consumer used it.
func (in *Inport) PropagateEvent(ev domain.Event, target *Outport) bool {
	if target != nil {
		if !in.IsConnectedTo(target) {
			return false
		}
		return deliver(target, ev)
	}
	used := false
	for _, o := range in.ConnectedOutports() {
		used = deliver(o, ev) || used
	}
	return used
}

// OnConnect subscribes to new connections.
func (in *Inport) OnConnect(fn ConnectionFunc) *Subscription {
	return in.onConnect.add(fn)
}

// OnDisconnect subscribes to removed connections.
func (in *Inport) OnDisconnect(fn ConnectionFunc) *Subscription {
	return in.onDisconnect.add(fn)
}

// OnChange subscribes to CallOnChangeIfChanged notifications.
func (in *Inport) OnChange(fn InportFunc) *Subscription {
	return in.onChange.add(fn)
}

// OnInvalid subscribes to the Valid -> invalid transition.
func (in *Inport) OnInvalid(fn InportFunc) *Subscription {
	return in.onInvalid.add(fn)
}

// Info returns a diagnostic snapshot of the port.
func (in *Inport) Info() domain.PortInfo {
	info := domain.PortInfo{
		Identifier:     in.id,
		Processor:      in.ownerID(),
		ClassName:      "Inport",
		DataType:       in.dataType,
		Direction:      domain.DirectionIn,
		Help:           in.help,
		Connected:      in.IsConnected(),
		Ready:          in.ready,
		Optional:       in.optional,
		Changed:        in.IsChanged(),
		Connections:    len(in.connected),
		MaxConnections: in.maxConnections,
		Level:          in.lastInvalid,
	}
	for _, o := range in.connected {
		info.ConnectedTo = append(info.ConnectedTo, Ref(o).String())
	}
	return info
}

func indexOfOutport(list []*Outport, o *Outport) int {
	for i, candidate := range list {
		if candidate == o {
			return i
		}
	}
	return -1
}
