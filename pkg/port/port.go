package port

import (
	"github.com/aretw0/portflow/pkg/domain"
)

// Node is the processing node a port reports to. The port holds it as a
// plain back-reference handle and never owns it.
type Node interface {
	Identifier() string
	Invalidate(level domain.InvalidationLevel)
}

// EventHandler is implemented by nodes that consume propagated events.
// via is the port of the node through which the event arrived.
type EventHandler interface {
	HandleEvent(ev domain.Event, via Port) bool
}

// PredecessorFinder computes the full upstream closure of a node.
type PredecessorFinder interface {
	Predecessors(n Node) []Node
}

// Port is the behavior shared by inports and outports.
type Port interface {
	Identifier() string
	Help() string
	Owner() Node
	DataType() string
	IsConnected() bool
	IsReady() bool
	Info() domain.PortInfo
}

// base carries the immutable identity of a port.
type base struct {
	id       string
	help     string
	dataType string
	owner    Node
}

func (b *base) Identifier() string { return b.id }

func (b *base) Help() string { return b.help }

// Owner returns the node the port belongs to; nil for detached ports.
func (b *base) Owner() Node { return b.owner }

// DataType returns the declared payload type, empty when untyped.
func (b *base) DataType() string { return b.dataType }

func (b *base) ownerID() string {
	if b.owner == nil {
		return ""
	}
	return b.owner.Identifier()
}

// Ref returns the stable "processor/port" handle of the port.
func Ref(p Port) domain.PortRef {
	ref := domain.PortRef{Port: p.Identifier()}
	if owner := p.Owner(); owner != nil {
		ref.Processor = owner.Identifier()
	}
	return ref
}

func deliver(p Port, ev domain.Event) bool {
	if h, ok := p.Owner().(EventHandler); ok {
		return h.HandleEvent(ev, p)
	}
	return false
}

func typesCompatible(a, b string) bool {
	return a == "" || b == "" || a == b
}
