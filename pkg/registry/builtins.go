package registry

import (
	"context"

	"github.com/aretw0/portflow/pkg/network"
	"github.com/aretw0/portflow/pkg/port"
)

// Built-in class names.
const (
	ClassSource      = "source"
	ClassPassthrough = "passthrough"
	ClassSink        = "sink"
	ClassMerge       = "merge"
)

// RegisterBuiltins registers the source, passthrough, sink and merge classes.
func RegisterBuiltins(r *Registry) {
	r.Register(ClassSource, NewSource)
	r.Register(ClassPassthrough, NewPassthrough)
	r.Register(ClassSink, NewSink)
	r.Register(ClassMerge, NewMerge)
}

// NewSource creates a processor with a single outport "out". On evaluation
// it publishes its "value" metadata, or its identifier when unset.
func NewSource(id string) (*network.Processor, error) {
	p, err := network.NewProcessor(id,
		network.WithClass(ClassSource),
		network.WithProcessFunc(func(_ context.Context, p *network.Processor) error {
			value, ok := p.Metadata()["value"]
			if !ok {
				value = p.Identifier()
			}
			p.Outport("out").SetData(value)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	if _, err := p.AddOutport("out", port.WithHelp("emitted value")); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPassthrough creates a processor copying inport "in" to outport "out".
func NewPassthrough(id string) (*network.Processor, error) {
	p, err := network.NewProcessor(id,
		network.WithClass(ClassPassthrough),
		network.WithProcessFunc(func(_ context.Context, p *network.Processor) error {
			if src := p.Inport("in").ConnectedOutport(); src != nil {
				p.Outport("out").SetData(src.Data())
			}
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	if _, err := p.AddInport("in"); err != nil {
		return nil, err
	}
	if _, err := p.AddOutport("out"); err != nil {
		return nil, err
	}
	return p, nil
}

// NewSink creates a processor with a single inport "in" that consumes
// without producing.
func NewSink(id string) (*network.Processor, error) {
	p, err := network.NewProcessor(id, network.WithClass(ClassSink))
	if err != nil {
		return nil, err
	}
	if _, err := p.AddInport("in"); err != nil {
		return nil, err
	}
	return p, nil
}

// NewMerge creates a processor with a multi-inport "in" collecting the data
// of every connected outport, in connection order, into outport "out".
func NewMerge(id string) (*network.Processor, error) {
	p, err := network.NewProcessor(id,
		network.WithClass(ClassMerge),
		network.WithProcessFunc(func(_ context.Context, p *network.Processor) error {
			var merged []any
			for _, src := range p.Inport("in").ConnectedOutports() {
				merged = append(merged, src.Data())
			}
			p.Outport("out").SetData(merged)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	if _, err := p.AddInport("in", port.WithMaxConnections(0)); err != nil {
		return nil, err
	}
	if _, err := p.AddOutport("out"); err != nil {
		return nil, err
	}
	return p, nil
}
