package network

import (
	"fmt"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/port"
)

// Factory creates processors by class. The registry package provides one.
type Factory interface {
	Create(class, id string) (*Processor, error)
}

// Definition exports the topology of the network. Processors are ordered
// by identifier, ports by declaration and connections by textual form.
func (n *Network) Definition() domain.NetworkDefinition {
	n.mu.Lock()
	defer n.mu.Unlock()

	def := domain.NetworkDefinition{Name: n.name}
	for _, p := range n.sortedProcessors() {
		pd := domain.ProcessorDefinition{ID: p.id, Class: p.class, Metadata: p.metadata}
		for _, in := range p.inports {
			pd.Inports = append(pd.Inports, portDefinition(in.Info()))
		}
		for _, out := range p.outports {
			pd.Outports = append(pd.Outports, portDefinition(out.Info()))
		}
		def.Processors = append(def.Processors, pd)
	}
	for _, c := range n.sortedConnections() {
		def.Connections = append(def.Connections, domain.ConnectionDefinition{
			From: c.Outport.String(),
			To:   c.Inport.String(),
		})
	}
	return def
}

func portDefinition(info domain.PortInfo) domain.PortDefinition {
	limit := info.MaxConnections
	return domain.PortDefinition{
		ID:             info.Identifier,
		Help:           info.Help,
		DataType:       info.DataType,
		Optional:       info.Optional,
		MaxConnections: &limit,
	}
}

// Build creates a network from a definition. Processors with a class are
// created by the factory; the rest are generic processors. Ports declared
// in the definition are added when the class did not already create them.
// Everything is built inside one batch, so at most one evaluation request
// is emitted.
func Build(def domain.NetworkDefinition, factory Factory, opts ...Option) (*Network, error) {
	if def.Name != "" {
		opts = append([]Option{WithName(def.Name)}, opts...)
	}
	n := New(opts...)

	err := n.Batch(func() error {
		for _, pd := range def.Processors {
			p, err := buildProcessor(pd, factory)
			if err != nil {
				return err
			}
			if err := n.AddProcessor(p); err != nil {
				return err
			}
		}
		for _, cd := range def.Connections {
			c, err := cd.Connection()
			if err != nil {
				return fmt.Errorf("connection %s -> %s: %w", cd.From, cd.To, err)
			}
			if err := n.AddConnection(c.Outport, c.Inport); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build network %q: %w", def.Name, err)
	}
	n.SetModified(false)
	return n, nil
}

func buildProcessor(pd domain.ProcessorDefinition, factory Factory) (*Processor, error) {
	var (
		p   *Processor
		err error
	)
	if pd.Class != "" && factory != nil {
		p, err = factory.Create(pd.Class, pd.ID)
	} else {
		p, err = NewProcessor(pd.ID, WithClass(pd.Class))
	}
	if err != nil {
		return nil, err
	}
	if pd.Metadata != nil {
		p.metadata = pd.Metadata
	}
	for _, decl := range pd.Inports {
		if p.Inport(decl.ID) != nil {
			continue
		}
		if _, err := p.AddInport(decl.ID, portOptions(decl)...); err != nil {
			return nil, err
		}
	}
	for _, decl := range pd.Outports {
		if p.Outport(decl.ID) != nil {
			continue
		}
		if _, err := p.AddOutport(decl.ID, portOptions(decl)...); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func portOptions(decl domain.PortDefinition) []port.Option {
	opts := []port.Option{
		port.WithHelp(decl.Help),
		port.WithDataType(decl.DataType),
		port.WithOptional(decl.Optional),
	}
	if decl.MaxConnections != nil {
		opts = append(opts, port.WithMaxConnections(*decl.MaxConnections))
	}
	return opts
}
