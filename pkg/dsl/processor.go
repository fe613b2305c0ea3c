package dsl

import "github.com/aretw0/portflow/pkg/domain"

// ProcessorBuilder provides a fluent API for configuring a processor.
type ProcessorBuilder struct {
	def     domain.ProcessorDefinition
	builder *Builder
}

// PortOption configures a declared port.
type PortOption func(*domain.PortDefinition)

// Optional marks an inport the processor can run without.
func Optional() PortOption {
	return func(p *domain.PortDefinition) { p.Optional = true }
}

// MaxConnections caps the inbound connections of an inport. Zero means
// unbounded.
func MaxConnections(n int) PortOption {
	return func(p *domain.PortDefinition) { p.MaxConnections = &n }
}

// Help attaches a description to the port.
func Help(text string) PortOption {
	return func(p *domain.PortDefinition) { p.Help = text }
}

// DataType names the kind of data the port carries.
func DataType(name string) PortOption {
	return func(p *domain.PortDefinition) { p.DataType = name }
}

// Class sets the registry class the processor is created from.
func (p *ProcessorBuilder) Class(class string) *ProcessorBuilder {
	p.def.Class = class
	return p
}

// Inport declares an input port.
func (p *ProcessorBuilder) Inport(id string, opts ...PortOption) *ProcessorBuilder {
	p.def.Inports = append(p.def.Inports, port(id, opts))
	return p
}

// Outport declares an output port.
func (p *ProcessorBuilder) Outport(id string, opts ...PortOption) *ProcessorBuilder {
	p.def.Outports = append(p.def.Outports, port(id, opts))
	return p
}

// Meta adds a metadata value to the processor.
func (p *ProcessorBuilder) Meta(key string, value any) *ProcessorBuilder {
	if p.def.Metadata == nil {
		p.def.Metadata = make(map[string]any)
	}
	p.def.Metadata[key] = value
	return p
}

// To connects the outport of this processor to target ("processor/port").
func (p *ProcessorBuilder) To(outport, target string) *ProcessorBuilder {
	p.builder.Connect(domain.PortRef{Processor: p.def.ID, Port: outport}.String(), target)
	return p
}

// Build returns the underlying definition.
// This is primarily used by the Builder, but exposed for advanced usage.
func (p *ProcessorBuilder) Build() domain.ProcessorDefinition {
	def := p.def
	def.Inports = append([]domain.PortDefinition(nil), p.def.Inports...)
	def.Outports = append([]domain.PortDefinition(nil), p.def.Outports...)
	return def
}

func port(id string, opts []PortOption) domain.PortDefinition {
	pd := domain.PortDefinition{ID: id}
	for _, opt := range opts {
		opt(&pd)
	}
	return pd
}
