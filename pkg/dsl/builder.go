package dsl

import (
	"fmt"

	"github.com/aretw0/portflow/internal/validator"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/registry"
)

// Builder manages the network construction.
type Builder struct {
	name        string
	order       []string
	processors  map[string]*ProcessorBuilder
	connections []domain.ConnectionDefinition
}

// New creates a new network builder.
func New(name string) *Builder {
	return &Builder{
		name:       name,
		processors: make(map[string]*ProcessorBuilder),
	}
}

// Add creates a new processor in the network.
// If the processor already exists, it returns the existing builder.
func (b *Builder) Add(id string) *ProcessorBuilder {
	if pb, ok := b.processors[id]; ok {
		return pb
	}
	pb := &ProcessorBuilder{
		def:     domain.ProcessorDefinition{ID: id},
		builder: b,
	}
	b.processors[id] = pb
	b.order = append(b.order, id)
	return pb
}

// Connect adds an edge between two "processor/port" references.
func (b *Builder) Connect(from, to string) *Builder {
	b.connections = append(b.connections, domain.ConnectionDefinition{From: from, To: to})
	return b
}

// Definition returns the definition as built so far, without checking it.
// Processors keep the order they were added in.
func (b *Builder) Definition() *domain.NetworkDefinition {
	def := &domain.NetworkDefinition{
		Name:        b.name,
		Processors:  make([]domain.ProcessorDefinition, 0, len(b.order)),
		Connections: append([]domain.ConnectionDefinition(nil), b.connections...),
	}
	for _, id := range b.order {
		def.Processors = append(def.Processors, b.processors[id].Build())
	}
	return def
}

// Build validates the definition against the built-in classes.
func (b *Builder) Build() (*domain.NetworkDefinition, error) {
	return b.BuildWith(registry.Default())
}

// BuildWith validates the definition against the classes of reg.
func (b *Builder) BuildWith(reg *registry.Registry) (*domain.NetworkDefinition, error) {
	def := b.Definition()
	if err := validator.Validate(def, reg); err != nil {
		return nil, fmt.Errorf("failed to build network %q: %w", b.name, err)
	}
	return def, nil
}
