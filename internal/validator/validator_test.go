package validator

import (
	"testing"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/registry"
	"github.com/aretw0/portflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generic(id string, in, out []string) domain.ProcessorDefinition {
	p := domain.ProcessorDefinition{ID: id}
	for _, name := range in {
		p.Inports = append(p.Inports, domain.PortDefinition{ID: name})
	}
	for _, name := range out {
		p.Outports = append(p.Outports, domain.PortDefinition{ID: name})
	}
	return p
}

func TestValidate_Valid(t *testing.T) {
	def := &domain.NetworkDefinition{
		Processors: []domain.ProcessorDefinition{
			{ID: "src", Class: registry.ClassSource},
			generic("mid", []string{"in"}, []string{"out"}),
			{ID: "end", Class: registry.ClassSink},
		},
		Connections: []domain.ConnectionDefinition{
			{From: "src/out", To: "mid/in"},
			{From: "mid/out", To: "end/in"},
		},
	}
	assert.NoError(t, Validate(def, registry.Default()))
}

func TestValidate_DetectsCycle(t *testing.T) {
	def := &domain.NetworkDefinition{
		Processors: []domain.ProcessorDefinition{
			generic("a", []string{"in"}, []string{"out"}),
			generic("b", []string{"in"}, []string{"out"}),
			generic("c", []string{"in"}, []string{"out"}),
		},
		Connections: []domain.ConnectionDefinition{
			{From: "a/out", To: "b/in"},
			{From: "b/out", To: "c/in"},
			{From: "c/out", To: "a/in"},
		},
	}

	err := Validate(def, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCircularConnection)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
}

func TestValidate_AggregatesEveryProblem(t *testing.T) {
	def := &domain.NetworkDefinition{
		Processors: []domain.ProcessorDefinition{
			generic("a", nil, []string{"out", "out"}),
			generic("a", nil, nil),
			generic("b", []string{"in"}, nil),
			{ID: "x", Class: "warp-drive"},
			{ID: "", Class: "source"},
			{ID: "m", Metadata: map[string]any{"selected": "yes"}},
		},
		Connections: []domain.ConnectionDefinition{
			{From: "a/out", To: "b/in"},
			{From: "a/missing", To: "b/in"},
			{From: "bogus", To: "b/in"},
		},
	}

	err := Validate(def, registry.Default())
	require.Error(t, err)

	for _, sentinel := range []error{
		domain.ErrDuplicatePort,
		domain.ErrProcessorExists,
		domain.ErrUnknownClass,
		domain.ErrEmptyIdentifier,
		domain.ErrPortNotFound,
		domain.ErrInvalidPortRef,
	} {
		assert.ErrorIs(t, err, sentinel)
	}
	assert.Len(t, schema.Errors(err), 7)
}

func TestValidate_InportCapacity(t *testing.T) {
	two := 2
	def := &domain.NetworkDefinition{
		Processors: []domain.ProcessorDefinition{
			generic("a", nil, []string{"out"}),
			generic("b", nil, []string{"out"}),
			generic("c", nil, []string{"out"}),
			generic("single", []string{"in"}, nil),
			{ID: "multi", Inports: []domain.PortDefinition{{ID: "in", MaxConnections: &two}}},
		},
		Connections: []domain.ConnectionDefinition{
			{From: "a/out", To: "single/in"},
			{From: "b/out", To: "single/in"},
			{From: "a/out", To: "multi/in"},
			{From: "b/out", To: "multi/in"},
		},
	}

	err := Validate(def, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIncompatiblePorts)
	assert.Len(t, schema.Errors(err), 1, "only the single inport overflows")
}

func TestFindCycle(t *testing.T) {
	assert.Nil(t, findCycle(map[string][]string{"a": {"b"}, "b": {"c"}}))
	assert.Equal(t, []string{"a", "a"}, findCycle(map[string][]string{"a": {"a"}}))
}
