package portflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/portflow"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/network"
	"github.com/aretw0/portflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineYAML = `name: pipeline
processors:
  - id: src
    class: source
    metadata:
      value: 7
  - id: pass
    class: passthrough
  - id: snk
    class: sink
connections:
  - from: src/out
    to: pass/in
  - from: pass/out
    to: snk/in
`

func ref(processor, port string) domain.PortRef {
	return domain.PortRef{Processor: processor, Port: port}
}

func TestOpen_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pipelineYAML), 0o644))

	eng, err := portflow.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "pipeline", eng.Name)

	ctx := context.Background()
	evaluated, err := eng.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "pass", "snk"}, evaluated)

	info, err := eng.PortInfo(ctx, ref("snk", "in"))
	require.NoError(t, err)
	assert.True(t, info.Ready)
	assert.Equal(t, []string{"pass/out"}, info.ConnectedTo)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := portflow.Open(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNew_RejectsInvalidDefinitions(t *testing.T) {
	def := &domain.NetworkDefinition{
		Processors: []domain.ProcessorDefinition{
			{ID: "a", Class: "passthrough"},
			{ID: "b", Class: "passthrough"},
			{ID: "c", Class: "teleporter"},
		},
		Connections: []domain.ConnectionDefinition{
			{From: "a/out", To: "b/in"},
			{From: "b/out", To: "a/in"},
		},
	}
	_, err := portflow.New(def)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCircularConnection)
	assert.ErrorIs(t, err, domain.ErrUnknownClass)
}

func TestNew_NilDefinition(t *testing.T) {
	eng, err := portflow.New(nil)
	assert.Nil(t, eng)
	assert.ErrorIs(t, err, domain.ErrNilDefinition)
}

func TestEngine_CustomRegistry(t *testing.T) {
	reg := registry.Default()
	reg.Register("double", func(id string) (*network.Processor, error) {
		p, err := network.NewProcessor(id,
			network.WithClass("double"),
			network.WithProcessFunc(func(_ context.Context, p *network.Processor) error {
				v, _ := p.Inport("in").ConnectedOutport().Data().(int)
				p.Outport("out").SetData(v * 2)
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
	})

	eng, err := portflow.New(&domain.NetworkDefinition{
		Processors: []domain.ProcessorDefinition{
			{ID: "src", Class: "source", Metadata: map[string]any{"value": 21}},
			{ID: "x2", Class: "double"},
		},
		Connections: []domain.ConnectionDefinition{{From: "src/out", To: "x2/in"}},
	}, portflow.WithRegistry(reg))
	require.NoError(t, err)

	_, err = eng.Evaluate(context.Background())
	require.NoError(t, err)
	out, err := eng.Network().Outport(ref("x2", "out"))
	require.NoError(t, err)
	assert.Equal(t, 42, out.Data())
}

func TestEngine_ConnectAndDisconnect(t *testing.T) {
	eng, err := portflow.New(&domain.NetworkDefinition{
		Processors: []domain.ProcessorDefinition{
			{ID: "a", Class: "passthrough"},
			{ID: "b", Class: "passthrough"},
		},
	})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, eng.Connect(ctx, ref("a", "out"), ref("b", "in")))
	assert.ErrorIs(t, eng.Connect(ctx, ref("b", "out"), ref("a", "in")), domain.ErrCircularConnection)

	def, err := eng.Definition(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnectionDefinition{{From: "a/out", To: "b/in"}}, def.Connections)

	require.NoError(t, eng.Disconnect(ctx, ref("a", "out"), ref("b", "in")))
	circular, err := eng.CheckCircular(ctx, ref("b", "out"), ref("a", "in"))
	require.NoError(t, err)
	assert.False(t, circular)
}

func TestEngine_HonorsCancelledContext(t *testing.T) {
	eng, err := portflow.New(&domain.NetworkDefinition{
		Processors: []domain.ProcessorDefinition{{ID: "src", Class: "source"}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Status(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, eng.Connect(ctx, ref("src", "out"), ref("src", "in")), context.Canceled)
	_, err = eng.Evaluate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_HooksAndAutoEvaluate(t *testing.T) {
	var added, evaluated []string
	var requests int
	eng, err := portflow.New(&domain.NetworkDefinition{
		Name: "auto",
		Processors: []domain.ProcessorDefinition{
			{ID: "src", Class: "source", Metadata: map[string]any{"value": 1}},
			{ID: "snk", Class: "sink"},
		},
		Connections: []domain.ConnectionDefinition{{From: "src/out", To: "snk/in"}},
	},
		portflow.WithLifecycleHooks(domain.LifecycleHooks{
			OnProcessorAdded: func(e *domain.ProcessorEvent) { added = append(added, e.ProcessorID) },
		}),
		portflow.WithLifecycleHooks(domain.LifecycleHooks{
			OnEvaluated: func(e *domain.EvaluationEvent) { evaluated = append(evaluated, e.Evaluated...) },
		}),
		portflow.WithEvaluationRequest(func() { requests++ }),
		portflow.WithAutoEvaluate(true),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"src", "snk"}, added)
	assert.Equal(t, 1, requests, "building emits one coalesced request")
	assert.Equal(t, []string{"src", "snk"}, evaluated)

	status, err := eng.Status(context.Background())
	require.NoError(t, err)
	for _, st := range status {
		assert.True(t, st.Level.IsValid(), st.ID)
	}

	require.NoError(t, eng.Publish(context.Background(), ref("src", "out"), 2))
	assert.Equal(t, 2, requests)
	assert.Equal(t, []string{"src", "snk", "snk"}, evaluated, "the source keeps the published data")
}

func TestEngine_PublishReachesConsumersOfBuiltinSource(t *testing.T) {
	ctx := context.Background()
	eng, err := portflow.New(&domain.NetworkDefinition{
		Name: "publish",
		Processors: []domain.ProcessorDefinition{
			{ID: "src", Class: "source"},
			{ID: "mid", Class: "passthrough"},
			{ID: "snk", Class: "sink"},
		},
		Connections: []domain.ConnectionDefinition{
			{From: "src/out", To: "mid/in"},
			{From: "mid/out", To: "snk/in"},
		},
	})
	require.NoError(t, err)
	_, err = eng.Evaluate(ctx)
	require.NoError(t, err)

	mid, err := eng.Network().Outport(ref("mid", "out"))
	require.NoError(t, err)
	assert.Equal(t, "src", mid.Data())

	require.NoError(t, eng.Publish(ctx, ref("src", "out"), 42))
	evaluated, err := eng.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "snk"}, evaluated)
	assert.Equal(t, 42, mid.Data())

	ports, err := eng.Ports(ctx, "mid")
	require.NoError(t, err)
	for _, info := range ports {
		assert.Equal(t, domain.Valid, info.Level, info.Identifier)
	}
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, portflow.Version)
}
