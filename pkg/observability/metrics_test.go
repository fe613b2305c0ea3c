package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/network"
	"github.com/aretw0/portflow/pkg/observability"
	"github.com/aretw0/portflow/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, m *observability.Metrics) *network.Network {
	t.Helper()
	net, err := network.Build(domain.NetworkDefinition{
		Name: "demo",
		Processors: []domain.ProcessorDefinition{
			{ID: "src", Class: registry.ClassSource},
			{ID: "snk", Class: registry.ClassSink},
		},
		Connections: []domain.ConnectionDefinition{{From: "src/out", To: "snk/in"}},
	}, registry.Default(), network.WithHooks(m.Hooks()))
	require.NoError(t, err)
	return net
}

func TestMetrics_TopologyGauges(t *testing.T) {
	m := observability.NewMetrics(nil)
	net := build(t, m)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Processors.WithLabelValues("demo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("demo")))

	require.NoError(t, net.RemoveProcessor("snk"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Processors.WithLabelValues("demo")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connections.WithLabelValues("demo")))
}

func TestMetrics_InvalidationsByLevel(t *testing.T) {
	m := observability.NewMetrics(nil)
	net := build(t, m)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Invalidations.WithLabelValues("demo", "invalid_resources")))

	_, err := net.Evaluate(context.Background())
	require.NoError(t, err)
	require.NoError(t, net.Invalidate("src", domain.InvalidOutput))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Invalidations.WithLabelValues("demo", "invalid_output")),
		"the source and its consumer both enter the wave")
}

func TestMetrics_Evaluations(t *testing.T) {
	m := observability.NewMetrics(nil)
	net := build(t, m)

	evaluated, err := net.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "snk"}, evaluated)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("demo", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluatedProcessor.WithLabelValues("demo", "src")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluatedProcessor.WithLabelValues("demo", "snk")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.EvaluationDuration))
}

func TestMetrics_FailedEvaluation(t *testing.T) {
	m := observability.NewMetrics(nil)
	net := network.New(network.WithName("broken"), network.WithHooks(m.Hooks()))
	p := network.MustProcessor("p", network.WithProcessFunc(func(context.Context, *network.Processor) error {
		return errors.New("boom")
	}))
	require.NoError(t, net.AddProcessor(p))

	_, err := net.Evaluate(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("broken", "error")))
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	build(t, m)

	count, err := testutil.GatherAndCount(reg, "portflow_connections", "portflow_processors")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Panics(t, func() { observability.NewMetrics(reg) }, "collectors register once per registry")
}
