package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine_TakesMaximum(t *testing.T) {
	levels := []domain.InvalidationLevel{domain.Valid, domain.InvalidOutput, domain.InvalidResources}
	for _, a := range levels {
		for _, b := range levels {
			got := domain.Combine(a, b)
			assert.GreaterOrEqual(t, got, a)
			assert.GreaterOrEqual(t, got, b)
			assert.Equal(t, got, domain.Combine(b, a), "combine must be commutative")
		}
	}
}

func TestCombine_Monotone(t *testing.T) {
	sequence := []domain.InvalidationLevel{
		domain.InvalidOutput, domain.Valid, domain.InvalidResources, domain.InvalidOutput, domain.Valid,
	}
	current := domain.Valid
	for _, l := range sequence {
		next := domain.Combine(current, l)
		assert.GreaterOrEqual(t, next, current)
		current = next
	}
	assert.Equal(t, domain.InvalidResources, current)
}

func TestInvalidationLevel_TextRoundTrip(t *testing.T) {
	type payload struct {
		Level domain.InvalidationLevel `json:"level"`
	}

	data, err := json.Marshal(payload{Level: domain.InvalidResources})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"invalid_resources"}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"level":"Invalid_Output"}`), &decoded))
	assert.Equal(t, domain.InvalidOutput, decoded.Level)
}

func TestParseInvalidationLevel_Unknown(t *testing.T) {
	_, err := domain.ParseInvalidationLevel("stale")
	assert.ErrorIs(t, err, domain.ErrUnknownInvalidationLevel)

	_, err = domain.InvalidationLevel(42).MarshalText()
	assert.ErrorIs(t, err, domain.ErrUnknownInvalidationLevel)
	assert.Equal(t, "level(42)", domain.InvalidationLevel(42).String())
}

func TestParsePortRef(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.PortRef
		wantErr bool
	}{
		{in: "p1/out", want: domain.PortRef{Processor: "p1", Port: "out"}},
		{in: " p2/in ", want: domain.PortRef{Processor: "p2", Port: "in"}},
		{in: "p1", wantErr: true},
		{in: "p1/", wantErr: true},
		{in: "/out", wantErr: true},
		{in: "a/b/c", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParsePortRef(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidPortRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Processor+"/"+tt.want.Port, got.String())
		})
	}
}

func TestNetworkDefinition_CloneIsDeep(t *testing.T) {
	limit := 2
	def := &domain.NetworkDefinition{
		Name: "demo",
		Processors: []domain.ProcessorDefinition{{
			ID:       "p1",
			Inports:  []domain.PortDefinition{{ID: "in", MaxConnections: &limit}},
			Metadata: map[string]any{"selected": true},
		}},
		Connections: []domain.ConnectionDefinition{{From: "p0/out", To: "p1/in"}},
	}

	clone := def.Clone()
	*clone.Processors[0].Inports[0].MaxConnections = 5
	clone.Processors[0].Metadata["selected"] = false
	clone.Connections[0].From = "x/y"

	assert.Equal(t, 2, *def.Processors[0].Inports[0].MaxConnections)
	assert.Equal(t, true, def.Processors[0].Metadata["selected"])
	assert.Equal(t, "p0/out", def.Connections[0].From)
	assert.NotNil(t, def.Processor("p1"))
	assert.Nil(t, def.Processor("nope"))
}

func TestChainHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnInvalidated: func(e *domain.ProcessorEvent) { calls = append(calls, "a:"+e.ProcessorID) }}
	b := domain.LifecycleHooks{OnInvalidated: func(e *domain.ProcessorEvent) { calls = append(calls, "b:"+e.ProcessorID) }}

	chained := domain.ChainHooks(a, domain.LifecycleHooks{}, b)
	chained.OnInvalidated(&domain.ProcessorEvent{ProcessorID: "p"})
	chained.OnEvaluated(&domain.EvaluationEvent{})

	assert.Equal(t, []string{"a:p", "b:p"}, calls)
}
