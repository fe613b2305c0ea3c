package events_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/portflow"
	"github.com/aretw0/portflow/internal/logging"
	"github.com/aretw0/portflow/pkg/adapters/events"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	envs []events.Envelope
}

func (r *recorder) handle(env events.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.envs))
	for _, e := range r.envs {
		out = append(out, e.Type)
	}
	return out
}

func TestBus_PublishesLifecycleEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := events.NewGoChannel(logging.NewNop())
	defer pubsub.Close()

	rec := &recorder{}
	require.NoError(t, events.Subscribe(ctx, pubsub, rec.handle))

	bus := events.NewBus(pubsub)
	eng, err := portflow.New(&domain.NetworkDefinition{
		Name: "demo",
		Processors: []domain.ProcessorDefinition{
			{ID: "src", Class: "source", Metadata: map[string]any{"value": 1}},
			{ID: "snk", Class: "sink"},
		},
		Connections: []domain.ConnectionDefinition{{From: "src/out", To: "snk/in"}},
	}, portflow.WithLifecycleHooks(bus.Hooks()))
	require.NoError(t, err)
	_, err = eng.Evaluate(ctx)
	require.NoError(t, err)

	// Publishing blocks until the subscriber acked, so every event is in.
	got := rec.types()
	assert.Equal(t, domain.EventProcessorAdded, got[0])
	assert.Contains(t, got, domain.EventConnectionAdded)
	assert.Equal(t, domain.EventEvaluated, got[len(got)-1])

	rec.mu.Lock()
	last := rec.envs[len(rec.envs)-1]
	rec.mu.Unlock()
	assert.Equal(t, "demo", last.Network)

	var body struct {
		Evaluated []string `json:"evaluated"`
	}
	require.NoError(t, json.Unmarshal(last.Payload, &body))
	assert.Equal(t, []string{"src", "snk"}, body.Evaluated)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	pubsub := events.NewGoChannel(logging.NewNop())
	defer pubsub.Close()

	bus := events.NewBus(pubsub)
	err := bus.Publish(domain.EventInvalidated, "demo", &domain.ProcessorEvent{ProcessorID: "src"})
	assert.NoError(t, err)
}

func TestBus_PublishAfterClose(t *testing.T) {
	pubsub := events.NewGoChannel(logging.NewNop())
	require.NoError(t, pubsub.Close())

	bus := events.NewBus(pubsub)
	err := bus.Publish(domain.EventInvalidated, "demo", &domain.ProcessorEvent{ProcessorID: "src"})
	assert.Error(t, err)

	// Hooks swallow the failure.
	assert.NotPanics(t, func() {
		bus.Hooks().OnInvalidated(&domain.ProcessorEvent{
			EventBase:   domain.EventBase{Type: domain.EventInvalidated, Timestamp: time.Now()},
			ProcessorID: "src",
		})
	})
}
