package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/portflow"
	"github.com/aretw0/portflow/pkg/adapters/events"
)

// RunEvents builds the network and evaluates it once, printing every
// lifecycle event as one JSON line.
func RunEvents(ctx context.Context, w io.Writer, opts Options) error {
	logger := NewLogger(opts.Debug)

	pubsub := events.NewGoChannel(logger)
	defer pubsub.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	enc := json.NewEncoder(w)
	err := events.Subscribe(ctx, pubsub, func(env events.Envelope) {
		if err := enc.Encode(env); err != nil {
			logger.Warn("failed to write event", "type", env.Type, "err", err)
		}
	})
	if err != nil {
		return err
	}

	bus := events.NewBus(pubsub, events.WithLogger(logger))
	eng, err := CreateEngine(ctx, opts, logger, portflow.WithLifecycleHooks(bus.Hooks()))
	if err != nil {
		return err
	}
	if _, err := eng.Evaluate(ctx); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}
