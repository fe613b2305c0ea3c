package network

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/portflow/pkg/domain"
)

// Evaluate runs every invalid and ready processor in topological order and
// returns the identifiers of the processors it ran. Processors that are not
// ready stay invalid. Cancellation is checked between processors; a failing
// ProcessFunc stops the pass and leaves its processor invalid.
func (n *Network) Evaluate(ctx context.Context) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	start := time.Now()
	evaluated, err := n.evaluate(ctx)
	n.pending = false

	n.logger.Debug("network evaluated", "processors", len(evaluated), "duration", time.Since(start))
	if n.hooks.OnEvaluated != nil {
		n.hooks.OnEvaluated(&domain.EvaluationEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventEvaluated, Network: n.name},
			Evaluated: evaluated,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	return evaluated, err
}

func (n *Network) evaluate(ctx context.Context) ([]string, error) {
	var evaluated []string
	for _, p := range topologicalSort(n.sortedProcessors()) {
		if err := ctx.Err(); err != nil {
			return evaluated, fmt.Errorf("evaluate: %w", err)
		}
		if p.IsValid() || !p.IsReady() {
			continue
		}
		if err := p.Process(ctx); err != nil {
			return evaluated, fmt.Errorf("process %q: %w", p.id, err)
		}
		p.SetValid()
		evaluated = append(evaluated, p.id)
	}
	return evaluated, nil
}

// TopologicalSort returns the processors ordered so that every producer
// precedes its consumers.
func (n *Network) TopologicalSort() []*Processor {
	n.mu.Lock()
	defer n.mu.Unlock()
	return topologicalSort(n.sortedProcessors())
}

// DirectPredecessors returns the processors feeding id directly.
func (n *Network) DirectPredecessors(id string) ([]*Processor, error) {
	return n.walk(id, directPredecessors)
}

// DirectSuccessors returns the processors fed directly by id.
func (n *Network) DirectSuccessors(id string) ([]*Processor, error) {
	return n.walk(id, directSuccessors)
}

// Predecessors returns every processor upstream of id.
func (n *Network) Predecessors(id string) ([]*Processor, error) {
	return n.walk(id, predecessors)
}

// Successors returns every processor downstream of id.
func (n *Network) Successors(id string) ([]*Processor, error) {
	return n.walk(id, successors)
}

func (n *Network) walk(id string, fn func(*Processor) []*Processor) ([]*Processor, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.processors[id]
	if !ok {
		return nil, fmt.Errorf("processor %q: %w", id, domain.ErrProcessorNotFound)
	}
	return fn(p), nil
}
