package network

import (
	"sort"

	"github.com/aretw0/portflow/pkg/port"
)

// directPredecessors returns the processors owning an outport connected to
// one of p's inports, in port order and without duplicates.
func directPredecessors(p *Processor) []*Processor {
	var out []*Processor
	seen := make(map[*Processor]bool)
	for _, in := range p.inports {
		for _, o := range in.ConnectedOutports() {
			if owner, ok := o.Owner().(*Processor); ok && !seen[owner] {
				seen[owner] = true
				out = append(out, owner)
			}
		}
	}
	return out
}

// directSuccessors returns the processors owning an inport fed by one of
// p's outports, in port order and without duplicates.
func directSuccessors(p *Processor) []*Processor {
	var out []*Processor
	seen := make(map[*Processor]bool)
	for _, o := range p.outports {
		for _, in := range o.ConnectedInports() {
			if owner, ok := in.Owner().(*Processor); ok && !seen[owner] {
				seen[owner] = true
				out = append(out, owner)
			}
		}
	}
	return out
}

// closure walks next from p breadth-first and returns every reachable
// processor except p itself. Each processor and edge is visited once.
func closure(p *Processor, next func(*Processor) []*Processor) []*Processor {
	var out []*Processor
	seen := map[*Processor]bool{p: true}
	queue := []*Processor{p}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range next(cur) {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
			queue = append(queue, n)
		}
	}
	return out
}

func predecessors(p *Processor) []*Processor { return closure(p, directPredecessors) }

func successors(p *Processor) []*Processor { return closure(p, directSuccessors) }

// graph walks the processor graph through the ports' back-references.
type graph struct{}

// Predecessors implements port.PredecessorFinder.
func (graph) Predecessors(n port.Node) []port.Node {
	p, ok := n.(*Processor)
	if !ok {
		return nil
	}
	preds := predecessors(p)
	nodes := make([]port.Node, len(preds))
	for i, pred := range preds {
		nodes[i] = pred
	}
	return nodes
}

// wouldCreateCycle reports whether connecting out to in would close a cycle.
func wouldCreateCycle(out *port.Outport, in *port.Inport) bool {
	return in.CircularConnection(out, graph{})
}

// topologicalSort orders processors so that every producer precedes its
// consumers. It starts at the sinks and emits processors in post-order of
// an upstream depth-first walk.
func topologicalSort(processors []*Processor) []*Processor {
	sorted := make([]*Processor, 0, len(processors))
	visited := make(map[*Processor]bool, len(processors))

	var visit func(p *Processor)
	visit = func(p *Processor) {
		if visited[p] {
			return
		}
		visited[p] = true
		for _, pred := range directPredecessors(p) {
			visit(pred)
		}
		sorted = append(sorted, p)
	}

	sinks := make([]*Processor, 0, len(processors))
	for _, p := range processors {
		if p.IsSink() {
			sinks = append(sinks, p)
		}
	}
	sort.Slice(sinks, func(i, j int) bool { return sinks[i].id < sinks[j].id })
	for _, p := range sinks {
		visit(p)
	}
	return sorted
}
