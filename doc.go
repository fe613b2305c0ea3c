/*
Package portflow is a dataflow engine built from processors connected
through typed ports.

A network is a directed acyclic graph: processors own inports and outports,
and every connection links one outport to one inport. Changing an input
invalidates its processor and everything downstream of it; evaluation then
re-runs the invalid processors in topological order, skipping those whose
inputs are not ready.

# Concept

The engine keeps three concerns apart. Topology (which ports are connected)
is plain data, described by a NetworkDefinition that can be loaded from YAML
or JSON. Runtime state (invalidation levels, readiness, changed inputs)
lives in the ports and processors. Scheduling (when to evaluate) is driven
by evaluation requests, which batches coalesce into one.

# Usage

	def := &domain.NetworkDefinition{
		Name: "hello",
		Processors: []domain.ProcessorDefinition{
			{ID: "src", Class: "source", Metadata: map[string]any{"value": "hello"}},
			{ID: "snk", Class: "sink"},
		},
		Connections: []domain.ConnectionDefinition{{From: "src/out", To: "snk/in"}},
	}

	eng, err := portflow.New(def)
	if err != nil {
		log.Fatal(err)
	}

	evaluated, err := eng.Evaluate(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(evaluated) // [src snk]

Custom processor classes are registered on a registry.Registry and passed
with WithRegistry. Lifecycle hooks (WithLifecycleHooks) expose every
topology change, invalidation and evaluation to logging, metrics and the
event bus in pkg/adapters/events.
*/
package portflow
