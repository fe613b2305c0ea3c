/*
Package network assembles processors and their ports into an acyclic
processing graph.

A Network owns its processors and every connection between them. Edges are
validated before mutation: both endpoints must exist, have capacity and
agree on data type, and the edge must not close a cycle. Connecting or
removing a processor invalidates the affected consumers; when an
invalidation wave ends the network requests an evaluation, which
Evaluate services by running every invalid, ready processor in
topological order.

Mutations can be grouped with Batch so that a burst of edits emits a single
evaluation request:

	err := net.Batch(func() error {
		if err := net.AddProcessor(src); err != nil {
			return err
		}
		return net.AddConnection(
			domain.PortRef{Processor: "src", Port: "out"},
			domain.PortRef{Processor: "sink", Port: "in"},
		)
	})

Every public method takes the network mutex. ProcessFuncs, event handlers
and lifecycle hooks run while it is held and must not call back into the
Network.
*/
package network
