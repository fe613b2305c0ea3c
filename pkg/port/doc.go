/*
Package port implements the connection endpoints of a processing network.

An Outport produces data and can feed many Inports; an Inport consumes from
one Outport (or several, for multi-inports). The Inport drives every edge
change and updates both sides before returning, so the pair of
back-references is always consistent.

All operations are synchronous and silent: connecting a connected pair or
disconnecting an unconnected pair is a no-op. Invalidation raised on an
Inport is forwarded to its owning Node, which decides how to schedule
re-evaluation.

Ports are not safe for concurrent use. Confine a graph of ports to one
goroutine, or mutate it only through the owning network, which serializes
access with a single lock.

Ports hold non-owning references to each other. Before a port is discarded
its owner must call DisconnectAll; a forgotten edge leaves a dangling
reference behind in the peer port.
*/
package port
