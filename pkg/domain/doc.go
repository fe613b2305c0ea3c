/*
Package domain contains the core value types of the portflow dataflow engine.

It is kept pure and free of I/O, following Hexagonal Architecture principles.
Everything here is a plain value: the packages that own behavior (port,
network) build on top of it.

# Key Entities

  - InvalidationLevel: the ordered "dirtiness" lattice (Valid < InvalidOutput < InvalidResources).
  - PortRef / PortConnection: stable handles for ports and the edges between them.
  - PortInfo: diagnostic snapshot of a port for introspection tools.
  - NetworkDefinition: serializable topology (processors, ports, connections).
  - LifecycleHooks: observability callbacks fired by the network.
*/
package domain
