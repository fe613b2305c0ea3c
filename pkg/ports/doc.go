/*
Package ports defines the driven ports (interfaces) of portflow.

These interfaces decouple the network engine from external implementations,
allowing it to work with various storage backends and lock providers, and
letting transports (HTTP, MCP) drive any engine.

# Key Interfaces

  - DefinitionStore: Persists network definitions by name (memory, file, SQLite, Redis).
  - DistributedLocker: Provides distributed locking for concurrent network edits across replicas.
  - NetworkService: The operations transports expose over one live network.
*/
package ports
