package ports

import (
	"context"

	"github.com/aretw0/portflow/pkg/domain"
)

// NetworkService defines the operations adapters (HTTP, MCP) expose over a
// live network.
type NetworkService interface {
	// Definition returns the current topology.
	Definition(ctx context.Context) (domain.NetworkDefinition, error)

	// Status returns the runtime snapshot of every processor.
	Status(ctx context.Context) ([]domain.ProcessorStatus, error)

	// Ports returns the port snapshots of one processor.
	Ports(ctx context.Context, processorID string) ([]domain.PortInfo, error)

	// PortInfo returns the snapshot of a single port.
	PortInfo(ctx context.Context, ref domain.PortRef) (domain.PortInfo, error)

	// Connect adds an edge. It fails with domain.ErrCircularConnection or
	// domain.ErrIncompatiblePorts without mutating the network.
	Connect(ctx context.Context, from, to domain.PortRef) error

	// Disconnect removes an edge.
	Disconnect(ctx context.Context, from, to domain.PortRef) error

	// CheckCircular reports whether the edge would close a cycle.
	CheckCircular(ctx context.Context, from, to domain.PortRef) (bool, error)

	// Evaluate runs the invalid, ready processors and returns their ids.
	Evaluate(ctx context.Context) ([]string, error)
}
