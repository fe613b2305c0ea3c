package domain

import (
	"fmt"
	"strings"
)

// PortRef is a stable handle to a port: the owning processor identifier plus
// the port identifier. Its text form is "processor/port".
type PortRef struct {
	Processor string `json:"processor" yaml:"processor"`
	Port      string `json:"port" yaml:"port"`
}

func (r PortRef) String() string {
	return r.Processor + "/" + r.Port
}

// ParsePortRef parses the "processor/port" notation.
func ParsePortRef(s string) (PortRef, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PortRef{}, fmt.Errorf("%w: %q (expected processor/port)", ErrInvalidPortRef, s)
	}
	return PortRef{Processor: parts[0], Port: parts[1]}, nil
}

// PortConnection identifies a network edge from an outport to an inport.
type PortConnection struct {
	Outport PortRef `json:"outport" yaml:"outport"`
	Inport  PortRef `json:"inport" yaml:"inport"`
}

func (c PortConnection) String() string {
	return c.Outport.String() + " -> " + c.Inport.String()
}

// InvolvesProcessor reports whether either endpoint belongs to the processor.
func (c PortConnection) InvolvesProcessor(id string) bool {
	return c.Outport.Processor == id || c.Inport.Processor == id
}
