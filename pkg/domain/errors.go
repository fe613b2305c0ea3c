package domain

import "errors"

// ErrNetworkNotFound is returned when a network definition cannot be found in the store.
var ErrNetworkNotFound = errors.New("network not found")

// ErrProcessorExists is returned when a processor identifier is already taken in a network.
var ErrProcessorExists = errors.New("processor already exists")

// ErrProcessorNotFound is returned when a processor identifier is unknown to the network.
var ErrProcessorNotFound = errors.New("processor not found")

// ErrPortNotFound is returned when a port reference does not resolve.
var ErrPortNotFound = errors.New("port not found")

// ErrDuplicatePort is returned when a processor already owns a port with the same identifier and direction.
var ErrDuplicatePort = errors.New("duplicate port identifier")

// ErrEmptyIdentifier is returned when a port or processor is created without an identifier.
var ErrEmptyIdentifier = errors.New("identifier cannot be empty")

// ErrCircularConnection is returned when a connection would introduce a cycle.
var ErrCircularConnection = errors.New("connection would create a cycle")

// ErrIncompatiblePorts is returned when two ports cannot be connected (capacity or data type).
var ErrIncompatiblePorts = errors.New("ports cannot be connected")

// ErrUnknownClass is returned when no factory is registered for a processor class.
var ErrUnknownClass = errors.New("unknown processor class")

// ErrInvalidPortRef is returned when a "processor/port" reference is malformed.
var ErrInvalidPortRef = errors.New("invalid port reference")

// ErrUnknownInvalidationLevel is returned when a level name or value is not part of the lattice.
var ErrUnknownInvalidationLevel = errors.New("unknown invalidation level")

// ErrNilDefinition is returned when a network is built from a nil definition.
var ErrNilDefinition = errors.New("network definition is nil")
