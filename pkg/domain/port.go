package domain

// PortDirection tells inports and outports apart in diagnostic output.
type PortDirection string

const (
	DirectionIn  PortDirection = "in"
	DirectionOut PortDirection = "out"
)

// PortInfo is a read-only diagnostic snapshot of a port, meant for
// introspection tools. It carries no behavior.
type PortInfo struct {
	Identifier     string            `json:"identifier" yaml:"identifier"`
	Processor      string            `json:"processor,omitempty" yaml:"processor,omitempty"`
	ClassName      string            `json:"class_name" yaml:"class_name"`
	DataType       string            `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Direction      PortDirection     `json:"direction" yaml:"direction"`
	Help           string            `json:"help,omitempty" yaml:"help,omitempty"`
	Connected      bool              `json:"connected" yaml:"connected"`
	Ready          bool              `json:"ready" yaml:"ready"`
	Optional       bool              `json:"optional" yaml:"optional"`
	Changed        bool              `json:"changed" yaml:"changed"`
	Connections    int               `json:"connections" yaml:"connections"`
	MaxConnections int               `json:"max_connections" yaml:"max_connections"` // 0 means unbounded
	Level          InvalidationLevel `json:"level" yaml:"level"`
	ConnectedTo    []string          `json:"connected_to,omitempty" yaml:"connected_to,omitempty"`
}

// Event is an interaction or runtime event forwarded along connections.
// Whether it was consumed is returned by the propagation call, never stored
// on the event itself.
type Event interface {
	Name() string
}

// NamedEvent is the simplest Event: just a name.
type NamedEvent string

// Name implements Event.
func (e NamedEvent) Name() string { return string(e) }

// ProcessorStatus is the runtime snapshot of a processor used by
// inspection tools.
type ProcessorStatus struct {
	ID       string            `json:"id" yaml:"id"`
	Class    string            `json:"class,omitempty" yaml:"class,omitempty"`
	Level    InvalidationLevel `json:"level" yaml:"level"`
	Ready    bool              `json:"ready" yaml:"ready"`
	Source   bool              `json:"source" yaml:"source"`
	Sink     bool              `json:"sink" yaml:"sink"`
	Inports  int               `json:"inports" yaml:"inports"`
	Outports int               `json:"outports" yaml:"outports"`
}
