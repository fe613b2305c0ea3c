package domain

// NetworkDefinition is the serializable topology of a network: its
// processors, their ports and the connections between them. It carries no
// runtime state (data, invalidation levels).
type NetworkDefinition struct {
	Name        string                 `json:"name" yaml:"name"`
	Processors  []ProcessorDefinition  `json:"processors" yaml:"processors"`
	Connections []ConnectionDefinition `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// ProcessorDefinition describes one processing node.
type ProcessorDefinition struct {
	ID       string           `json:"id" yaml:"id"`
	Class    string           `json:"class,omitempty" yaml:"class,omitempty"`
	Inports  []PortDefinition `json:"inports,omitempty" yaml:"inports,omitempty"`
	Outports []PortDefinition `json:"outports,omitempty" yaml:"outports,omitempty"`

	// Metadata holds free-form editor data (position, selection, tags).
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// PortDefinition describes one port of a processor.
type PortDefinition struct {
	ID             string `json:"id" yaml:"id"`
	Help           string `json:"help,omitempty" yaml:"help,omitempty"`
	DataType       string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Optional       bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	MaxConnections *int   `json:"max_connections,omitempty" yaml:"max_connections,omitempty"`
}

// ConnectionDefinition is an edge in "processor/port" notation.
type ConnectionDefinition struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Connection resolves the textual endpoints into a PortConnection.
func (c ConnectionDefinition) Connection() (PortConnection, error) {
	from, err := ParsePortRef(c.From)
	if err != nil {
		return PortConnection{}, err
	}
	to, err := ParsePortRef(c.To)
	if err != nil {
		return PortConnection{}, err
	}
	return PortConnection{Outport: from, Inport: to}, nil
}

// Processor returns the processor definition with the given ID, or nil.
func (d *NetworkDefinition) Processor(id string) *ProcessorDefinition {
	for i := range d.Processors {
		if d.Processors[i].ID == id {
			return &d.Processors[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the definition.
func (d *NetworkDefinition) Clone() *NetworkDefinition {
	if d == nil {
		return nil
	}
	out := &NetworkDefinition{
		Name:        d.Name,
		Processors:  make([]ProcessorDefinition, len(d.Processors)),
		Connections: append([]ConnectionDefinition(nil), d.Connections...),
	}
	for i, p := range d.Processors {
		cp := p
		cp.Inports = clonePorts(p.Inports)
		cp.Outports = clonePorts(p.Outports)
		if p.Metadata != nil {
			cp.Metadata = make(map[string]any, len(p.Metadata))
			for k, v := range p.Metadata {
				cp.Metadata[k] = v
			}
		}
		out.Processors[i] = cp
	}
	return out
}

func clonePorts(ports []PortDefinition) []PortDefinition {
	if ports == nil {
		return nil
	}
	out := make([]PortDefinition, len(ports))
	for i, p := range ports {
		cp := p
		if p.MaxConnections != nil {
			v := *p.MaxConnections
			cp.MaxConnections = &v
		}
		out[i] = cp
	}
	return out
}
