package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/schema"
)

// ClassSet reports whether a processor class is known. *registry.Registry
// satisfies it.
type ClassSet interface {
	Has(class string) bool
}

// Validate checks a definition without building it: identifiers,
// classes, port references, capacities, metadata types and cycles. Every
// problem found is reported in one *schema.AggregateError. classes may be
// nil to skip the class check.
func Validate(def *domain.NetworkDefinition, classes ClassSet) error {
	var errs []error
	addf := func(sentinel error, format string, args ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, sentinel)...))
	}

	type portKey struct {
		ref domain.PortRef
		in  bool
	}
	ports := make(map[portKey]domain.PortDefinition)
	processors := make(map[string]bool)

	for _, p := range def.Processors {
		if p.ID == "" {
			addf(domain.ErrEmptyIdentifier, "processor without id")
			continue
		}
		if processors[p.ID] {
			addf(domain.ErrProcessorExists, "processor %q", p.ID)
			continue
		}
		processors[p.ID] = true
		if p.Class != "" && classes != nil && !classes.Has(p.Class) {
			addf(domain.ErrUnknownClass, "processor %q class %q", p.ID, p.Class)
		}
		for _, group := range []struct {
			defs []domain.PortDefinition
			in   bool
			kind string
		}{{p.Inports, true, "inport"}, {p.Outports, false, "outport"}} {
			for _, pd := range group.defs {
				if pd.ID == "" {
					addf(domain.ErrEmptyIdentifier, "processor %q %s without id", p.ID, group.kind)
					continue
				}
				key := portKey{domain.PortRef{Processor: p.ID, Port: pd.ID}, group.in}
				if _, dup := ports[key]; dup {
					addf(domain.ErrDuplicatePort, "processor %q %s %q", p.ID, group.kind, pd.ID)
					continue
				}
				ports[key] = pd
			}
		}
	}

	// Connections: references, duplicates, capacity.
	seen := make(map[domain.PortConnection]bool)
	inCount := make(map[domain.PortRef]int)
	successors := make(map[string][]string)
	for _, cd := range def.Connections {
		c, err := cd.Connection()
		if err != nil {
			errs = append(errs, fmt.Errorf("connection %s -> %s: %w", cd.From, cd.To, err))
			continue
		}
		_, outOK := ports[portKey{c.Outport, false}]
		inDef, inOK := ports[portKey{c.Inport, true}]
		if !outOK && !declaresPorts(def, c.Outport.Processor) {
			outOK = processors[c.Outport.Processor]
		}
		if !inOK && !declaresPorts(def, c.Inport.Processor) {
			inOK = processors[c.Inport.Processor]
		}
		if !outOK {
			addf(domain.ErrPortNotFound, "connection %s: outport %s", c, c.Outport)
		}
		if !inOK {
			addf(domain.ErrPortNotFound, "connection %s: inport %s", c, c.Inport)
		}
		if !outOK || !inOK {
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		inCount[c.Inport]++
		limit := 1
		if inDef.MaxConnections != nil {
			limit = *inDef.MaxConnections
		}
		if limit > 0 && inCount[c.Inport] == limit+1 {
			addf(domain.ErrIncompatiblePorts, "inport %s accepts %d connection(s)", c.Inport, limit)
		}
		successors[c.Outport.Processor] = append(successors[c.Outport.Processor], c.Inport.Processor)
	}

	if cycle := findCycle(successors); cycle != nil {
		addf(domain.ErrCircularConnection, "cycle %s", strings.Join(cycle, " -> "))
	}

	if err := schema.CheckDefinition(def); err != nil {
		errs = append(errs, schema.Errors(err)...)
	}

	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}

// declaresPorts reports whether the processor lists any port explicitly.
// Processors created from a class without port declarations get their
// ports from the class, so references to them cannot be checked here.
func declaresPorts(def *domain.NetworkDefinition, id string) bool {
	p := def.Processor(id)
	return p != nil && (len(p.Inports) > 0 || len(p.Outports) > 0 || p.Class == "")
}

// findCycle returns one cycle as a closed path of processor ids, or nil.
func findCycle(successors map[string][]string) []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int)
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		stack = append(stack, id)
		for _, next := range successors[id] {
			switch color[next] {
			case grey:
				for i, s := range stack {
					if s == next {
						cycle = append(append([]string(nil), stack[i:]...), next)
						return true
					}
				}
			case white:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	ids := make([]string, 0, len(successors))
	for id := range successors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if color[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}
