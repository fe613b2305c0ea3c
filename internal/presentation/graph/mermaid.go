package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/portflow/pkg/domain"
)

// GraphOverlay contains runtime state to visualize on the graph.
type GraphOverlay struct {
	Status []domain.ProcessorStatus
}

// GenerateMermaid produces a Mermaid flowchart from a network definition.
// It applies semantic styling:
// - Source (no inports): ((Circle))
// - Sink (no outports): [/Parallelogram/]
// - Multi-inport processors: [[Subroutine]]
// - Default: [Rectangle]
// Edges are labelled "outport → inport"; edges into optional inports are
// dotted. With an overlay, processors are styled valid, invalid or blocked
// (invalid and not ready).
func GenerateMermaid(def *domain.NetworkDefinition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, p := range def.Processors {
		safeID := sanitizeMermaidID(p.ID)

		opener, closer := "[", "]"
		switch {
		case len(p.Inports) == 0 && len(p.Outports) > 0:
			opener, closer = "((", "))"
		case len(p.Outports) == 0 && len(p.Inports) > 0:
			opener, closer = "[/", "/]"
		case hasMultiInport(p):
			opener, closer = "[[", "]]"
		}

		label := p.ID
		if p.Class != "" {
			label = fmt.Sprintf("%s <br/> <i>%s</i>", p.ID, p.Class)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, cd := range def.Connections {
		c, err := cd.Connection()
		if err != nil {
			continue
		}
		edge := fmt.Sprintf("%s → %s", c.Outport.Port, c.Inport.Port)
		arrow := fmt.Sprintf("-- \"%s\" -->", edge)
		if isOptional(def, c.Inport) {
			arrow = fmt.Sprintf("-. \"%s\" .->", edge)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n",
			sanitizeMermaidID(c.Outport.Processor), arrow, sanitizeMermaidID(c.Inport.Processor)))
	}

	if overlay != nil && len(overlay.Status) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills under both themes.
		sb.WriteString("    classDef valid fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef invalid fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef blocked fill:#ffcdd2,stroke:#c62828,stroke-width:3px,color:#000;\n")
		for _, st := range overlay.Status {
			class := "valid"
			switch {
			case !st.Level.IsValid() && !st.Ready:
				class = "blocked"
			case !st.Level.IsValid():
				class = "invalid"
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(st.ID), class))
		}
	}

	return sb.String()
}

func hasMultiInport(p domain.ProcessorDefinition) bool {
	for _, in := range p.Inports {
		if in.MaxConnections != nil && *in.MaxConnections != 1 {
			return true
		}
	}
	return false
}

func isOptional(def *domain.NetworkDefinition, ref domain.PortRef) bool {
	p := def.Processor(ref.Processor)
	if p == nil {
		return false
	}
	for _, in := range p.Inports {
		if in.ID == ref.Port {
			return in.Optional
		}
	}
	return false
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
