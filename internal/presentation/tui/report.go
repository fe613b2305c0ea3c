package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/portflow/pkg/domain"
)

// StatusReport renders processor snapshots as a markdown table.
func StatusReport(name string, status []domain.ProcessorStatus) string {
	var sb strings.Builder
	title := name
	if title == "" {
		title = "network"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(status) == 0 {
		sb.WriteString("_No processors._\n")
		return sb.String()
	}
	sb.WriteString("| Processor | Class | Level | Ready | Role |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, st := range status {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			st.ID, dash(st.Class), st.Level, check(st.Ready), role(st))
	}
	return sb.String()
}

// PortReport renders port snapshots as a markdown table.
func PortReport(processor string, ports []domain.PortInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", processor)
	if len(ports) == 0 {
		sb.WriteString("_No ports._\n")
		return sb.String()
	}
	sb.WriteString("| Port | Dir | Type | Ready | Optional | Links | Connected to |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	for _, p := range ports {
		limit := "∞"
		if p.MaxConnections > 0 {
			limit = fmt.Sprint(p.MaxConnections)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %d/%s | %s |\n",
			p.Identifier, p.Direction, dash(p.DataType), check(p.Ready), check(p.Optional),
			p.Connections, limit, dash(strings.Join(p.ConnectedTo, ", ")))
	}
	return sb.String()
}

func role(st domain.ProcessorStatus) string {
	switch {
	case st.Source && st.Sink:
		return "isolated"
	case st.Source:
		return "source"
	case st.Sink:
		return "sink"
	}
	return "inner"
}

func check(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
