package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/portflow/internal/presentation/tui"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusReport(t *testing.T) {
	got := tui.StatusReport("demo", []domain.ProcessorStatus{
		{ID: "src", Class: "source", Level: domain.Valid, Ready: true, Source: true},
		{ID: "snk", Level: domain.InvalidOutput, Sink: true},
		{ID: "lone", Source: true, Sink: true, Ready: true},
	})
	assert.Contains(t, got, "# demo")
	assert.Contains(t, got, "| src | source | valid | ✓ | source |")
	assert.Contains(t, got, "| snk | - | invalid_output | ✗ | sink |")
	assert.Contains(t, got, "| lone | - | valid | ✓ | isolated |")

	assert.Contains(t, tui.StatusReport("", nil), "_No processors._")
}

func TestPortReport(t *testing.T) {
	got := tui.PortReport("join", []domain.PortInfo{
		{Identifier: "in", Direction: domain.DirectionIn, Connections: 2, ConnectedTo: []string{"a/out", "b/out"}},
		{Identifier: "out", Direction: domain.DirectionOut, DataType: "int", Ready: true, MaxConnections: 3},
	})
	assert.Contains(t, got, "| in | in | - | ✗ | ✗ | 2/∞ | a/out, b/out |")
	assert.Contains(t, got, "| out | out | int | ✓ | ✗ | 0/3 | - |")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestIsTerminal_Nil(t *testing.T) {
	assert.False(t, tui.IsTerminal(nil))
}
