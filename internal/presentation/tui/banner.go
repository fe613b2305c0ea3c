package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the portflow banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                  _    __ _", "#38bdf8"},
		{"  _ __   ___  _ _| |_ / _| | _____      __", "#22d3ee"},
		{" | '_ \\ / _ \\| '_|  _|  _| |/ _ \\ \\ /\\ / /", "#2dd4bf"},
		{" | .__/ \\___/|_|  \\__|_| |_|\\___/\\_/\\_/", "#34d399"},
		{" |_|", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
