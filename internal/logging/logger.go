package logging

import (
	"io"
	"log/slog"
	"os"
)

// Attribute keys shared by every portflow log line.
const (
	ComponentKey = "component"
	NetworkKey   = "network"
)

// New creates the portflow logger. It writes to Stderr so Stdout stays free
// for command output and MCP stdio.
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter is New with an explicit destination. Every record carries
// component=portflow and the "error" key is shortened to "err".
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	})
	return slog.New(h).With(ComponentKey, "portflow")
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// ForNetwork scopes a logger to one network. An empty name leaves the
// logger untouched.
func ForNetwork(logger *slog.Logger, name string) *slog.Logger {
	if name == "" {
		return logger
	}
	return logger.With(NetworkKey, name)
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
