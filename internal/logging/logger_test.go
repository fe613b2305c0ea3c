package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/portflow/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestNewWriter_ComponentAndErrKey(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, slog.LevelInfo)

	logger.Info("evaluation failed", "error", errors.New("boom"))
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "component=portflow")
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "error=")
	assert.NotContains(t, out, "hidden")
}

func TestForNetwork(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, slog.LevelInfo)

	logging.ForNetwork(logger, "demo").Info("scoped")
	assert.Contains(t, buf.String(), "network=demo")

	buf.Reset()
	assert.Same(t, logger, logging.ForNetwork(logger, ""))
	logger.Info("unscoped")
	assert.NotContains(t, buf.String(), "network=")
}
