package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/portflow"
	httpAdapter "github.com/aretw0/portflow/pkg/adapters/http"
	"github.com/aretw0/portflow/pkg/adapters/mcp"
	"github.com/aretw0/portflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// ServeConfig holds the flags of the serve command.
type ServeConfig struct {
	Addr         string
	Validate     bool // check requests against the OpenAPI document
	AutoEvaluate bool // evaluate whenever the network requests it
}

// NewServeHandler builds the engine with metrics hooks and wraps it in the
// HTTP API. The metrics are served from the handler's /metrics route.
func NewServeHandler(ctx context.Context, opts Options, cfg ServeConfig) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	logger := NewLogger(opts.Debug)
	eng, err := CreateEngine(ctx, opts, logger,
		portflow.WithLifecycleHooks(metrics.Hooks()),
		portflow.WithAutoEvaluate(cfg.AutoEvaluate),
	)
	if err != nil {
		return nil, err
	}

	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetrics(reg),
	}
	if cfg.Validate {
		handlerOpts = append(handlerOpts, httpAdapter.WithRequestValidation())
	}
	return httpAdapter.NewHandler(eng, handlerOpts...)
}

// Serve runs the HTTP API on cfg.Addr until ctx is done.
func Serve(ctx context.Context, w io.Writer, opts Options, cfg ServeConfig) error {
	handler, err := NewServeHandler(ctx, opts, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		fmt.Fprintf(w, "Starting portflow server on %s\n", srv.Addr)
		fmt.Fprintf(w, "Serving network from: %s\n", opts.Source())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Fprintln(w, "\nStart shutdown...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if cerr := srv.Close(); cerr != nil {
				return errors.Join(err, cerr)
			}
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		fmt.Fprintln(w, "portflow server stopped gracefully")
		return nil
	}
}

// Transports accepted by RunMCP.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// RunMCP serves the network to MCP clients over stdio or SSE.
func RunMCP(ctx context.Context, opts Options, transport string, port int) error {
	logger := NewLogger(opts.Debug)
	eng, err := CreateEngine(ctx, opts, logger)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(eng, mcp.WithLogger(logger))

	switch transport {
	case TransportStdio:
		logger.Info("starting portflow MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		return srv.ServeSSE(ctx, port)
	}
	return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
}
