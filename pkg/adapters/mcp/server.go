package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/portflow"
	"github.com/aretw0/portflow/internal/logging"
	"github.com/aretw0/portflow/internal/presentation/graph"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	networkURI = "portflow://network"
	graphURI   = "portflow://graph"
)

// NetworkReport is the result of inspect_network.
type NetworkReport struct {
	Name        string                        `json:"name" jsonschema_description:"Network name"`
	Processors  []domain.ProcessorStatus      `json:"processors" jsonschema_description:"Runtime snapshot of every processor"`
	Connections []domain.ConnectionDefinition `json:"connections" jsonschema_description:"Every edge, outport first"`
}

// EdgeArgs names an outport and an inport in processor/port notation.
type EdgeArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CircularResult is the result of check_circular.
type CircularResult struct {
	Circular bool `json:"circular" jsonschema_description:"True if the edge would close a cycle"`
}

// EvaluateResult is the result of evaluate.
type EvaluateResult struct {
	Evaluated []string `json:"evaluated" jsonschema_description:"Processors run by the pass, in order"`
}

// Server exposes a NetworkService as an MCP server.
type Server struct {
	service   ports.NetworkService
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc ports.NetworkService, opts ...Option) *Server {
	s := &Server{
		service:   svc,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("portflow-mcp", strings.TrimSpace(portflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("inspect_network",
		mcp.WithDescription("List every processor with its invalidation level and readiness, and every connection."),
		mcp.WithOutputSchema[NetworkReport](),
	), mcp.NewStructuredToolHandler(s.handleInspect))

	s.mcpServer.AddTool(mcp.NewTool("port_info",
		mcp.WithDescription("Describe one port: direction, readiness, capacity and connected peers."),
		mcp.WithString("processor", mcp.Required(), mcp.Description("Processor identifier")),
		mcp.WithString("port", mcp.Required(), mcp.Description("Port identifier")),
	), s.handlePortInfo)

	s.mcpServer.AddTool(mcp.NewTool("check_circular",
		mcp.WithDescription("Report whether connecting the outport to the inport would create a cycle."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Outport as processor/port")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Inport as processor/port")),
		mcp.WithOutputSchema[CircularResult](),
	), mcp.NewStructuredToolHandler(s.handleCheckCircular))

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Connect an outport to an inport. Cycles and incompatible ports are rejected."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Outport as processor/port")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Inport as processor/port")),
	), s.handleConnect)

	s.mcpServer.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Run every invalid and ready processor in topological order."),
		mcp.WithOutputSchema[EvaluateResult](),
	), mcp.NewStructuredToolHandler(s.handleEvaluate))
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (NetworkReport, error) {
	def, err := s.service.Definition(ctx)
	if err != nil {
		return NetworkReport{}, fmt.Errorf("inspect failed: %w", err)
	}
	status, err := s.service.Status(ctx)
	if err != nil {
		return NetworkReport{}, fmt.Errorf("inspect failed: %w", err)
	}
	conns := def.Connections
	if conns == nil {
		conns = []domain.ConnectionDefinition{}
	}
	return NetworkReport{Name: def.Name, Processors: status, Connections: conns}, nil
}

func (s *Server) handlePortInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := domain.PortRef{
		Processor: request.GetString("processor", ""),
		Port:      request.GetString("port", ""),
	}
	info, err := s.service.PortInfo(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("port_info failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(info)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCheckCircular(ctx context.Context, request mcp.CallToolRequest, args EdgeArgs) (CircularResult, error) {
	c, err := domain.ConnectionDefinition(args).Connection()
	if err != nil {
		return CircularResult{}, err
	}
	circular, err := s.service.CheckCircular(ctx, c.Outport, c.Inport)
	if err != nil {
		return CircularResult{}, fmt.Errorf("check_circular failed: %w", err)
	}
	return CircularResult{Circular: circular}, nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := domain.ConnectionDefinition{
		From: request.GetString("from", ""),
		To:   request.GetString("to", ""),
	}.Connection()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.service.Connect(ctx, c.Outport, c.Inport); err != nil {
		s.logger.Debug("MCP connect rejected", "connection", c.String(), "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("connect failed: %v", err)), nil
	}
	return mcp.NewToolResultText("connected " + c.String()), nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (EvaluateResult, error) {
	evaluated, err := s.service.Evaluate(ctx)
	if err != nil {
		return EvaluateResult{}, fmt.Errorf("evaluate failed: %w", err)
	}
	if evaluated == nil {
		evaluated = []string{}
	}
	return EvaluateResult{Evaluated: evaluated}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(networkURI, "Current Network Definition",
		mcp.WithResourceDescription("Processors, ports and connections of the live network"),
		mcp.WithMIMEType("application/json"),
	), s.readNetwork)

	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Network Graph",
		mcp.WithResourceDescription("Mermaid flowchart styled by invalidation state"),
		mcp.WithMIMEType("text/plain"),
	), s.readGraph)
}

func (s *Server) readNetwork(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	def, err := s.service.Definition(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read network: %w", err)
	}
	jsonBytes, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      networkURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	def, err := s.service.Definition(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read network: %w", err)
	}
	status, err := s.service.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      graphURI,
			MIMEType: "text/plain",
			Text:     graph.GenerateMermaid(&def, &graph.GraphOverlay{Status: status}),
		},
	}, nil
}
