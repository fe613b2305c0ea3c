package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/portflow"
	"github.com/aretw0/portflow/internal/logging"
	"github.com/aretw0/portflow/internal/presentation/graph"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi: %w", err)
	}
	return doc, nil
}

// ConnectionRequest is the body of the connection endpoints.
type ConnectionRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Server exposes a NetworkService over HTTP.
type Server struct {
	Service  ports.NetworkService
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	validate bool
	doc      *openapi3.T
	router   routers.Router
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithRequestValidation checks requests against the OpenAPI document
// before they reach the handlers.
func WithRequestValidation() Option {
	return func(s *Server) {
		s.validate = true
	}
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(svc ports.NetworkService, opts ...Option) (http.Handler, error) {
	s := &Server{
		Service: svc,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	s.doc = doc
	if s.validate {
		s.router, err = legacy.NewRouter(doc)
		if err != nil {
			return nil, fmt.Errorf("openapi router: %w", err)
		}
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if s.router != nil {
			r.Use(s.requestValidator)
		}
		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/definition", s.GetDefinition)
		r.Get("/processors", s.ListProcessors)
		r.Get("/processors/{id}/ports", s.ListPorts)
		r.Get("/connections", s.ListConnections)
		r.Post("/connections", s.AddConnection)
		r.Delete("/connections", s.RemoveConnection)
		r.Post("/connections/check", s.CheckConnection)
		r.Post("/evaluate", s.Evaluate)
		r.Get("/graph", s.GetGraph)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestValidator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, err := s.router.FindRoute(r)
		if err != nil {
			// Unknown routes fall through to chi's 404/405.
			next.ServeHTTP(w, r)
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc != nil && s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "portflow-http",
		"version":     strings.TrimSpace(portflow.Version),
		"api_version": apiVersion,
	})
}

// GetDefinition handles the GET /definition request.
func (s *Server) GetDefinition(w http.ResponseWriter, r *http.Request) {
	def, err := s.Service.Definition(r.Context())
	if err != nil {
		s.fail(w, "Definition", err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// ListProcessors handles the GET /processors request.
func (s *Server) ListProcessors(w http.ResponseWriter, r *http.Request) {
	status, err := s.Service.Status(r.Context())
	if err != nil {
		s.fail(w, "Status", err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

// ListPorts handles the GET /processors/{id}/ports request.
func (s *Server) ListPorts(w http.ResponseWriter, r *http.Request) {
	info, err := s.Service.Ports(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Ports", err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// ListConnections handles the GET /connections request.
func (s *Server) ListConnections(w http.ResponseWriter, r *http.Request) {
	def, err := s.Service.Definition(r.Context())
	if err != nil {
		s.fail(w, "Definition", err)
		return
	}
	conns := def.Connections
	if conns == nil {
		conns = []domain.ConnectionDefinition{}
	}
	s.writeJSON(w, http.StatusOK, conns)
}

// AddConnection handles the POST /connections request.
func (s *Server) AddConnection(w http.ResponseWriter, r *http.Request) {
	c, err := decodeConnection(r)
	if err != nil {
		s.fail(w, "AddConnection", err)
		return
	}
	if err := s.Service.Connect(r.Context(), c.Outport, c.Inport); err != nil {
		s.fail(w, "AddConnection", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, ConnectionRequest{From: c.Outport.String(), To: c.Inport.String()})
}

// RemoveConnection handles the DELETE /connections request.
func (s *Server) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := domain.ConnectionDefinition{From: q.Get("from"), To: q.Get("to")}.Connection()
	if err != nil {
		s.fail(w, "RemoveConnection", err)
		return
	}
	if err := s.Service.Disconnect(r.Context(), c.Outport, c.Inport); err != nil {
		s.fail(w, "RemoveConnection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckConnection handles the POST /connections/check request.
func (s *Server) CheckConnection(w http.ResponseWriter, r *http.Request) {
	c, err := decodeConnection(r)
	if err != nil {
		s.fail(w, "CheckConnection", err)
		return
	}
	circular, err := s.Service.CheckCircular(r.Context(), c.Outport, c.Inport)
	if err != nil {
		s.fail(w, "CheckConnection", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"circular": circular})
}

// Evaluate handles the POST /evaluate request.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	evaluated, err := s.Service.Evaluate(r.Context())
	if err != nil {
		s.fail(w, "Evaluate", err)
		return
	}
	if evaluated == nil {
		evaluated = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"evaluated": evaluated})
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	def, err := s.Service.Definition(r.Context())
	if err != nil {
		s.fail(w, "Definition", err)
		return
	}
	status, err := s.Service.Status(r.Context())
	if err != nil {
		s.fail(w, "Status", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(&def, &graph.GraphOverlay{Status: status})))
}

func decodeConnection(r *http.Request) (domain.PortConnection, error) {
	var body ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return domain.PortConnection{}, fmt.Errorf("invalid request body: %w", errBadRequest)
	}
	return domain.ConnectionDefinition{From: body.From, To: body.To}.Connection()
}

var errBadRequest = errors.New("bad request")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrInvalidPortRef):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPortNotFound),
		errors.Is(err, domain.ErrProcessorNotFound),
		errors.Is(err, domain.ErrNetworkNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCircularConnection):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIncompatiblePorts):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Debug(op+" rejected", "error", err, "status", code)
	}
	s.writeError(w, code, err)
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
