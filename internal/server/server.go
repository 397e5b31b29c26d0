// Package server provides the HTTP handlers and routing for the MCP server.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"http-mcp-server/internal/mcp"
	"http-mcp-server/internal/tools"
)

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// Config contains HTTP-layer settings.
type Config struct {
	Version        string
	AllowedOrigins []string
	RequestTimeout time.Duration
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
}

// Server contains the configured router, dispatcher and logger for the MCP server.
type Server struct {
	cfg        Config
	router     *chi.Mux
	dispatcher *mcp.Dispatcher
	registry   *tools.Registry
	logger     *slog.Logger
}

// New constructs a Server with middleware and routes configured.
func New(cfg Config, dispatcher *mcp.Dispatcher, registry *tools.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		dispatcher: dispatcher,
		registry:   registry,
		logger:     logger,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(cfg.RequestTimeout))
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/tools", s.handleToolsPage)
	s.router.Post("/mcp", s.handleMCP)
	if cfg.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
				"elapsed", time.Since(start),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"service":         "MCP HTTP Server",
		"version":         s.cfg.Version,
		"status":          "running",
		"mcp_endpoint":    "/mcp",
		"health_endpoint": "/health",
		"tools_page":      "/tools",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"status":   "healthy",
		"service":  "mcp-http-server",
		"protocol": "MCP over HTTP",
	})
}

// handleMCP decodes one JSON-RPC request and always answers with a JSON-RPC
// envelope and HTTP 200, including for undecodable bodies. The body must hold
// exactly one JSON value.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req mcp.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	err := dec.Decode(&req)
	if err == nil {
		if _, extra := dec.Token(); extra != io.EOF {
			err = errTrailingData
			if extra != nil {
				err = extra
			}
		}
	}
	if err != nil {
		msg := "invalid JSON-RPC request: " + err.Error()
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			msg = "request body too large"
		}
		s.logger.Warn("rejecting MCP request", "error", err)
		writeJSON(w, mcp.NewError(req.ID, mcp.CodeServerError, msg))
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), &req)
	if resp.Error == nil {
		s.logger.Debug("MCP response", "method", req.Method, "notification", req.IsNotification())
	}
	writeJSON(w, resp)
}

var errTrailingData = errors.New("unexpected data after JSON object")

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
