package metricsserver

import (
	"context"
	"net/http"

	"github.com/flashkv/flashkv/internal/telemetry/metric"
)

// Server is the HTTP server exposing /metrics and /healthz.
type Server struct {
	httpServer *http.Server
}

// New creates a metrics server bound to addr, serving metrics from
// registry.
func New(addr string, registry *metric.Registry) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: NewRouter(registry),
		},
	}
}

// ListenAndServe starts the metrics server. It blocks until the server
// is shut down or fails to bind.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
