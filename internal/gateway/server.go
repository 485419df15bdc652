// Package gateway registers the public HTTP surface: the items and state
// endpoints, the state watch websocket and the metrics exposition.
package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/syntrixbase/itemdeck/internal/gateway/realtime"
	"github.com/syntrixbase/itemdeck/internal/gateway/rest"
)

// Server is a route registrar for the API layer.
type Server struct {
	rest     *rest.Handler
	realtime *realtime.Server
	prefixes []string
	metrics  http.Handler
}

// ServerOption is a function that configures a Server.
type ServerOption func(*Server)

// WithRealtime enables the state watch endpoint.
func WithRealtime(rt *realtime.Server) ServerOption {
	return func(s *Server) {
		s.realtime = rt
	}
}

// WithRoutePrefixes serves every route under each prefix. The empty prefix
// serves the bare paths.
func WithRoutePrefixes(prefixes ...string) ServerOption {
	return func(s *Server) {
		s.prefixes = prefixes
	}
}

// WithMetricsHandler replaces the default prometheus handler. A nil
// handler disables GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a new API Server (route registrar).
func NewServer(restHandler *rest.Handler, opts ...ServerOption) *Server {
	if restHandler == nil {
		panic("rest handler cannot be nil")
	}
	s := &Server{
		rest:     restHandler,
		prefixes: []string{""},
		metrics:  promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRoutes registers all API routes to the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	s.rest.RegisterRoutes(mux, s.prefixes...)

	if s.realtime != nil {
		s.realtime.RegisterRoutes(mux, s.prefixes...)
	}

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
}
