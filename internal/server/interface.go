package server

import (
	"context"
	"net/http"
)

// Service is the HTTP network layer shared by every gateway.
type Service interface {
	// Start listens and serves until a fatal error occurs or ctx is
	// cancelled.
	Start(ctx context.Context) error

	// Stop shuts the listener down gracefully within ctx.
	Stop(ctx context.Context) error

	// RegisterHTTPHandler registers handler for pattern. It must be called
	// before Start.
	RegisterHTTPHandler(pattern string, handler http.Handler)

	// HTTPMux returns the mux for direct registration before Start.
	HTTPMux() *http.ServeMux

	// Addr returns the bound address once Start has begun listening.
	Addr() string
}
