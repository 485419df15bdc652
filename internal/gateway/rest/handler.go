// Package rest serves the items and state endpoints over JSON.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/syntrixbase/itemdeck/internal/items"
	"github.com/syntrixbase/itemdeck/internal/server"
	"github.com/syntrixbase/itemdeck/internal/state"
)

// Default limits
const (
	DefaultMaxBodySize    = 1 << 20 // 1MB
	DefaultRequestTimeout = 30 * time.Second
	HealthTimeout         = 5 * time.Second
)

// APIError represents a structured error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Generator produces a page of items.
type Generator interface {
	Generate(ctx context.Context, req items.Request) (items.Result, error)
}

type Handler struct {
	generator Generator
	store     state.Store
	logger    *slog.Logger
	timeout   time.Duration
	maxBody   int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithRequestTimeout bounds every handler except health.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithMaxBodySize caps request bodies.
func WithMaxBodySize(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

func NewHandler(generator Generator, store state.Store, logger *slog.Logger, opts ...Option) *Handler {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if store == nil {
		panic("state store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		generator: generator,
		store:     store,
		logger:    logger.With("component", "rest"),
		timeout:   DefaultRequestTimeout,
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the handlers under every prefix. The empty prefix
// serves the bare paths.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, prefixes ...string) {
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}
	for _, p := range prefixes {
		mux.HandleFunc("GET "+p+"/items", withTimeout(h.handleItems, h.timeout))
		mux.HandleFunc("GET "+p+"/state", withTimeout(h.handleGetState, h.timeout))
		mux.HandleFunc("POST "+p+"/state", withTimeout(maxBodySize(h.handleReplaceState, h.maxBody), h.timeout))
		mux.HandleFunc("GET "+p+"/health", withTimeout(h.handleHealth, HealthTimeout))
	}
}

// writeError writes a structured JSON error response
func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{Code: code, Message: message}); err != nil {
		slog.Warn("Failed to encode error response", "error", err)
	}
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// writeStateError maps store and generator failures to a response. A
// cancelled client gets a bare 499.
func (h *Handler) writeStateError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, context.Canceled):
		w.WriteHeader(server.StatusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out")
	case errors.Is(err, state.ErrVersionConflict):
		writeError(w, http.StatusConflict, ErrCodeConflict, "State was modified concurrently")
	case errors.Is(err, state.ErrStorageUnavailable):
		h.logger.Warn(message, "error", err, "request_id", server.GetRequestID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, ErrCodeStorageUnavailable, "State storage unavailable")
	default:
		h.logger.Error(message, "error", err, "request_id", server.GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
	}
}

// maxBodySize wraps a handler with request body size limiting
func maxBodySize(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// withTimeout wraps a handler with a context timeout
func withTimeout(next http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}
