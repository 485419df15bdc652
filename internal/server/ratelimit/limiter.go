// Package ratelimit limits requests per client.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// Limiter decides whether a request keyed by client may proceed.
type Limiter interface {
	Allow(key string) bool
	Reset(key string)
}

// Stoppable is a Limiter owning a background goroutine.
type Stoppable interface {
	Limiter
	Stop()
}

// Config allows Requests per Window per key, with bursts up to Requests.
type Config struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// DefaultConfig is disabled; when enabled it allows 600 requests a minute,
// enough for a client scrolling pages of items.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Requests: 600,
		Window:   time.Minute,
	}
}

// GetClientIP returns the first X-Forwarded-For entry, then X-Real-IP,
// then the host of RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
