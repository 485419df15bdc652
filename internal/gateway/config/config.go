// Package config holds the HTTP gateway settings: route prefixes, item
// paging policy and the state watch endpoint.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/syntrixbase/itemdeck/internal/items"
)

type GatewayConfig struct {
	// RoutePrefixes lists the prefixes every route is served under. The
	// empty prefix serves the bare paths.
	RoutePrefixes  []string       `yaml:"route_prefixes"`
	RequestTimeout time.Duration  `yaml:"request_timeout"`
	MaxBodySize    int64          `yaml:"max_body_size"`
	Items          ItemsConfig    `yaml:"items"`
	Realtime       RealtimeConfig `yaml:"realtime"`
}

type ItemsConfig struct {
	// HasMore is "full_page" (hasMore when the page is full) or
	// "lookahead" (hasMore only when another item exists).
	HasMore string `yaml:"has_more"`
}

type RealtimeConfig struct {
	Enabled        bool          `yaml:"enabled"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	SendBuffer     int           `yaml:"send_buffer"`
	WriteWait      time.Duration `yaml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

// PingPeriod is nine tenths of PongWait.
func (r RealtimeConfig) PingPeriod() time.Duration {
	return r.PongWait * 9 / 10
}

func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		RoutePrefixes:  []string{"", "/api"},
		RequestTimeout: 30 * time.Second,
		MaxBodySize:    1 << 20,
		Items: ItemsConfig{
			HasMore: items.HasMoreFullPage.String(),
		},
		Realtime: RealtimeConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			SendBuffer:     16,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			MaxMessageSize: 512,
		},
	}
}

// ApplyDefaults fills in zero values with defaults. Realtime.Enabled is
// left as configured.
func (g *GatewayConfig) ApplyDefaults() {
	d := DefaultGatewayConfig()
	if g.RoutePrefixes == nil {
		g.RoutePrefixes = d.RoutePrefixes
	}
	if g.RequestTimeout == 0 {
		g.RequestTimeout = d.RequestTimeout
	}
	if g.MaxBodySize == 0 {
		g.MaxBodySize = d.MaxBodySize
	}
	if g.Items.HasMore == "" {
		g.Items.HasMore = d.Items.HasMore
	}
	if len(g.Realtime.AllowedOrigins) == 0 {
		g.Realtime.AllowedOrigins = d.Realtime.AllowedOrigins
	}
	if g.Realtime.SendBuffer == 0 {
		g.Realtime.SendBuffer = d.Realtime.SendBuffer
	}
	if g.Realtime.WriteWait == 0 {
		g.Realtime.WriteWait = d.Realtime.WriteWait
	}
	if g.Realtime.PongWait == 0 {
		g.Realtime.PongWait = d.Realtime.PongWait
	}
	if g.Realtime.MaxMessageSize == 0 {
		g.Realtime.MaxMessageSize = d.Realtime.MaxMessageSize
	}
}

// ApplyEnvOverrides reads ITEMDECK_HAS_MORE.
func (g *GatewayConfig) ApplyEnvOverrides() {
	if val := os.Getenv("ITEMDECK_HAS_MORE"); val != "" {
		g.Items.HasMore = val
	}
}

// ResolvePaths is a no-op; the gateway has no file paths.
func (g *GatewayConfig) ResolvePaths(_ string) {}

// Validate also normalizes route prefixes to "" or "/x" without a
// trailing slash.
func (g *GatewayConfig) Validate() error {
	if len(g.RoutePrefixes) == 0 {
		return fmt.Errorf("gateway.route_prefixes must not be empty")
	}
	seen := make([]string, 0, len(g.RoutePrefixes))
	for _, p := range g.RoutePrefixes {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" && !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if slices.Contains(seen, p) {
			return fmt.Errorf("gateway.route_prefixes has duplicate %q", p)
		}
		seen = append(seen, p)
	}
	g.RoutePrefixes = seen

	if _, err := items.ParseHasMoreMode(g.Items.HasMore); err != nil {
		return fmt.Errorf("gateway.items.has_more: %w", err)
	}
	if g.MaxBodySize <= 0 {
		return fmt.Errorf("gateway.max_body_size must be positive")
	}
	if g.Realtime.PongWait <= 0 || g.Realtime.WriteWait <= 0 {
		return fmt.Errorf("gateway.realtime timeouts must be positive")
	}
	return nil
}

// HasMoreMode returns the parsed hasMore policy. It assumes Validate passed.
func (g *GatewayConfig) HasMoreMode() items.HasMoreMode {
	mode, _ := items.ParseHasMoreMode(g.Items.HasMore)
	return mode
}
