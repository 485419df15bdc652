// Package config holds the message bus settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

const (
	ProviderMemory = "memory"
	ProviderNATS   = "nats"
)

// Config selects and configures the pubsub provider.
type Config struct {
	Provider string     `yaml:"provider"`
	NATS     NATSConfig `yaml:"nats"`
}

// NATSConfig configures the JetStream provider.
type NATSConfig struct {
	URL           string        `yaml:"url"`
	ClientName    string        `yaml:"client_name"`
	StreamName    string        `yaml:"stream_name"`
	Storage       string        `yaml:"storage"`
	MaxAge        time.Duration `yaml:"max_age"`
	RetryAttempts int           `yaml:"retry_attempts"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
}

func DefaultConfig() Config {
	return Config{
		Provider: ProviderMemory,
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			ClientName:    "itemdeck",
			StreamName:    "ITEMDECK",
			Storage:       "memory",
			MaxAge:        time.Hour,
			RetryAttempts: 2,
			DialTimeout:   5 * time.Second,
		},
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.NATS.URL == "" {
		c.NATS.URL = d.NATS.URL
	}
	if c.NATS.ClientName == "" {
		c.NATS.ClientName = d.NATS.ClientName
	}
	if c.NATS.StreamName == "" {
		c.NATS.StreamName = d.NATS.StreamName
	}
	if c.NATS.Storage == "" {
		c.NATS.Storage = d.NATS.Storage
	}
	if c.NATS.DialTimeout == 0 {
		c.NATS.DialTimeout = d.NATS.DialTimeout
	}
}

// ApplyEnvOverrides reads ITEMDECK_PUBSUB_PROVIDER, ITEMDECK_NATS_URL and
// ITEMDECK_NATS_RETRY_ATTEMPTS.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("ITEMDECK_PUBSUB_PROVIDER"); val != "" {
		c.Provider = val
	}
	if val := os.Getenv("ITEMDECK_NATS_URL"); val != "" {
		c.NATS.URL = val
	}
	if val := os.Getenv("ITEMDECK_NATS_RETRY_ATTEMPTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.NATS.RetryAttempts = n
		}
	}
}

// ResolvePaths is a no-op; the bus has no file paths.
func (c *Config) ResolvePaths(_ string) {}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMemory:
		return nil
	case ProviderNATS:
	default:
		return fmt.Errorf("pubsub.provider must be %q or %q, got %q", ProviderMemory, ProviderNATS, c.Provider)
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("pubsub.nats.url is required")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("pubsub.nats.stream_name is required")
	}
	if _, ok := pubsub.ParseStorageType(c.NATS.Storage); !ok {
		return fmt.Errorf("pubsub.nats.storage must be memory or file, got %q", c.NATS.Storage)
	}
	if c.NATS.RetryAttempts < 0 {
		return fmt.Errorf("pubsub.nats.retry_attempts must be >= 0")
	}
	return nil
}

// SubjectPrefix is the prefix every published subject carries. It equals
// the stream name so the stream captures "<stream>.>".
func (c *Config) SubjectPrefix() string {
	if c.Provider == ProviderNATS {
		return c.NATS.StreamName
	}
	return ""
}
