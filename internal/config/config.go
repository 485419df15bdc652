// Package config assembles the application configuration from defaults,
// YAML files and ITEMDECK_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	pubsub "github.com/syntrixbase/itemdeck/internal/core/pubsub/config"
	gateway "github.com/syntrixbase/itemdeck/internal/gateway/config"
	"github.com/syntrixbase/itemdeck/internal/server"
	state "github.com/syntrixbase/itemdeck/internal/state/config"
)

// DefaultConfigDir is where LoadConfig looks when no directory is given.
const DefaultConfigDir = "config"

// Config holds the application configuration
type Config struct {
	Server  server.Config         `yaml:"server"`
	Logging LoggingConfig         `yaml:"logging"`
	Gateway gateway.GatewayConfig `yaml:"gateway"`
	State   state.Config          `yaml:"state"`
	PubSub  pubsub.Config         `yaml:"pubsub"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:  server.DefaultConfig(),
		Logging: DefaultLoggingConfig(),
		Gateway: gateway.DefaultGatewayConfig(),
		State:   state.DefaultConfig(),
		PubSub:  pubsub.DefaultConfig(),
	}
}

// LoadConfig loads configuration from files and environment variables.
// Order: defaults -> config.yml -> config.local.yml -> ApplyDefaults ->
// ApplyEnvOverrides -> ResolvePaths -> Validate
func LoadConfig(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir
	}

	// Start with default values so YAML can override them, including bool fields.
	cfg := Default()

	for _, name := range []string{"config.yml", "config.local.yml"} {
		if err := loadFile(filepath.Join(configDir, name), cfg); err != nil {
			return nil, err
		}
	}

	if err := ApplyServiceConfigs(configDir, cfg.services()...); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func (c *Config) services() []ServiceConfig {
	return []ServiceConfig{
		&c.Server,
		&c.Logging,
		&c.Gateway,
		&c.State,
		&c.PubSub,
	}
}

// loadFile merges filename into cfg. A missing file is skipped.
func loadFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return nil
}
