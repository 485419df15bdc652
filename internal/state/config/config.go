package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendPebble = "pebble"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

// Config selects and configures the state backend.
type Config struct {
	Backend string        `yaml:"backend"`
	Pebble  PebbleConfig  `yaml:"pebble"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	Timeout time.Duration `yaml:"timeout"` // per operation
}

type PebbleConfig struct {
	Path string `yaml:"path"`
}

type MongoConfig struct {
	URI          string `yaml:"uri"`
	DatabaseName string `yaml:"database_name"`
	Collection   string `yaml:"collection"`
}

type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	Key         string        `yaml:"key"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// DefaultConfig returns the in-memory backend with sensible settings for the
// others.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Pebble: PebbleConfig{
			Path: "data/state",
		},
		Mongo: MongoConfig{
			URI:          "mongodb://localhost:27017",
			DatabaseName: "itemdeck",
			Collection:   "deck_state",
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			Key:         "itemdeck:state",
			DialTimeout: 5 * time.Second,
		},
		Timeout: 5 * time.Second,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Backend == "" {
		c.Backend = defaults.Backend
	}
	if c.Pebble.Path == "" {
		c.Pebble.Path = defaults.Pebble.Path
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = defaults.Mongo.URI
	}
	if c.Mongo.DatabaseName == "" {
		c.Mongo.DatabaseName = defaults.Mongo.DatabaseName
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = defaults.Mongo.Collection
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaults.Redis.Addr
	}
	if c.Redis.Key == "" {
		c.Redis.Key = defaults.Redis.Key
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = defaults.Redis.DialTimeout
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ITEMDECK_STATE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("ITEMDECK_PEBBLE_PATH"); v != "" {
		c.Pebble.Path = v
	}
	if v := os.Getenv("ITEMDECK_MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("ITEMDECK_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("ITEMDECK_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("ITEMDECK_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
}

// ResolvePaths makes a relative pebble path relative to the parent of
// configDir, so data/ ends up next to config/.
func (c *Config) ResolvePaths(configDir string) {
	if c.Pebble.Path != "" && !filepath.IsAbs(c.Pebble.Path) {
		c.Pebble.Path = filepath.Clean(filepath.Join(filepath.Dir(configDir), c.Pebble.Path))
	}
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendPebble:
		if c.Pebble.Path == "" {
			return fmt.Errorf("state.pebble.path is required for the pebble backend")
		}
	case BackendMongo:
		if c.Mongo.URI == "" || c.Mongo.DatabaseName == "" {
			return fmt.Errorf("state.mongo.uri and state.mongo.database_name are required for the mongo backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("state.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown state backend %q (must be memory, pebble, mongo or redis)", c.Backend)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("state.timeout must not be negative")
	}
	return nil
}
