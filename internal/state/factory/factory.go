// Package factory opens the configured state backend.
package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syntrixbase/itemdeck/internal/state"
	"github.com/syntrixbase/itemdeck/internal/state/config"
	"github.com/syntrixbase/itemdeck/internal/state/mongo"
	"github.com/syntrixbase/itemdeck/internal/state/pebble"
	"github.com/syntrixbase/itemdeck/internal/state/redis"
)

// New opens the backend selected by cfg and bounds its operations with
// cfg.Timeout.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (state.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		store state.Store
		err   error
	)
	switch cfg.Backend {
	case "", config.BackendMemory:
		store = state.NewMemoryStore()
	case config.BackendPebble:
		store, err = pebble.Open(cfg.Pebble.Path, logger)
	case config.BackendMongo:
		store, err = mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DatabaseName, cfg.Mongo.Collection, logger)
	case config.BackendRedis:
		store, err = redis.Connect(ctx, redis.Options{
			Addr:        cfg.Redis.Addr,
			Username:    cfg.Redis.Username,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			Key:         cfg.Redis.Key,
			DialTimeout: cfg.Redis.DialTimeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported state backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("State store ready", "backend", cfg.Backend)
	return state.WithTimeout(store, cfg.Timeout), nil
}
