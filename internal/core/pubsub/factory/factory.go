// Package factory builds the configured pubsub provider.
package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
	"github.com/syntrixbase/itemdeck/internal/core/pubsub/config"
	"github.com/syntrixbase/itemdeck/internal/core/pubsub/memory"
	"github.com/syntrixbase/itemdeck/internal/core/pubsub/nats"
)

// NewProvider creates and, when needed, connects the provider selected by cfg.
func NewProvider(ctx context.Context, cfg config.Config, logger *slog.Logger) (pubsub.Provider, error) {
	switch cfg.Provider {
	case "", config.ProviderMemory:
		return memory.New(), nil
	case config.ProviderNATS:
		p := nats.NewProvider(cfg.NATS.URL, cfg.NATS.ClientName, cfg.NATS.DialTimeout, logger)
		if err := p.Connect(ctx); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}
}

// PublisherOptions derives the publisher options for cfg.
func PublisherOptions(cfg config.Config) pubsub.PublisherOptions {
	opts := pubsub.PublisherOptions{SubjectPrefix: cfg.SubjectPrefix()}
	if cfg.Provider == config.ProviderNATS {
		storage, _ := pubsub.ParseStorageType(cfg.NATS.Storage)
		opts.StreamName = cfg.NATS.StreamName
		opts.Storage = storage
		opts.MaxAge = cfg.NATS.MaxAge
		opts.RetryAttempts = cfg.NATS.RetryAttempts
	}
	return opts
}

// ConsumerOptions derives ephemeral consumer options matching subject.
func ConsumerOptions(cfg config.Config, subject string) pubsub.ConsumerOptions {
	opts := pubsub.DefaultConsumerOptions()
	opts.FilterSubject = pubsub.JoinSubject(cfg.SubjectPrefix(), subject)
	if cfg.Provider == config.ProviderNATS {
		storage, _ := pubsub.ParseStorageType(cfg.NATS.Storage)
		opts.StreamName = cfg.NATS.StreamName
		opts.Storage = storage
	}
	return opts
}
