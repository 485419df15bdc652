// Package nats implements pubsub.Provider on NATS JetStream.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

// JetStream is the part of jetstream.JetStream used here.
type JetStream interface {
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	CreateOrUpdateConsumer(ctx context.Context, stream string, cfg jetstream.ConsumerConfig) (jetstream.Consumer, error)
	OrderedConsumer(ctx context.Context, stream string, cfg jetstream.OrderedConsumerConfig) (jetstream.Consumer, error)
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NewJetStream creates a JetStream context on nc.
func NewJetStream(nc *nats.Conn) (JetStream, error) {
	if nc == nil {
		return nil, errors.New("nats connection cannot be nil")
	}
	return jetstream.New(nc)
}

// ensureStream creates or updates the stream that captures subjects.
func ensureStream(ctx context.Context, js JetStream, name string, subjects []string, storage pubsub.StorageType, maxAge time.Duration) error {
	st := jetstream.MemoryStorage
	if storage == pubsub.FileStorage {
		st = jetstream.FileStorage
	}
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: subjects,
		Storage:  st,
		MaxAge:   maxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", name, err)
	}
	return nil
}
