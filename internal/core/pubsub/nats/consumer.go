package nats

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

type jetStreamConsumer struct {
	js     JetStream
	opts   pubsub.ConsumerOptions
	logger *slog.Logger
}

// NewConsumer creates a consumer on an existing JetStream context.
func NewConsumer(js JetStream, opts pubsub.ConsumerOptions) (pubsub.Consumer, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream cannot be nil")
	}
	if opts.StreamName == "" {
		return nil, fmt.Errorf("stream name is required")
	}
	if opts.ChannelBufSize <= 0 {
		opts.ChannelBufSize = pubsub.DefaultConsumerOptions().ChannelBufSize
	}
	return &jetStreamConsumer{
		js:     js,
		opts:   opts,
		logger: slog.Default().With("component", "pubsub-nats", "stream", opts.StreamName),
	}, nil
}

// Subscribe creates a durable consumer when ConsumerName is set and an
// ordered ephemeral consumer delivering only new messages otherwise.
func (c *jetStreamConsumer) Subscribe(ctx context.Context) (<-chan pubsub.Message, error) {
	filterSubject := c.opts.FilterSubject
	if filterSubject == "" {
		filterSubject = c.opts.StreamName + ".>"
	}

	if err := ensureStream(ctx, c.js, c.opts.StreamName, []string{c.opts.StreamName + ".>"}, c.opts.Storage, 0); err != nil {
		return nil, err
	}

	var (
		consumer jetstream.Consumer
		err      error
	)
	if c.opts.ConsumerName != "" {
		consumer, err = c.js.CreateOrUpdateConsumer(ctx, c.opts.StreamName, jetstream.ConsumerConfig{
			Durable:       c.opts.ConsumerName,
			AckPolicy:     jetstream.AckExplicitPolicy,
			FilterSubject: filterSubject,
		})
	} else {
		consumer, err = c.js.OrderedConsumer(ctx, c.opts.StreamName, jetstream.OrderedConsumerConfig{
			FilterSubjects: []string{filterSubject},
			DeliverPolicy:  jetstream.DeliverNewPolicy,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	msgCh := make(chan pubsub.Message, c.opts.ChannelBufSize)
	var closing atomic.Bool

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		if closing.Load() {
			_ = msg.Nak()
			return
		}
		select {
		case msgCh <- wrapMessage(msg):
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		close(msgCh)
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}

	c.logger.Info("Consumer subscribed", "filter", filterSubject)

	go func() {
		<-ctx.Done()
		closing.Store(true)
		cc.Stop()
		close(msgCh)
		c.logger.Info("Consumer stopped")
	}()

	return msgCh, nil
}
