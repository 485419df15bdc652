package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

type jetStreamPublisher struct {
	js   JetStream
	opts pubsub.PublisherOptions
}

// NewPublisher creates a publisher and makes sure its stream exists. The
// stream captures "<prefix>.>" or "<stream>.>" when no prefix is set.
func NewPublisher(js JetStream, opts pubsub.PublisherOptions) (pubsub.Publisher, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream cannot be nil")
	}

	if opts.StreamName != "" {
		subject := opts.StreamName + ".>"
		if opts.SubjectPrefix != "" {
			subject = opts.SubjectPrefix + ".>"
		}
		if err := ensureStream(context.Background(), js, opts.StreamName, []string{subject}, opts.Storage, opts.MaxAge); err != nil {
			return nil, err
		}
	}

	return &jetStreamPublisher{js: js, opts: opts}, nil
}

func (p *jetStreamPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	start := time.Now()
	fullSubject := pubsub.JoinSubject(p.opts.SubjectPrefix, subject)

	var publishOpts []jetstream.PublishOpt
	if p.opts.RetryAttempts > 0 {
		publishOpts = append(publishOpts, jetstream.WithRetryAttempts(p.opts.RetryAttempts))
	}

	_, err := p.js.Publish(ctx, fullSubject, data, publishOpts...)
	if p.opts.OnPublish != nil {
		p.opts.OnPublish(fullSubject, err, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", fullSubject, err)
	}
	return nil
}

// Close is a no-op; the connection belongs to the Provider.
func (p *jetStreamPublisher) Close() error {
	return nil
}
