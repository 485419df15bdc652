package memory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

type publisher struct {
	broker *broker
	opts   pubsub.PublisherOptions
	closed atomic.Bool
}

func (p *publisher) Publish(ctx context.Context, subject string, data []byte) error {
	if p.closed.Load() {
		return ErrEngineClosed
	}

	start := time.Now()
	fullSubject := pubsub.JoinSubject(p.opts.SubjectPrefix, subject)
	err := p.broker.publish(ctx, fullSubject, data)
	if p.opts.OnPublish != nil {
		p.opts.OnPublish(fullSubject, err, time.Since(start))
	}
	return err
}

func (p *publisher) Close() error {
	p.closed.Store(true)
	return nil
}
