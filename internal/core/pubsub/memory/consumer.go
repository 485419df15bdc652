package memory

import (
	"context"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

type consumer struct {
	broker *broker
	opts   pubsub.ConsumerOptions
}

// Subscribe registers a subscription on FilterSubject, or on every subject
// of StreamName when no filter is set. The channel closes when ctx is done
// or the engine is closed.
func (c *consumer) Subscribe(ctx context.Context) (<-chan pubsub.Message, error) {
	pattern := c.opts.FilterSubject
	if pattern == "" {
		if c.opts.StreamName != "" {
			pattern = c.opts.StreamName + ".>"
		} else {
			pattern = ">"
		}
	}

	bufSize := c.opts.ChannelBufSize
	if bufSize <= 0 {
		bufSize = pubsub.DefaultConsumerOptions().ChannelBufSize
	}

	msgCh, unsubscribe, err := c.broker.subscribe(ctx, pattern, bufSize)
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return msgCh, nil
}
