package memory

import (
	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

var _ pubsub.Provider = (*Engine)(nil)

// Engine routes messages between publishers and consumers of one process.
// Every matching subscription receives its own copy of a message.
type Engine struct {
	broker *broker
}

// New creates an engine.
func New() *Engine {
	return &Engine{broker: newBroker()}
}

func (e *Engine) NewPublisher(opts pubsub.PublisherOptions) (pubsub.Publisher, error) {
	if e.IsClosed() {
		return nil, ErrEngineClosed
	}
	return &publisher{broker: e.broker, opts: opts}, nil
}

func (e *Engine) NewConsumer(opts pubsub.ConsumerOptions) (pubsub.Consumer, error) {
	if e.IsClosed() {
		return nil, ErrEngineClosed
	}
	return &consumer{broker: e.broker, opts: opts}, nil
}

// Close closes every subscription channel. It is idempotent.
func (e *Engine) Close() error {
	e.broker.close()
	return nil
}

func (e *Engine) IsClosed() bool {
	return e.broker.closed.Load()
}
