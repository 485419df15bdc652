// Package pubsub is the message bus used to fan state changes out to
// watchers. Two providers exist: an in-process engine for a single node and
// NATS JetStream for several nodes sharing one state backend.
package pubsub

import (
	"context"
	"io"
	"time"
)

// Message is one received message.
type Message interface {
	// Data returns the raw payload.
	Data() []byte

	// Subject returns the subject the message was published on.
	Subject() string

	// Ack acknowledges processing.
	Ack() error

	// Nak asks for redelivery.
	Nak() error

	// Metadata returns delivery information.
	Metadata() (MessageMetadata, error)
}

// MessageMetadata contains delivery information about a message.
type MessageMetadata struct {
	NumDelivered uint64
	Timestamp    time.Time
	Subject      string
	Stream       string
	Consumer     string
}

// Publisher publishes messages.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// Consumer consumes messages.
type Consumer interface {
	// Subscribe starts consuming and returns a channel that is closed when
	// ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan Message, error)
}

// Provider creates publishers and consumers on one underlying broker.
type Provider interface {
	io.Closer

	NewPublisher(opts PublisherOptions) (Publisher, error)
	NewConsumer(opts ConsumerOptions) (Consumer, error)
}

// Connectable is implemented by providers that must dial before use.
type Connectable interface {
	Connect(ctx context.Context) error
}
