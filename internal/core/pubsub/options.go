package pubsub

import "time"

// StorageType selects where a stream keeps its messages.
type StorageType int

const (
	MemoryStorage StorageType = iota
	FileStorage
)

// ParseStorageType maps "memory" and "file" to a StorageType.
func ParseStorageType(s string) (StorageType, bool) {
	switch s {
	case "", "memory":
		return MemoryStorage, true
	case "file":
		return FileStorage, true
	default:
		return MemoryStorage, false
	}
}

// PublisherOptions configures a publisher.
type PublisherOptions struct {
	// StreamName is created on demand by providers that have streams.
	StreamName string

	// SubjectPrefix is prepended to every subject as "prefix.subject".
	SubjectPrefix string

	// RetryAttempts is the number of publish retries. 0 disables retries.
	RetryAttempts int

	Storage StorageType

	// MaxAge bounds how long a stream keeps messages. 0 keeps them until
	// the stream limits are hit.
	MaxAge time.Duration

	// OnPublish is called after each publish attempt.
	OnPublish func(subject string, err error, latency time.Duration)
}

// ConsumerOptions configures a consumer.
type ConsumerOptions struct {
	StreamName string

	// ConsumerName names a durable consumer. Empty means an ephemeral
	// consumer that only sees messages published after Subscribe.
	ConsumerName string

	// FilterSubject restricts delivery to matching subjects.
	FilterSubject string

	ChannelBufSize int

	Storage StorageType
}

// DefaultConsumerOptions returns ConsumerOptions with the default buffer.
func DefaultConsumerOptions() ConsumerOptions {
	return ConsumerOptions{
		ChannelBufSize: 100,
	}
}

// JoinSubject prepends prefix to subject when prefix is set.
func JoinSubject(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}
