package memory

import (
	"sync"
	"time"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

type message struct {
	data      []byte
	subject   string
	timestamp time.Time
	broker    *broker
	subID     uint64

	mu           sync.Mutex
	numDelivered uint64
	acked        bool
}

func (m *message) Data() []byte {
	return m.data
}

func (m *message) Subject() string {
	return m.subject
}

// Ack is idempotent.
func (m *message) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = true
	return nil
}

// Nak requeues the message on its subscription unless it was acked. A full
// buffer drops the message.
func (m *message) Nak() error {
	m.mu.Lock()
	if m.acked {
		m.mu.Unlock()
		return nil
	}
	m.numDelivered++
	m.mu.Unlock()

	m.broker.redeliver(m)
	return nil
}

func (m *message) Metadata() (pubsub.MessageMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pubsub.MessageMetadata{
		NumDelivered: m.numDelivered,
		Timestamp:    m.timestamp,
		Subject:      m.subject,
	}, nil
}
