package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConsumerOptions(t *testing.T) {
	opts := DefaultConsumerOptions()
	assert.Equal(t, 100, opts.ChannelBufSize)
	assert.Empty(t, opts.ConsumerName)
}

func TestParseStorageType(t *testing.T) {
	tests := []struct {
		in   string
		want StorageType
		ok   bool
	}{
		{"", MemoryStorage, true},
		{"memory", MemoryStorage, true},
		{"file", FileStorage, true},
		{"disk", MemoryStorage, false},
	}
	for _, tt := range tests {
		got, ok := ParseStorageType(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestJoinSubject(t *testing.T) {
	assert.Equal(t, "state.replaced", JoinSubject("", "state.replaced"))
	assert.Equal(t, "ITEMDECK.state.replaced", JoinSubject("ITEMDECK", "state.replaced"))
}
