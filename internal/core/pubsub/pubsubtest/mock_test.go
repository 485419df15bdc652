package pubsubtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

var (
	_ pubsub.Publisher = (*MockPublisher)(nil)
	_ pubsub.Consumer  = (*MockConsumer)(nil)
	_ pubsub.Message   = (*MockMessage)(nil)
)

func TestMockPublisher(t *testing.T) {
	p := NewMockPublisher()
	data := []byte("a")
	require.NoError(t, p.Publish(context.Background(), "s", data))
	data[0] = 'b'

	assert.Equal(t, []PublishedMessage{{Subject: "s", Data: []byte("a")}}, p.Messages())

	p.SetError(errors.New("down"))
	assert.Error(t, p.Publish(context.Background(), "s", nil))

	require.NoError(t, p.Close())
	assert.True(t, p.IsClosed())
}

func TestMockConsumer(t *testing.T) {
	c := NewMockConsumer()
	assert.False(t, c.Send(NewMockMessage("s", nil)))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := c.Subscribe(ctx)
	require.NoError(t, err)

	msg := NewMockMessage("s", []byte("x"))
	require.True(t, c.Send(msg))
	got := <-ch
	require.NoError(t, got.Ack())
	assert.True(t, msg.IsAcked())

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	c.SetError(errors.New("nope"))
	_, err = c.Subscribe(context.Background())
	assert.Error(t, err)
}
