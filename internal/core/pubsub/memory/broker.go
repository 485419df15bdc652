package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

type broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	closed atomic.Bool
}

type subscription struct {
	id      uint64
	pattern string
	msgCh   chan pubsub.Message
	ctx     context.Context
	cancel  context.CancelFunc
}

func newBroker() *broker {
	return &broker{subs: make(map[uint64]*subscription)}
}

// publish blocks until every matching subscription accepted the message or
// ctx is done. Subscriptions that go away while publishing are skipped.
func (b *broker) publish(ctx context.Context, subject string, data []byte) error {
	if b.closed.Load() {
		return ErrEngineClosed
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	now := time.Now()
	for _, sub := range b.subs {
		if !matchSubject(sub.pattern, subject) {
			continue
		}
		msg := &message{
			data:         data,
			subject:      subject,
			timestamp:    now,
			numDelivered: 1,
			broker:       b,
			subID:        sub.id,
		}
		select {
		case sub.msgCh <- msg:
		case <-sub.ctx.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// redeliver queues msg again without blocking. It reports false when the
// subscription is gone or its buffer is full.
func (b *broker) redeliver(msg *message) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sub, ok := b.subs[msg.subID]
	if !ok {
		return false
	}
	select {
	case sub.msgCh <- msg:
		return true
	default:
		return false
	}
}

func (b *broker) subscribe(ctx context.Context, pattern string, bufSize int) (<-chan pubsub.Message, func(), error) {
	if b.closed.Load() {
		return nil, nil, ErrEngineClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		id:      b.nextID,
		pattern: pattern,
		msgCh:   make(chan pubsub.Message, bufSize),
		ctx:     subCtx,
		cancel:  cancel,
	}
	b.subs[sub.id] = sub

	unsubscribe := func() {
		// Cancel first so a publisher blocked on this subscription lets go
		// of the read lock.
		cancel()
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.subs[sub.id] == sub {
			delete(b.subs, sub.id)
			close(sub.msgCh)
		}
	}

	return sub.msgCh, unsubscribe, nil
}

func (b *broker) close() {
	if b.closed.Swap(true) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		sub.cancel()
		close(sub.msgCh)
		delete(b.subs, id)
	}
}

func (b *broker) subscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
