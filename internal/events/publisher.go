package events

import (
	"context"
	"fmt"
	"time"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
	"github.com/syntrixbase/itemdeck/internal/state"
)

// Publisher turns state replaces into StateReplaced messages.
type Publisher struct {
	pub pubsub.Publisher
	now func() time.Time
}

var _ state.ChangeNotifier = (*Publisher)(nil)

// NewPublisher wraps pub.
func NewPublisher(pub pubsub.Publisher) *Publisher {
	return &Publisher{pub: pub, now: time.Now}
}

// StateReplaced publishes s.
func (p *Publisher) StateReplaced(ctx context.Context, s state.State) error {
	data, err := NewStateReplaced(s, p.now()).Encode()
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.pub.Publish(ctx, SubjectStateReplaced, data)
}

// Close closes the underlying publisher.
func (p *Publisher) Close() error {
	return p.pub.Close()
}
