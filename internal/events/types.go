// Package events defines the state change events carried on the message bus.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/syntrixbase/itemdeck/internal/state"
)

// SubjectStateReplaced is the subject, before any provider prefix, of
// StateReplaced events.
const SubjectStateReplaced = "state.replaced"

// Type names an event kind.
type Type string

const TypeStateReplaced Type = "state.replaced"

// StateReplaced is published after every committed state replace.
type StateReplaced struct {
	Type       Type        `json:"type"`
	State      state.State `json:"state"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewStateReplaced builds the event for s.
func NewStateReplaced(s state.State, now time.Time) StateReplaced {
	return StateReplaced{
		Type:       TypeStateReplaced,
		State:      s.Clone(),
		OccurredAt: now.UTC(),
	}
}

// Encode serializes the event.
func (e StateReplaced) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeStateReplaced parses a StateReplaced payload.
func DecodeStateReplaced(data []byte) (StateReplaced, error) {
	var e StateReplaced
	if err := json.Unmarshal(data, &e); err != nil {
		return StateReplaced{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if e.Type != TypeStateReplaced {
		return StateReplaced{}, fmt.Errorf("unexpected event type %q", e.Type)
	}
	e.State = e.State.Clone()
	return e, nil
}
