package realtime

import "github.com/syntrixbase/itemdeck/internal/state"

// Message types
const (
	// TypeSnapshot is the first message on a connection and carries the
	// state at connect time.
	TypeSnapshot = "snapshot"

	// TypeState carries a state committed after the snapshot.
	TypeState = "state"
)

// Message is the envelope for all server to client messages.
type Message struct {
	Type  string      `json:"type"`
	State state.State `json:"state"`
}
