// Package state holds the client-committed selection set and custom order.
//
// Both fields are replaced together: Replace overwrites the whole state and
// concurrent writers race with last-writer-wins semantics. Callers that need
// to detect a concurrent write use ReplaceIf with the Version they read.
package state

import (
	"context"
	"errors"
	"slices"
)

var (
	// ErrStorageUnavailable wraps every failure of the backing storage.
	ErrStorageUnavailable = errors.New("state storage unavailable")

	// ErrVersionConflict is returned by ReplaceIf when the stored version
	// differs from the expected one.
	ErrVersionConflict = errors.New("state version conflict")
)

// State is the persisted selection and order.
type State struct {
	SelectedIDs []int  `json:"selectedIds" bson:"selected_ids"`
	SortedOrder []int  `json:"sortedOrder" bson:"sorted_order"`
	Version     uint64 `json:"version" bson:"version"`
}

// Empty returns the state of a store that was never written.
func Empty() State {
	return State{SelectedIDs: []int{}, SortedOrder: []int{}}
}

// Clone returns a deep copy of s with non-nil slices.
func (s State) Clone() State {
	out := State{
		SelectedIDs: slices.Clone(s.SelectedIDs),
		SortedOrder: slices.Clone(s.SortedOrder),
		Version:     s.Version,
	}
	if out.SelectedIDs == nil {
		out.SelectedIDs = []int{}
	}
	if out.SortedOrder == nil {
		out.SortedOrder = []int{}
	}
	return out
}

// Reader reads the current state.
type Reader interface {
	Read(ctx context.Context) (State, error)
}

// Store is the single source of truth for the selection set and saved order.
type Store interface {
	Reader

	// Replace normalizes s and overwrites the stored state with it. The
	// returned state carries the new version. The Version field of s is
	// ignored.
	Replace(ctx context.Context, s State) (State, error)

	// ReplaceIf behaves like Replace but fails with ErrVersionConflict
	// unless the stored version equals expected.
	ReplaceIf(ctx context.Context, s State, expected uint64) (State, error)

	// Close releases the backend.
	Close(ctx context.Context) error
}
