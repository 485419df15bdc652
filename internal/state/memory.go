package state

import (
	"context"
	"sync"
)

// MemoryStore keeps the state in process memory. It is the default backend
// and loses its content on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	current State
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store at version 0.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{current: Empty()}
}

func (m *MemoryStore) Read(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone(), nil
}

func (m *MemoryStore) Replace(ctx context.Context, s State) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	next := Normalize(s)

	m.mu.Lock()
	defer m.mu.Unlock()
	next.Version = m.current.Version + 1
	m.current = next
	return next.Clone(), nil
}

func (m *MemoryStore) ReplaceIf(ctx context.Context, s State, expected uint64) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	next := Normalize(s)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.Version != expected {
		return State{}, ErrVersionConflict
	}
	next.Version = expected + 1
	m.current = next
	return next.Clone(), nil
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}
