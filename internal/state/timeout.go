package state

import (
	"context"
	"time"
)

// timeoutStore bounds every call to the wrapped store.
type timeoutStore struct {
	Store
	timeout time.Duration
}

// WithTimeout wraps store so every operation runs with at most d. A zero or
// negative d returns store unchanged.
func WithTimeout(store Store, d time.Duration) Store {
	if d <= 0 {
		return store
	}
	return &timeoutStore{Store: store, timeout: d}
}

func (t *timeoutStore) Read(ctx context.Context) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Store.Read(ctx)
}

func (t *timeoutStore) Replace(ctx context.Context, s State) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Store.Replace(ctx, s)
}

func (t *timeoutStore) ReplaceIf(ctx context.Context, s State, expected uint64) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Store.ReplaceIf(ctx, s, expected)
}
