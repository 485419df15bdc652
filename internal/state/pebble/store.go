// Package pebble persists the deck state in an embedded Pebble database.
package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/syntrixbase/itemdeck/internal/state"
)

var stateKey = []byte("state/current")

// Store keeps the state under a single key. Writes are synced before they
// are acknowledged.
type Store struct {
	db     *pebble.DB
	path   string
	logger *slog.Logger

	// serializes read-modify-write of the version counter
	mu sync.Mutex
}

var _ state.Store = (*Store)(nil)

// Open opens (or creates) the database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "state-pebble")

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create store directory: %v", state.ErrStorageUnavailable, err)
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open pebble at %s: %v", state.ErrStorageUnavailable, path, err)
	}

	logger.Info("State store opened", "path", path)
	return &Store{db: db, path: path, logger: logger}, nil
}

func (s *Store) Read(ctx context.Context) (state.State, error) {
	if err := ctx.Err(); err != nil {
		return state.State{}, err
	}
	return s.load()
}

func (s *Store) Replace(ctx context.Context, next state.State) (state.State, error) {
	if err := ctx.Err(); err != nil {
		return state.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return state.State{}, err
	}
	return s.store(next, current.Version+1)
}

func (s *Store) ReplaceIf(ctx context.Context, next state.State, expected uint64) (state.State, error) {
	if err := ctx.Err(); err != nil {
		return state.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return state.State{}, err
	}
	if current.Version != expected {
		return state.State{}, state.ErrVersionConflict
	}
	return s.store(next, expected+1)
}

func (s *Store) Close(context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close pebble: %w", err)
	}
	return nil
}

func (s *Store) load() (state.State, error) {
	value, closer, err := s.db.Get(stateKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return state.Empty(), nil
	}
	if err != nil {
		return state.State{}, fmt.Errorf("%w: %v", state.ErrStorageUnavailable, err)
	}
	defer closer.Close()

	var out state.State
	if err := json.Unmarshal(value, &out); err != nil {
		return state.State{}, fmt.Errorf("%w: corrupt state record: %v", state.ErrStorageUnavailable, err)
	}
	return out.Clone(), nil
}

func (s *Store) store(next state.State, version uint64) (state.State, error) {
	out := state.Normalize(next)
	out.Version = version

	value, err := json.Marshal(out)
	if err != nil {
		return state.State{}, fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.db.Set(stateKey, value, pebble.Sync); err != nil {
		return state.State{}, fmt.Errorf("%w: %v", state.ErrStorageUnavailable, err)
	}
	s.logger.Debug("State written", "version", version)
	return out, nil
}
