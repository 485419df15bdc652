// Package redis persists the deck state under a single Redis key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/syntrixbase/itemdeck/internal/state"
)

// maxWatchRetries bounds the optimistic retries of an unconditional Replace.
const maxWatchRetries = 16

// Options configures the Redis connection.
type Options struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	Key         string
	DialTimeout time.Duration
}

// Store keeps the JSON encoded state under one key and updates it inside
// WATCH/MULTI transactions, so the version counter never goes backwards.
type Store struct {
	client redis.UniversalClient
	key    string
	logger *slog.Logger
}

var _ state.Store = (*Store)(nil)

// Connect creates a client and verifies it with PING.
func Connect(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	rc := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Username:    opts.Username,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
		PoolSize:    10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("%w: redis connect error: %v", state.ErrStorageUnavailable, err)
	}

	s := NewStore(rc, opts.Key, logger)
	s.logger.Info("Connected to Redis", "addr", opts.Addr, "key", s.key)
	return s, nil
}

// NewStore wraps an existing client.
func NewStore(client redis.UniversalClient, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = "itemdeck:state"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		key:    key,
		logger: logger.With("component", "state-redis"),
	}
}

func (s *Store) Read(ctx context.Context) (state.State, error) {
	return s.load(ctx, s.client)
}

func (s *Store) Replace(ctx context.Context, next state.State) (state.State, error) {
	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		out, err := s.replace(ctx, next, nil)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return out, err
	}
	return state.State{}, fmt.Errorf("%w: too much contention on %s", state.ErrStorageUnavailable, s.key)
}

func (s *Store) ReplaceIf(ctx context.Context, next state.State, expected uint64) (state.State, error) {
	out, err := s.replace(ctx, next, &expected)
	if errors.Is(err, redis.TxFailedErr) {
		return state.State{}, state.ErrVersionConflict
	}
	return out, err
}

func (s *Store) Close(context.Context) error {
	return s.client.Close()
}

func (s *Store) replace(ctx context.Context, next state.State, expected *uint64) (state.State, error) {
	var out state.State
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		if expected != nil && current.Version != *expected {
			return state.ErrVersionConflict
		}

		out = state.Normalize(next)
		out.Version = current.Version + 1
		value, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, value, 0)
			return nil
		})
		return err
	}, s.key)

	switch {
	case err == nil:
		s.logger.Debug("State written", "version", out.Version)
		return out, nil
	case errors.Is(err, redis.TxFailedErr),
		errors.Is(err, state.ErrVersionConflict),
		errors.Is(err, state.ErrStorageUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return state.State{}, err
	default:
		return state.State{}, fmt.Errorf("%w: %v", state.ErrStorageUnavailable, err)
	}
}

func (s *Store) load(ctx context.Context, c redis.Cmdable) (state.State, error) {
	value, err := c.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return state.Empty(), nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return state.State{}, err
		}
		return state.State{}, fmt.Errorf("%w: %v", state.ErrStorageUnavailable, err)
	}

	var out state.State
	if err := json.Unmarshal(value, &out); err != nil {
		return state.State{}, fmt.Errorf("%w: corrupt state record: %v", state.ErrStorageUnavailable, err)
	}
	return out.Clone(), nil
}
