package state

import (
	"context"
	"log/slog"
)

// ChangeNotifier is told about every successfully replaced state.
type ChangeNotifier interface {
	StateReplaced(ctx context.Context, s State) error
}

// NotifyingStore decorates a Store and reports successful replaces to a
// ChangeNotifier. Notification failures are logged; the replace itself has
// already been committed and is still reported as successful.
type NotifyingStore struct {
	Store
	notifier ChangeNotifier
	logger   *slog.Logger
}

// NewNotifyingStore wraps store. A nil notifier disables notifications.
func NewNotifyingStore(store Store, notifier ChangeNotifier, logger *slog.Logger) *NotifyingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyingStore{
		Store:    store,
		notifier: notifier,
		logger:   logger.With("component", "state"),
	}
}

func (n *NotifyingStore) Replace(ctx context.Context, s State) (State, error) {
	out, err := n.Store.Replace(ctx, s)
	if err != nil {
		return out, err
	}
	n.notify(ctx, out)
	return out, nil
}

func (n *NotifyingStore) ReplaceIf(ctx context.Context, s State, expected uint64) (State, error) {
	out, err := n.Store.ReplaceIf(ctx, s, expected)
	if err != nil {
		return out, err
	}
	n.notify(ctx, out)
	return out, nil
}

func (n *NotifyingStore) notify(ctx context.Context, s State) {
	if n.notifier == nil {
		return
	}
	if err := n.notifier.StateReplaced(context.WithoutCancel(ctx), s); err != nil {
		n.logger.Warn("Failed to publish state change", "version", s.Version, "error", err)
	}
}
