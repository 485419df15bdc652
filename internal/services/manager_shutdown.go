package services

import (
	"context"
	"errors"
	"fmt"
)

// Shutdown releases components in the reverse order of Init. It is safe to
// call after a partial Init.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error

	if m.server != nil {
		if err := m.server.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if m.events != nil {
		if err := m.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if m.provider != nil {
		if err := m.provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close pubsub provider: %w", err))
		}
	}

	if m.store != nil {
		if err := m.store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close state store: %w", err))
		}
	}

	m.logger.Info("itemdeck stopped")
	return errors.Join(errs...)
}
