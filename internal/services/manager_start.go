package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Start serves HTTP and runs the state watcher until ctx is cancelled or
// one of them fails. Shutdown must still be called afterwards.
func (m *Manager) Start(ctx context.Context) error {
	if m.server == nil {
		return errors.New("manager not initialized")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return m.server.Start(gctx)
	})

	if m.realtime != nil {
		g.Go(func() error {
			return m.realtime.Run(gctx)
		})
	}

	m.logger.Info("itemdeck started",
		"port", m.cfg.Server.HTTPPort,
		"prefixes", m.cfg.Gateway.RoutePrefixes,
		"has_more", m.cfg.Gateway.Items.HasMore,
	)
	return g.Wait()
}
