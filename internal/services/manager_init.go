package services

import (
	"context"
	"fmt"

	pubsubfactory "github.com/syntrixbase/itemdeck/internal/core/pubsub/factory"
	"github.com/syntrixbase/itemdeck/internal/events"
	"github.com/syntrixbase/itemdeck/internal/gateway"
	"github.com/syntrixbase/itemdeck/internal/gateway/realtime"
	"github.com/syntrixbase/itemdeck/internal/gateway/rest"
	"github.com/syntrixbase/itemdeck/internal/items"
	"github.com/syntrixbase/itemdeck/internal/metrics"
	"github.com/syntrixbase/itemdeck/internal/server"
	"github.com/syntrixbase/itemdeck/internal/state"
)

// Init builds every component. On error the components created so far are
// released by Shutdown.
func (m *Manager) Init(ctx context.Context) error {
	if err := m.initState(ctx); err != nil {
		return err
	}
	if err := m.initEvents(ctx); err != nil {
		return err
	}
	m.initGenerator()
	if err := m.initRealtime(); err != nil {
		return err
	}
	m.initGateway()
	return nil
}

func (m *Manager) initState(ctx context.Context) error {
	store, err := m.newStore(ctx, m.cfg.State, m.logger)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	m.store = store

	// Seed the version gauge so it is meaningful before the first write.
	if s, err := store.Read(ctx); err == nil {
		metrics.StateVersion.Set(float64(s.Version))
	}
	return nil
}

func (m *Manager) initEvents(ctx context.Context) error {
	provider, err := m.newProvider(ctx, m.cfg.PubSub, m.logger)
	if err != nil {
		return fmt.Errorf("failed to create pubsub provider: %w", err)
	}
	m.provider = provider

	opts := pubsubfactory.PublisherOptions(m.cfg.PubSub)
	opts.OnPublish = metrics.ObservePublish
	pub, err := provider.NewPublisher(opts)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	m.events = events.NewPublisher(pub)

	m.store = state.NewNotifyingStore(m.store, m.events, m.logger)
	m.logger.Info("Event bus ready", "provider", m.cfg.PubSub.Provider)
	return nil
}

func (m *Manager) initGenerator() {
	m.generator = items.NewGenerator(
		state.OrderSource(m.store),
		items.WithHasMoreMode(m.cfg.Gateway.HasMoreMode()),
		items.WithLogger(m.logger),
	)
}

func (m *Manager) initRealtime() error {
	if !m.cfg.Gateway.Realtime.Enabled {
		return nil
	}
	consumer, err := m.provider.NewConsumer(pubsubfactory.ConsumerOptions(m.cfg.PubSub, events.SubjectStateReplaced))
	if err != nil {
		return fmt.Errorf("failed to create event consumer: %w", err)
	}
	m.realtime = realtime.NewServer(m.store, consumer, m.cfg.Gateway.Realtime, m.logger)
	return nil
}

func (m *Manager) initGateway() {
	m.server = server.New(m.cfg.Server, m.logger)

	restHandler := rest.NewHandler(m.generator, m.store, m.logger,
		rest.WithRequestTimeout(m.cfg.Gateway.RequestTimeout),
		rest.WithMaxBodySize(m.cfg.Gateway.MaxBodySize),
	)
	opts := []gateway.ServerOption{gateway.WithRoutePrefixes(m.cfg.Gateway.RoutePrefixes...)}
	if m.realtime != nil {
		opts = append(opts, gateway.WithRealtime(m.realtime))
	}
	gateway.NewServer(restHandler, opts...).RegisterRoutes(m.server.HTTPMux())
}
