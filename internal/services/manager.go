// Package services assembles the itemdeck process: state store, message
// bus, item generator, HTTP gateway and the state watcher.
package services

import (
	"context"
	"log/slog"

	"github.com/syntrixbase/itemdeck/internal/config"
	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
	pubsubconfig "github.com/syntrixbase/itemdeck/internal/core/pubsub/config"
	pubsubfactory "github.com/syntrixbase/itemdeck/internal/core/pubsub/factory"
	"github.com/syntrixbase/itemdeck/internal/events"
	"github.com/syntrixbase/itemdeck/internal/gateway/realtime"
	"github.com/syntrixbase/itemdeck/internal/items"
	"github.com/syntrixbase/itemdeck/internal/server"
	"github.com/syntrixbase/itemdeck/internal/state"
	stateconfig "github.com/syntrixbase/itemdeck/internal/state/config"
	statefactory "github.com/syntrixbase/itemdeck/internal/state/factory"
)

// Factories used by Init. Tests replace them.
type (
	storeFactory    func(ctx context.Context, cfg stateconfig.Config, logger *slog.Logger) (state.Store, error)
	providerFactory func(ctx context.Context, cfg pubsubconfig.Config, logger *slog.Logger) (pubsub.Provider, error)
)

type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	newStore    storeFactory
	newProvider providerFactory

	store     state.Store
	provider  pubsub.Provider
	events    *events.Publisher
	generator *items.Generator
	realtime  *realtime.Server
	server    server.Service
}

func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:         cfg,
		logger:      logger.With("component", "services"),
		newStore:    statefactory.New,
		newProvider: pubsubfactory.NewProvider,
	}
}

// Addr returns the bound HTTP address once Start is listening.
func (m *Manager) Addr() string {
	if m.server == nil {
		return ""
	}
	return m.server.Addr()
}

// Store returns the state store as seen by the handlers, with change
// notification applied.
func (m *Manager) Store() state.Store {
	return m.store
}
