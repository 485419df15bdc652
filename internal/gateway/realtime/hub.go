package realtime

import (
	"context"
	"log/slog"

	"github.com/syntrixbase/itemdeck/internal/metrics"
	"github.com/syntrixbase/itemdeck/internal/state"
)

// Hub maintains the set of active clients and broadcasts committed states
// to them. A client whose send buffer is full is dropped rather than
// blocking the other clients.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan state.State

	// done is closed when Run returns.
	done chan struct{}

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan state.State),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled. Every remaining client has its
// send channel closed on return.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		metrics.WatchClients.Set(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			metrics.WatchClients.Set(float64(len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				metrics.WatchClients.Set(float64(len(h.clients)))
			}
		case s := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- s:
				default:
					h.logger.Warn("Dropping slow watch client", "remote", c.remote, "version", s.Version)
					delete(h.clients, c)
					close(c.send)
					metrics.WatchDropped.Inc()
				}
			}
			metrics.WatchClients.Set(float64(len(h.clients)))
		}
	}
}

// Register adds c. It reports false when ctx ends or the hub has stopped
// first.
func (h *Hub) Register(ctx context.Context, c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-ctx.Done():
		return false
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its send channel if it is still
// registered.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues s for every registered client.
func (h *Hub) Broadcast(ctx context.Context, s state.State) {
	select {
	case h.broadcast <- s:
	case <-ctx.Done():
	case <-h.done:
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
