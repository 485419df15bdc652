// Package realtime pushes committed states to websocket watchers. Each
// connection first receives a snapshot of the stored state and then every
// newer state announced on the message bus.
package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
	"github.com/syntrixbase/itemdeck/internal/events"
	"github.com/syntrixbase/itemdeck/internal/gateway/config"
	"github.com/syntrixbase/itemdeck/internal/server"
	"github.com/syntrixbase/itemdeck/internal/state"
)

type Server struct {
	hub      *Hub
	reader   state.Reader
	consumer pubsub.Consumer
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewServer(reader state.Reader, consumer pubsub.Consumer, cfg config.RealtimeConfig, logger *slog.Logger) *Server {
	if reader == nil {
		panic("state reader cannot be nil")
	}
	if consumer == nil {
		panic("consumer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "realtime")
	s := &Server{
		hub:      NewHub(logger),
		reader:   reader,
		consumer: consumer,
		cfg:      cfg,
		logger:   logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin allows requests without an Origin header, any origin when
// "*" is configured, and otherwise only the listed origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

// RegisterRoutes mounts the watch endpoint under every prefix.
func (s *Server) RegisterRoutes(mux *http.ServeMux, prefixes ...string) {
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}
	for _, p := range prefixes {
		mux.HandleFunc("GET "+p+"/state/watch", s.HandleWS)
	}
}

// Run consumes state change events and fans them out until ctx is
// cancelled or the consumer closes its channel. It must be called once.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	msgs, err := s.consumer.Subscribe(ctx)
	if err != nil {
		cancel()
		return err
	}
	go s.hub.Run(ctx)
	defer func() {
		cancel()
		<-s.hub.Done()
	}()

	s.logger.Info("Realtime watcher started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				s.logger.Info("Realtime event stream closed")
				return nil
			}
			evt, err := events.DecodeStateReplaced(msg.Data())
			if err != nil {
				s.logger.Warn("Discarding malformed state event", "subject", msg.Subject(), "error", err)
				msg.Ack()
				continue
			}
			s.hub.Broadcast(ctx, evt.State)
			msg.Ack()
		}
	}
}

// HandleWS upgrades the request and starts streaming states to the peer.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Watch upgrade failed", "error", err, "request_id", server.GetRequestID(r.Context()))
		return
	}
	client := newClient(s.hub, conn, s.cfg, s.logger)

	// Register before reading the snapshot so no state committed in between
	// is missed. States not newer than the snapshot are skipped on write.
	if !s.hub.Register(r.Context(), client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	snapshot, err := s.reader.Read(r.Context())
	if err == nil {
		err = client.write(TypeSnapshot, snapshot)
	}
	if err != nil {
		s.logger.Warn("Watch snapshot failed", "remote", client.remote, "error", err)
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot failed"))
		s.hub.Unregister(client)
		conn.Close()
		return
	}

	s.logger.Debug("Watch connection established", "remote", client.remote, "version", snapshot.Version)
	go client.writePump()
	go client.readPump()
}
