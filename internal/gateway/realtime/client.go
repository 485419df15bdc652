package realtime

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syntrixbase/itemdeck/internal/gateway/config"
	"github.com/syntrixbase/itemdeck/internal/state"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	remote string

	// Buffered channel of committed states.
	send chan state.State

	// version is the newest version written to the peer. Only the goroutine
	// writing to conn touches it.
	version uint64

	cfg    config.RealtimeConfig
	logger *slog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, cfg config.RealtimeConfig, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		remote: conn.RemoteAddr().String(),
		send:   make(chan state.State, cfg.SendBuffer),
		cfg:    cfg,
		logger: logger,
	}
}

// write sends one message unless the peer already has a state at least as
// new as s.
func (c *Client) write(typ string, s state.State) error {
	if typ == TypeState && s.Version <= c.version {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	if err := c.conn.WriteJSON(Message{Type: typ, State: s.Clone()}); err != nil {
		return err
	}
	c.version = s.Version
	return nil
}

// readPump discards anything the peer sends and keeps the read deadline
// moving with pongs. It returns once the connection fails or is closed.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Watch connection closed", "remote", c.remote, "error", err)
			} else {
				c.logger.Debug("Watch connection closed", "remote", c.remote)
			}
			return
		}
	}
}

// writePump is the only writer to conn once the snapshot has been sent.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case s, ok := <-c.send:
			if !ok {
				// The hub closed the channel.
				c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.write(TypeState, s); err != nil {
				c.logger.Debug("Watch write failed", "remote", c.remote, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
