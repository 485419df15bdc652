package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/syntrixbase/itemdeck/internal/core/pubsub"
)

var (
	_ pubsub.Provider    = (*Provider)(nil)
	_ pubsub.Connectable = (*Provider)(nil)
)

type connectFunc func(url string, opts ...nats.Option) (*nats.Conn, error)

// Provider owns one NATS connection and the JetStream context built on it.
type Provider struct {
	url         string
	name        string
	dialTimeout time.Duration

	nc     *nats.Conn
	js     JetStream
	logger *slog.Logger

	connect   connectFunc
	newStream func(nc *nats.Conn) (JetStream, error)
}

// NewProvider creates an unconnected provider. Connect must be called
// before NewPublisher or NewConsumer.
func NewProvider(url, clientName string, dialTimeout time.Duration, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		url:         url,
		name:        clientName,
		dialTimeout: dialTimeout,
		logger:      logger.With("component", "pubsub-nats"),
		connect:     nats.Connect,
		newStream:   NewJetStream,
	}
}

// Connect dials the server and initialises JetStream.
func (p *Provider) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := []nats.Option{
		nats.Name(p.name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				p.logger.Warn("Disconnected from NATS", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			p.logger.Info("Reconnected to NATS", "url", nc.ConnectedUrl())
		}),
	}
	if p.dialTimeout > 0 {
		opts = append(opts, nats.Timeout(p.dialTimeout))
	}

	nc, err := p.connect(p.url, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", p.url, err)
	}

	js, err := p.newStream(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream: %w", err)
	}

	p.nc = nc
	p.js = js
	p.logger.Info("Connected to NATS", "url", p.url)
	return nil
}

func (p *Provider) NewPublisher(opts pubsub.PublisherOptions) (pubsub.Publisher, error) {
	if p.js == nil {
		return nil, fmt.Errorf("NATS not connected, call Connect first")
	}
	return NewPublisher(p.js, opts)
}

func (p *Provider) NewConsumer(opts pubsub.ConsumerOptions) (pubsub.Consumer, error) {
	if p.js == nil {
		return nil, fmt.Errorf("NATS not connected, call Connect first")
	}
	return NewConsumer(p.js, opts)
}

// Close closes the connection. It is idempotent.
func (p *Provider) Close() error {
	if p.nc != nil {
		p.logger.Info("Closing NATS connection")
		p.nc.Close()
	}
	p.nc = nil
	p.js = nil
	return nil
}
