package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pet-adoption-hub/internal/platform/logger"

	"github.com/nats-io/nats.go"
)

const (
	maxReconnects = 5
	reconnectWait = 2 * time.Second
)

// Publisher implementa events.Publisher serializando el payload a JSON.
type Publisher struct {
	conn *nats.Conn
}

func Connect(url, name string, timeout time.Duration, log logger.Logger) (*nats.Conn, error) {
	if log == nil {
		log = logger.NewNop()
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(timeout),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", map[string]any{"error": err})
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", map[string]any{"url": nc.ConnectedUrl()})
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return nc, nil
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close vacía lo pendiente antes de cerrar.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
