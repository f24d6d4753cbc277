package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/iliyamo/insurance-catalog/internal/logging"
)

// NATSPublisher publishes events on a NATS subject.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	log     logging.Logger
}

// NewNATSPublisher connects once and keeps the connection for the life of
// the process; nats.go reconnects on its own.
func NewNATSPublisher(url, subject string, log logging.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("insurance-catalog"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{nc: nc, subject: subject, log: log}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, ev AuthEvent) error {
	if p.nc == nil || p.nc.IsClosed() {
		return nats.ErrConnectionClosed
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(p.subject, body); err != nil {
		p.log.Warn(ctx, "audit publish failed", "bus", "nats", "err", err)
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.nc != nil {
		return p.nc.Drain()
	}
	return nil
}
