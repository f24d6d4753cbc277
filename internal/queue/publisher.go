package queue

import (
	"context"
	"fmt"

	"github.com/iliyamo/insurance-catalog/internal/config"
	"github.com/iliyamo/insurance-catalog/internal/logging"
)

// Publisher delivers audit events.  Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, ev AuthEvent) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, AuthEvent) error { return nil }
func (Nop) Close() error                             { return nil }

// NewPublisher picks the transport named by cfg.Bus.
func NewPublisher(cfg config.EventsConfig, log logging.Logger) (Publisher, error) {
	switch cfg.Bus {
	case "", "none":
		return Nop{}, nil
	case "rabbitmq", "amqp":
		return NewRabbitPublisher(cfg.RabbitURL, cfg.Subject, log), nil
	case "nats":
		return NewNATSPublisher(cfg.NATSURL, cfg.Subject, log)
	default:
		return nil, fmt.Errorf("unknown EVENT_BUS %q", cfg.Bus)
	}
}
