package testutil

import (
	"context"
	"sync"

	"github.com/iliyamo/insurance-catalog/internal/queue"
)

// Events records published audit events.
type Events struct {
	mu     sync.Mutex
	Events []queue.AuthEvent
	Err    error
}

func (e *Events) Publish(_ context.Context, ev queue.AuthEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, ev)
	return e.Err
}

func (e *Events) Close() error { return nil }

// Types returns the recorded event types in order.
func (e *Events) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.Events))
	for _, ev := range e.Events {
		out = append(out, ev.Type)
	}
	return out
}
