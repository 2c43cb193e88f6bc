// Package tracking delivers run events to progress reporters.
package tracking

import (
	"context"
	"log/slog"
	"sync"

	"github.com/helixml/mt2mw/domain/migration"
)

var _ migration.Reporter = (*Tracker)(nil)

// Tracker fans run events out to subscribed reporters. A failing reporter
// is logged and never stops delivery to the others.
type Tracker struct {
	subscribers []migration.Reporter
	logger      *slog.Logger
	mu          sync.RWMutex
}

// NewTracker creates a Tracker with no subscribers.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		subscribers: make([]migration.Reporter, 0),
		logger:      logger,
	}
}

// Subscribe adds a reporter to receive events.
func (t *Tracker) Subscribe(reporter migration.Reporter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, reporter)
}

// OnEvent delivers event to every subscriber in subscription order.
func (t *Tracker) OnEvent(ctx context.Context, event migration.Event) error {
	t.mu.RLock()
	subscribers := make([]migration.Reporter, len(t.subscribers))
	copy(subscribers, t.subscribers)
	t.mu.RUnlock()

	for _, subscriber := range subscribers {
		if err := subscriber.OnEvent(ctx, event); err != nil {
			t.logger.ErrorContext(ctx, "failed to notify subscriber",
				slog.String("error", err.Error()),
				slog.String("event", event.Kind().String()),
			)
		}
	}
	return nil
}
