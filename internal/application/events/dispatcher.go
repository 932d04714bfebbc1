// Package events dispatches domain events raised by aggregates to the
// handlers that send notifications, write the audit log and count metrics
package events

import (
	"context"
	"sync"

	"github.com/ayurwell/portal/internal/domain/shared"
	"go.uber.org/zap"
)

// Dispatcher is an in-process, synchronous event dispatcher. A failing
// handler is logged and does not stop the others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	logger   *zap.Logger
}

var _ shared.EventDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a new event dispatcher
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger.Named("events"),
	}
}

// Dispatch dispatches events to registered handlers in registration order
func (d *Dispatcher) Dispatch(ctx context.Context, events ...shared.DomainEvent) {
	for _, event := range events {
		d.mu.RLock()
		handlers := d.handlers[event.EventName()]
		d.mu.RUnlock()

		if len(handlers) == 0 {
			d.logger.Debug("No handlers registered for event", zap.String("event", event.EventName()))
			continue
		}

		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				d.logger.Error("Failed to handle event",
					zap.String("event", event.EventName()),
					zap.Error(err),
				)
			}
		}
	}
}

// Register registers an event handler
func (d *Dispatcher) Register(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventName] = append(d.handlers[eventName], handler)
	d.logger.Debug("Registered event handler", zap.String("event", eventName))
}
