package messaging

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"workable/application/ports"
	"workable/domain/events"
	pkgerrors "workable/pkg/errors"
)

// WildcardType subscribes a handler to every event type
const WildcardType = "*"

// MemoryBus is a synchronous in-process event bus. Handlers run on the
// publisher's goroutine in subscription order; a failing handler does
// not stop the fan-out.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string][]ports.EventHandler
	logger      *zap.Logger
}

// NewMemoryBus creates a new in-memory event bus
func NewMemoryBus(logger *zap.Logger) *MemoryBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryBus{
		subscribers: make(map[string][]ports.EventHandler),
		logger:      logger,
	}
}

// Subscribe registers a handler for an event type. Use WildcardType to
// receive every event.
func (b *MemoryBus) Subscribe(eventType string, handler ports.EventHandler) error {
	if handler == nil {
		return pkgerrors.NewInternalError("HANDLER_REQUIRED", "Cannot subscribe a nil handler")
	}
	if eventType == "" {
		return pkgerrors.NewInternalError("EVENT_TYPE_REQUIRED", "Cannot subscribe to an empty event type")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)

	b.logger.Debug("Handler subscribed",
		zap.String("eventType", eventType),
		zap.Int("handlers", len(b.subscribers[eventType])),
	)
	return nil
}

// Publish delivers the events to every matching subscriber. Handler
// failures are collected and returned as one aggregated error.
func (b *MemoryBus) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	var result error

	for _, event := range evts {
		if event == nil {
			continue
		}

		handlers := b.handlersFor(event.GetEventType())

		b.logger.Debug("Publishing event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Int("handlers", len(handlers)),
		)

		for _, handler := range handlers {
			if !handler.CanHandle(event.GetEventType()) {
				continue
			}
			if err := handler.Handle(ctx, event); err != nil {
				b.logger.Warn("Event handler failed",
					zap.String("eventType", event.GetEventType()),
					zap.Error(err),
				)
				result = multierr.Append(result, err)
			}
		}
	}

	return result
}

// handlersFor snapshots the matching subscriber lists so handlers can
// subscribe further handlers without deadlocking
func (b *MemoryBus) handlersFor(eventType string) []ports.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := b.subscribers[eventType]
	wild := b.subscribers[WildcardType]

	handlers := make([]ports.EventHandler, 0, len(typed)+len(wild))
	handlers = append(handlers, typed...)
	handlers = append(handlers, wild...)
	return handlers
}
