package ports

import (
	"context"

	"workable/domain/events"
)

// EventBus defines the interface for publishing domain events
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type EventBus interface {
	// Publish delivers the events to every matching subscriber
	Publish(ctx context.Context, evts ...events.DomainEvent) error

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// EventHandlerFunc adapts a plain function to the EventHandler interface
type EventHandlerFunc func(ctx context.Context, event events.DomainEvent) error

// Handle processes an event by calling the wrapped function
func (f EventHandlerFunc) Handle(ctx context.Context, event events.DomainEvent) error {
	return f(ctx, event)
}

// CanHandle reports true for every event type; routing is done at subscription time
func (f EventHandlerFunc) CanHandle(string) bool {
	return true
}
