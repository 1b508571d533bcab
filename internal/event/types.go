package event

import "context"

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes an event. A non-nil error aborts the remaining
	// dispatch of the publish that delivered it.
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, evt Event) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// PayloadHandlerFunc handles only the payload of an event, typed as T.
type PayloadHandlerFunc[T any] func(ctx context.Context, payload T) error

// AsHandler converts a PayloadHandlerFunc to a generic Handler.
// Events whose payload is not a T are skipped; a nil payload is delivered
// as the zero value of T.
func AsHandler[T any](fn PayloadHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, evt Event) error {
		if evt.Payload == nil {
			var zero T
			return fn(ctx, zero)
		}
		payload, ok := evt.Payload.(T)
		if !ok {
			return nil
		}
		return fn(ctx, payload)
	})
}

// FilterFunc is a predicate for filtering events.
// Return true to allow the event, false to filter it out.
type FilterFunc func(evt Event) bool

// Stats contains event bus statistics.
type Stats struct {
	// EventsPublished is the total number of Publish calls that dispatched.
	EventsPublished uint64

	// EventsDelivered is the total number of successful handler executions.
	EventsDelivered uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// Subscribers counts registered subscriptions, paused ones included.
	Subscribers int

	// ActiveSubscribers is the current number of active subscriptions.
	ActiveSubscribers int

	// Topics is the number of exact topic names with a subscriber.
	Topics int
}
