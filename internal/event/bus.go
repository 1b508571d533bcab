package event

import (
	"context"
	"sync/atomic"

	"github.com/dshills/larek/internal/event/topic"
	"github.com/dshills/larek/internal/logging"
)

// Publisher is the publishing half of the bus. Models only need this.
type Publisher interface {
	Publish(ctx context.Context, name topic.Topic, payload any) error
}

// Bus is the central event bus interface.
type Bus interface {
	Publisher

	// Subscription
	Subscribe(sel topic.Selector, handler Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(sel topic.Selector, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)
	SubscribeAll(handler Handler, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription)

	// Status
	Stats() Stats

	// Close cancels every subscription. Later publishes reach nobody.
	Close()
}

// bus is the default Bus implementation.
type bus struct {
	registry *Registry
	log      *logging.Logger

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &bus{
		registry: NewRegistry(),
		log:      config.logger.WithComponent("event"),
	}
}

// Publish delivers an event synchronously to every matching handler: exact
// subscribers first, then pattern subscribers, each in registration order.
// All handlers have returned when Publish returns.
//
// Handler failures are not isolated. The first handler error stops the
// dispatch and is returned as a *HandlerError; a panicking handler unwinds
// through Publish and the remaining handlers never run.
//
// Subscriptions added while dispatching are not delivered this event;
// subscriptions removed while dispatching are skipped.
func (b *bus) Publish(ctx context.Context, name topic.Topic, payload any) error {
	if !name.IsValid() {
		return ErrInvalidTopic
	}

	subs := b.registry.Match(name)
	b.eventsPublished.Add(1)
	b.log.Debug("publish %s to %d subscribers", name, len(subs))
	if len(subs) == 0 {
		return nil
	}

	evt := NewEvent(name, payload)
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !sub.shouldDeliver(evt) {
			continue
		}
		if sub.Config().Once {
			if !sub.claim() {
				continue
			}
			b.registry.Remove(sub.ID())
		}

		if err := sub.Handler().Handle(ctx, evt); err != nil {
			b.handlerErrors.Add(1)
			return &HandlerError{
				SubscriptionID: sub.ID(),
				Topic:          name.String(),
				Err:            err,
			}
		}
		b.eventsDelivered.Add(1)
	}

	return nil
}

// Subscribe registers handler for every event the selector matches.
// Subscribing the same handler twice delivers each event to it twice.
func (b *bus) Subscribe(sel topic.Selector, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if sel == nil {
		return nil, ErrNilSelector
	}
	if t, ok := topic.IsExact(sel); ok && !t.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(generateID(), sel, handler, opts...)
	b.registry.Add(sub)
	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *bus) SubscribeFunc(sel topic.Selector, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(sel, fn, opts...)
}

// SubscribeAll registers handler for every event. It sits in the pattern tier.
func (b *bus) SubscribeAll(handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	return b.Subscribe(topic.Any(), handler, opts...)
}

// Unsubscribe removes a subscription. Removing one that is not registered
// is a no-op.
func (b *bus) Unsubscribe(sub Subscription) {
	if sub == nil {
		return
	}
	if s, ok := b.registry.Get(sub.ID()); ok {
		s.cancel()
		b.registry.Remove(s.ID())
	}
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		Subscribers:       b.registry.Count(),
		ActiveSubscribers: b.registry.CountActive(),
		Topics:            len(b.registry.Topics()),
	}
}

// Close cancels and removes every subscription.
func (b *bus) Close() {
	b.registry.Clear()
}

// On subscribes a payload-typed handler. Events whose payload is not a T
// are skipped.
func On[T any](b Bus, sel topic.Selector, fn PayloadHandlerFunc[T], opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(sel, AsHandler(fn), opts...)
}
