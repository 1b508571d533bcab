// Package event provides the synchronous publish/subscribe bus that
// decouples the storefront state from its views.
//
// Models publish change notifications; views and the presenter subscribe to
// them. Nobody reads another component's state through the bus, they only
// react to what is published.
//
// # Selectors
//
// A subscription is keyed by a topic.Selector. A plain topic.Topic matches
// one event name exactly; regexp, glob and predicate selectors match many:
//
//	bus.SubscribeFunc(topic.Topic("basket:open"), showBasket)
//	bus.SubscribeFunc(topic.MustRegexp(`^order\..*:change`), onOrderField)
//	bus.SubscribeAll(traceEverything)
//
// # Dispatch Order
//
// Publish is fully synchronous. For one event it runs the exact-name
// subscribers in registration order, then the selector subscribers
// (SubscribeAll included) in registration order. Nothing is queued and
// repeated subscriptions are not merged.
//
// # Failures
//
// The bus does not isolate handlers. The first error stops dispatch and is
// returned from Publish wrapped in *HandlerError, and a panic propagates to
// the publisher. Handlers that must not block their neighbours have to deal
// with their own failures.
//
// # Typed Payloads
//
//	event.On(bus, topic.Topic("preview:open"), func(ctx context.Context, item *model.CardItem) error {
//	    ...
//	})
//
// # Thread Safety
//
// Subscribing and unsubscribing are safe for concurrent use and may happen
// from inside a handler. The storefront itself publishes from a single
// goroutine.
package event
