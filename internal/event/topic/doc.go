// Package topic provides event names and subscription selectors for the event bus.
//
// # Topic Format
//
// Storefront events are named "<subject>:<action>":
//
//	items:changed
//	preview:open
//	formErrorsOrder:change
//
// Form field events add a dotted field segment to the subject:
//
//	order.address:change
//	contacts.email:change
//
// # Selectors
//
// A subscription is keyed by a Selector. A plain Topic is an exact selector;
// everything else is a predicate over topic names:
//
//	topic.Topic("basket:open")          exact name
//	topic.MustRegexp(`^order\..*:change`) regular expression
//	topic.Glob("contacts.*")            dot-segment wildcard (* one, ** many)
//	topic.Func(func(t Topic) bool {...}) arbitrary predicate
//	topic.Any()                         every event
//
// The bus dispatches exact selectors before predicate selectors.
package topic
