// Package model holds the storefront records and the change-emitting
// wrapper they are built on.
package model

import (
	"context"
	"errors"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/event/topic"
)

// ErrNoPublisher is returned by EmitChanges on a Model built without a bus.
var ErrNoPublisher = errors.New("model has no event publisher")

// Model gives a record the ability to announce its own changes.
// Embed it and initialize it with NewModel, passing the embedding value as
// owner so that EmitChanges without a payload sends the record itself.
type Model struct {
	events event.Publisher
	owner  any
}

// NewModel binds a model to a publisher and its owning record.
func NewModel(events event.Publisher, owner any) Model {
	return Model{events: events, owner: owner}
}

// Events returns the publisher the model emits through.
func (m Model) Events() event.Publisher {
	return m.events
}

// EmitChanges publishes name with payload[0], or with the owner when no
// payload is given.
func (m Model) EmitChanges(ctx context.Context, name topic.Topic, payload ...any) error {
	if m.events == nil {
		return ErrNoPublisher
	}
	var p any = m.owner
	if len(payload) > 0 {
		p = payload[0]
	}
	return m.events.Publish(ctx, name, p)
}
