package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/larek/internal/event/topic"
)

// Event is a single published notification.
type Event struct {
	// Name is the event topic (e.g., "items:changed").
	Name topic.Topic

	// Payload is the event-specific data; it may be nil.
	Payload any

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was published.
	Timestamp time.Time
}

// NewEvent creates a new event with the given name and payload.
func NewEvent(name topic.Topic, payload any) Event {
	return Event{
		Name:    name,
		Payload: payload,
		Metadata: Metadata{
			ID:        generateID(),
			Timestamp: time.Now(),
		},
	}
}

// generateID generates a unique identifier.
func generateID() string {
	return uuid.NewString()
}
