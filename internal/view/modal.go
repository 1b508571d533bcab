package view

import (
	"context"
	"io"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/state"
)

// Modal shows one piece of content over the page.
type Modal struct {
	out    io.Writer
	events event.Publisher

	open    bool
	content string
}

// NewModal creates a modal writing to out.
func NewModal(out io.Writer, events event.Publisher) *Modal {
	return &Modal{out: out, events: events}
}

// Render shows content and emits modal:open.
func (m *Modal) Render(ctx context.Context, content string) error {
	m.content = content
	m.open = true
	if _, err := io.WriteString(m.out, "\n"+content+"\n"); err != nil {
		return err
	}
	return m.events.Publish(ctx, state.TopicModalOpen, nil)
}

// Close hides the modal and emits modal:close. Closing a closed modal does
// nothing.
func (m *Modal) Close(ctx context.Context) error {
	if !m.open {
		return nil
	}
	m.open = false
	m.content = ""
	return m.events.Publish(ctx, state.TopicModalClose, nil)
}

// IsOpen reports whether the modal is shown.
func (m *Modal) IsOpen() bool {
	return m.open
}

// Content returns what the modal currently shows.
func (m *Modal) Content() string {
	return m.content
}
