package view

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/state"
)

// Page is the storefront's main screen: basket counter and catalog.
type Page struct {
	out    io.Writer
	events event.Publisher

	counter int
	catalog []string
	locked  bool
}

// NewPage creates a page writing to out.
func NewPage(out io.Writer, events event.Publisher) *Page {
	return &Page{out: out, events: events}
}

// SetCounter updates the basket counter.
func (p *Page) SetCounter(n int) {
	p.counter = n
}

// Counter returns the basket counter.
func (p *Page) Counter() int {
	return p.counter
}

// SetCatalog replaces the rendered catalog cards.
func (p *Page) SetCatalog(cards []string) {
	p.catalog = cards
}

// SetLocked marks the page as covered by a modal.
func (p *Page) SetLocked(locked bool) {
	p.locked = locked
}

// Locked reports whether a modal covers the page.
func (p *Page) Locked() bool {
	return p.locked
}

// Render writes the page.
func (p *Page) Render() error {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Веб-ларёк ===  Корзина: %d\n", p.counter)
	for _, card := range p.catalog {
		b.WriteString(card)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

// OpenBasket is the basket icon's action.
func (p *Page) OpenBasket(ctx context.Context) error {
	return p.events.Publish(ctx, state.TopicBasketOpen, nil)
}
