package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/state"
)

// ErrEmptyBasket is returned when checkout is requested with no items.
var ErrEmptyBasket = errors.New("basket is empty")

// Basket renders the basket contents.
type Basket struct {
	events event.Publisher
	count  int
}

// NewBasket creates a basket view.
func NewBasket(events event.Publisher) *Basket {
	return &Basket{events: events}
}

// Render lists items with the total. The checkout button is disabled when
// the list is empty.
func (b *Basket) Render(items []string, total decimal.Decimal) string {
	b.count = len(items)

	var sb strings.Builder
	sb.WriteString("Корзина\n")
	if len(items) == 0 {
		sb.WriteString("Корзина пуста\n")
	}
	for _, it := range items {
		sb.WriteString(it)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "Итого: %s %s\n", Amount(total), PriceSuffix)
	if len(items) == 0 {
		sb.WriteString("( Оформить )")
	} else {
		sb.WriteString("[ Оформить ]")
	}
	return sb.String()
}

// Checkout is the checkout button's action.
func (b *Basket) Checkout(ctx context.Context) error {
	if b.count == 0 {
		return ErrEmptyBasket
	}
	return b.events.Publish(ctx, state.TopicOrderOpen, nil)
}
