package view

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dshills/larek/internal/model"
)

// CardData is what a product card shows.
type CardData struct {
	Title       string
	Description string
	Image       string
	Category    model.Category
	Price       decimal.NullDecimal
	InBasket    bool

	// Position is the 1-based line number in the basket.
	Position int
}

// CardDataOf extracts the displayed fields of a catalog item.
func CardDataOf(item *model.CardItem) CardData {
	return CardData{
		Title:       item.Title,
		Description: item.Description,
		Image:       item.Image,
		Category:    item.Category,
		Price:       item.Price,
		InBasket:    item.InBasket,
	}
}

// PreviewButton returns the buy button label and whether it is disabled.
// The button is disabled for products already in the basket and for
// priceless products.
func PreviewButton(d CardData) (label string, disabled bool) {
	switch {
	case d.InBasket:
		return ButtonInCart, true
	case !d.Price.Valid:
		return ButtonBuy, true
	default:
		return ButtonBuy, false
	}
}

// CatalogCard renders a card in the catalog grid. index is the number the
// user types to select it.
func CatalogCard(index int, d CardData) string {
	return fmt.Sprintf("%2d. [%s:%s] %s, %s", index, CategoryClass(d.Category), d.Category, d.Title, PriceText(d.Price))
}

// Preview renders the full product card.
func Preview(d CardData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s:%s]\n", CategoryClass(d.Category), d.Category)
	fmt.Fprintf(&b, "%s\n", d.Title)
	if d.Image != "" {
		fmt.Fprintf(&b, "%s\n", d.Image)
	}
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n", d.Description)
	}
	fmt.Fprintf(&b, "%s\n", PriceText(d.Price))

	label, disabled := PreviewButton(d)
	if disabled {
		fmt.Fprintf(&b, "( %s )", label)
	} else {
		fmt.Fprintf(&b, "[ %s ]", label)
	}
	return b.String()
}

// BasketItem renders one basket line.
func BasketItem(d CardData) string {
	return fmt.Sprintf("%d. %s, %s", d.Position, d.Title, PriceText(d.Price))
}
