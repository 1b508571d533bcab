package model

import (
	"github.com/shopspring/decimal"

	"github.com/dshills/larek/internal/event"
)

// Category classifies a product.
type Category string

// Known categories.
const (
	CategorySoftSkill  Category = "софт-скил"
	CategoryHardSkill  Category = "хард-скил"
	CategoryOther      Category = "другое"
	CategoryAdditional Category = "дополнительное"
	CategoryButton     Category = "кнопка"
)

// Categories lists every known category.
var Categories = []Category{
	CategorySoftSkill,
	CategoryHardSkill,
	CategoryOther,
	CategoryAdditional,
	CategoryButton,
}

// IsKnown reports whether c is one of Categories.
func (c Category) IsKnown() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Product is a catalog entry as served by the API.
type Product struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Category    Category            `json:"category"`
	Price       decimal.NullDecimal `json:"price"`
}

// Priced reports whether the product has a price and can be bought.
func (p Product) Priced() bool {
	return p.Price.Valid
}

// PriceOf returns a valid price.
func PriceOf(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// CardItem is a catalog product with basket membership.
// The product is copied when the item is created; later changes to the
// source record are not seen.
type CardItem struct {
	Model
	Product

	// InBasket is true while the product's id is in the order draft.
	InBasket bool
}

// NewCardItem wraps p and binds it to events.
func NewCardItem(p Product, events event.Publisher) *CardItem {
	item := &CardItem{Product: p}
	item.Model = NewModel(events, item)
	return item
}
