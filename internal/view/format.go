// Package view renders the storefront as plain text and turns user actions
// into events. Views never read the application state; the presenter hands
// them the data to show.
package view

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dshills/larek/internal/model"
)

// Text shown for prices and buttons.
const (
	PriceSuffix  = "синапсов"
	PriceNone    = "Бесценно"
	ButtonBuy    = "В корзину"
	ButtonInCart = "В корзине"
)

var printer = message.NewPrinter(language.Russian)

// Amount formats a decimal amount with Russian digit grouping.
func Amount(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprint(number.Decimal(d.IntPart()))
	}
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

// PriceText renders a product price, or PriceNone when there is no price.
func PriceText(p decimal.NullDecimal) string {
	if !p.Valid {
		return PriceNone
	}
	return Amount(p.Decimal) + " " + PriceSuffix
}

var categoryClasses = map[model.Category]string{
	model.CategorySoftSkill:  "soft",
	model.CategoryHardSkill:  "hard",
	model.CategoryOther:      "other",
	model.CategoryAdditional: "additional",
	model.CategoryButton:     "button",
}

// CategoryClass returns the badge style for a category. Unknown categories
// are shown as "other".
func CategoryClass(c model.Category) string {
	if cls, ok := categoryClasses[model.Category(strings.ToLower(string(c)))]; ok {
		return cls
	}
	return "other"
}
