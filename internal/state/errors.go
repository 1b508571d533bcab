package state

import "errors"

// Errors returned for calls the state cannot honour. These indicate a
// caller bug, not a user input problem; user input problems are reported
// through FormErrors.
var (
	// ErrNilItem is returned when a nil card item is toggled.
	ErrNilItem = errors.New("nil catalog item")

	// ErrItemNotFound is returned when a basket id has no catalog item.
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrPriceless is returned when a product without a price is added to the basket.
	ErrPriceless = errors.New("product has no price")

	// ErrUnknownField is returned for a form field the order does not have.
	ErrUnknownField = errors.New("unknown order field")

	// ErrUnknownPayment is returned for a payment method outside the closed set.
	ErrUnknownPayment = errors.New("unknown payment method")
)
