package view

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Success confirms an accepted order.
type Success struct {
	onClose func(ctx context.Context) error
}

// NewSuccess creates a success view; onClose runs when the user dismisses it.
func NewSuccess(onClose func(ctx context.Context) error) *Success {
	return &Success{onClose: onClose}
}

// Render shows the amount charged.
func (s *Success) Render(total decimal.Decimal) string {
	return fmt.Sprintf("Заказ оформлен\nСписано %s %s\n[ За новыми покупками! ]", Amount(total), PriceSuffix)
}

// Close is the dismiss button's action.
func (s *Success) Close(ctx context.Context) error {
	if s.onClose == nil {
		return nil
	}
	return s.onClose(ctx)
}
