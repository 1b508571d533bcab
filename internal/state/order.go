package state

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/dshills/larek/internal/model"
)

// CardItem is re-exported so callers of this package rarely need model.
type CardItem = model.CardItem

// PaymentMethod is how the customer pays.
type PaymentMethod string

// Payment methods offered at checkout.
const (
	PaymentNone PaymentMethod = ""
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// IsKnown reports whether p is card or cash.
func (p PaymentMethod) IsKnown() bool {
	return p == PaymentCard || p == PaymentCash
}

// Field names an order form input. They are also the FormErrors keys.
type Field string

// Order form fields.
const (
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldAddress Field = "address"
	FieldPayment Field = "paymentType"
)

// Order is the checkout draft.
type Order struct {
	Email   string
	Phone   string
	Address string
	Payment PaymentMethod

	// Items holds product ids in the order they were added, without duplicates.
	Items []string

	// Total is the sum of the prices of Items.
	Total decimal.Decimal
}

// Clone returns a deep copy safe to hand to subscribers.
func (o Order) Clone() Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func (o *Order) contains(id string) bool {
	return slices.Contains(o.Items, id)
}

func (o *Order) remove(id string) {
	o.Items = slices.DeleteFunc(slices.Clone(o.Items), func(s string) bool { return s == id })
}

// FormErrors maps a field to its validation message. A missing key means
// the field is valid.
type FormErrors map[Field]string

// Clone returns a copy of the map.
func (e FormErrors) Clone() FormErrors {
	out := make(FormErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// FieldUpdate is one recognised change to the order draft.
type FieldUpdate interface {
	// Field reports which input the update belongs to.
	Field() Field
	apply(o *Order)
}

// SetEmail replaces the email.
type SetEmail string

// SetPhone replaces the phone number.
type SetPhone string

// SetAddress replaces the delivery address.
type SetAddress string

// SetPaymentMethod replaces the payment method.
type SetPaymentMethod PaymentMethod

func (SetEmail) Field() Field         { return FieldEmail }
func (SetPhone) Field() Field         { return FieldPhone }
func (SetAddress) Field() Field       { return FieldAddress }
func (SetPaymentMethod) Field() Field { return FieldPayment }

func (u SetEmail) apply(o *Order)         { o.Email = string(u) }
func (u SetPhone) apply(o *Order)         { o.Phone = string(u) }
func (u SetAddress) apply(o *Order)       { o.Address = string(u) }
func (u SetPaymentMethod) apply(o *Order) { o.Payment = PaymentMethod(u) }

// ParseFieldUpdate converts a form's raw field change into a FieldUpdate.
func ParseFieldUpdate(field, value string) (FieldUpdate, error) {
	switch Field(field) {
	case FieldEmail:
		return SetEmail(value), nil
	case FieldPhone:
		return SetPhone(value), nil
	case FieldAddress:
		return SetAddress(value), nil
	case FieldPayment, "payment":
		pm := PaymentMethod(value)
		if pm != PaymentNone && !pm.IsKnown() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPayment, value)
		}
		return SetPaymentMethod(pm), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}
