package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/event/topic"
	"github.com/dshills/larek/internal/state"
)

// ErrFormInvalid is returned when an invalid form is submitted.
var ErrFormInvalid = errors.New("form is not valid")

// Form is the common part of the checkout forms: it reports input changes
// as "<form>.<field>:change" events and submission as "<form>:submit".
type Form struct {
	name   string
	events event.Publisher

	valid  bool
	errors string
	values map[string]string
}

func newForm(name string, events event.Publisher) Form {
	return Form{name: name, events: events, values: map[string]string{}}
}

// Name returns the form name.
func (f *Form) Name() string {
	return f.name
}

// Change records an input change and emits it.
func (f *Form) Change(ctx context.Context, field, value string) error {
	f.values[field] = value
	return f.events.Publish(ctx, topic.FieldChange(f.name, field), state.FieldChange{Field: field, Value: value})
}

// Submit emits the submit event when the form is valid.
func (f *Form) Submit(ctx context.Context) error {
	if !f.valid {
		return fmt.Errorf("%s: %w", f.name, ErrFormInvalid)
	}
	return f.events.Publish(ctx, topic.Topic(f.name+topic.ActionSeparator+"submit"), nil)
}

// SetValid enables or disables the submit button.
func (f *Form) SetValid(valid bool) {
	f.valid = valid
}

// Valid reports whether the form can be submitted.
func (f *Form) Valid() bool {
	return f.valid
}

// SetErrors sets the error line.
func (f *Form) SetErrors(errs string) {
	f.errors = errs
}

// Errors returns the error line.
func (f *Form) Errors() string {
	return f.errors
}

// Value returns the last value entered for field.
func (f *Form) Value(field string) string {
	return f.values[field]
}

// reset clears the inputs and the validity shown by the form.
func (f *Form) reset(values map[string]string) {
	f.values = values
	f.valid = false
	f.errors = ""
}

func (f *Form) footer(b *strings.Builder, submit string) {
	if f.errors != "" {
		fmt.Fprintf(b, "! %s\n", f.errors)
	}
	if f.valid {
		fmt.Fprintf(b, "[ %s ]", submit)
	} else {
		fmt.Fprintf(b, "( %s )", submit)
	}
}

// OrderForm asks for the payment method and delivery address.
type OrderForm struct {
	Form
}

// NewOrderForm creates the order step form.
func NewOrderForm(events event.Publisher) *OrderForm {
	return &OrderForm{Form: newForm(state.FormOrder, events)}
}

// Render resets the form to address and payment and renders it.
func (f *OrderForm) Render(address string, payment state.PaymentMethod) string {
	f.reset(map[string]string{
		string(state.FieldAddress): address,
		string(state.FieldPayment): string(payment),
	})
	return f.String()
}

// String renders the form with its current values.
func (f *OrderForm) String() string {
	var b strings.Builder
	b.WriteString("Способ оплаты\n")
	pm := state.PaymentMethod(f.Value(string(state.FieldPayment)))
	for _, opt := range []struct {
		method state.PaymentMethod
		label  string
	}{{state.PaymentCard, "Онлайн"}, {state.PaymentCash, "При получении"}} {
		mark := " "
		if pm == opt.method {
			mark = "x"
		}
		fmt.Fprintf(&b, "  [%s] %s (%s)\n", mark, opt.label, opt.method)
	}
	fmt.Fprintf(&b, "Адрес доставки: %s\n", f.Value(string(state.FieldAddress)))
	f.footer(&b, "Далее")
	return b.String()
}

// ContactsForm asks for email and phone.
type ContactsForm struct {
	Form
}

// NewContactsForm creates the contacts step form.
func NewContactsForm(events event.Publisher) *ContactsForm {
	return &ContactsForm{Form: newForm(state.FormContacts, events)}
}

// Render resets the form to email and phone and renders it.
func (f *ContactsForm) Render(email, phone string) string {
	f.reset(map[string]string{
		string(state.FieldEmail): email,
		string(state.FieldPhone): phone,
	})
	return f.String()
}

// String renders the form with its current values.
func (f *ContactsForm) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Email: %s\n", f.Value(string(state.FieldEmail)))
	fmt.Fprintf(&b, "Телефон: %s\n", f.Value(string(state.FieldPhone)))
	f.footer(&b, "Оплатить")
	return b.String()
}
