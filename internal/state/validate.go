package state

import (
	"regexp"
	"strings"
)

// Validation messages shown next to the form.
const (
	MsgAddressRequired = "Необходимо указать адрес"
	MsgPaymentRequired = "Необходимо выбрать способ оплаты"
	MsgEmailRequired   = "Необходимо указать email"
	MsgEmailInvalid    = "Некорректный формат email"
	MsgPhoneRequired   = "Необходимо указать телефон"
	MsgPhoneInvalid    = "Некорректный формат телефона"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// +7 or 8, then ten or eleven digits.
	phonePattern = regexp.MustCompile(`^(?:\+7|8)(?:\d{10}|\d{11})$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone reports whether s is an accepted Russian phone number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

func orderErrors(o Order) FormErrors {
	errs := FormErrors{}
	if o.Address == "" {
		errs[FieldAddress] = MsgAddressRequired
	}
	if o.Payment == PaymentNone {
		errs[FieldPayment] = MsgPaymentRequired
	}
	return errs
}

func contactErrors(o Order) FormErrors {
	errs := FormErrors{}
	switch {
	case o.Email == "":
		errs[FieldEmail] = MsgEmailRequired
	case !ValidEmail(o.Email):
		errs[FieldEmail] = MsgEmailInvalid
	}
	switch {
	case o.Phone == "":
		errs[FieldPhone] = MsgPhoneRequired
	case !ValidPhone(o.Phone):
		errs[FieldPhone] = MsgPhoneInvalid
	}
	return errs
}

// Join renders the messages for fields in the given order, separated by "; ".
func (e FormErrors) Join(fields ...Field) string {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		if msg, ok := e[f]; ok && msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}
