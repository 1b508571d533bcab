package apiserver

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dshills/larek/internal/model"
	"github.com/dshills/larek/internal/state"
)

// Messages returned in the error body of a rejected order.
const (
	MsgNoItems        = "Не выбраны товары"
	MsgItemNotFound   = "Товар с id %s не найден"
	MsgItemNotForSale = "Товар с id %s не продается"
	MsgDuplicateItem  = "Товар с id %s указан дважды"
	MsgWrongTotal     = "Неверная сумма заказа"
	MsgUnknownPayment = "Неизвестный способ оплаты"
)

// OrderError is a rejected order. Message is shown to the buyer.
type OrderError struct {
	Message string
}

func (e *OrderError) Error() string {
	return "invalid order: " + e.Message
}

func rejectf(format string, args ...any) *OrderError {
	return &OrderError{Message: fmt.Sprintf(format, args...)}
}

// orderRequest is the POST /order body.
type orderRequest struct {
	Payment string          `json:"payment"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Address string          `json:"address"`
	Total   decimal.Decimal `json:"total"`
	Items   []string        `json:"items"`
}

// checkOrder applies the same rules as the checkout forms, then checks
// the items against the catalog and the claimed total against their prices.
func checkOrder(req orderRequest, catalog []model.Product) error {
	switch {
	case req.Payment == "":
		return rejectf(state.MsgPaymentRequired)
	case !state.PaymentMethod(req.Payment).IsKnown():
		return rejectf(MsgUnknownPayment)
	case req.Address == "":
		return rejectf(state.MsgAddressRequired)
	case req.Email == "":
		return rejectf(state.MsgEmailRequired)
	case !state.ValidEmail(req.Email):
		return rejectf(state.MsgEmailInvalid)
	case req.Phone == "":
		return rejectf(state.MsgPhoneRequired)
	case !state.ValidPhone(req.Phone):
		return rejectf(state.MsgPhoneInvalid)
	case len(req.Items) == 0:
		return rejectf(MsgNoItems)
	}

	byID := make(map[string]model.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	seen := make(map[string]bool, len(req.Items))
	sum := decimal.Zero
	for _, id := range req.Items {
		if seen[id] {
			return rejectf(MsgDuplicateItem, id)
		}
		seen[id] = true

		p, ok := byID[id]
		if !ok {
			return rejectf(MsgItemNotFound, id)
		}
		if !p.Priced() {
			return rejectf(MsgItemNotForSale, id)
		}
		sum = sum.Add(p.Price.Decimal)
	}
	if !sum.Equal(req.Total) {
		return rejectf(MsgWrongTotal)
	}
	return nil
}
