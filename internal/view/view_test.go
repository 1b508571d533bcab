package view

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/event/topic"
	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
	"github.com/dshills/larek/internal/state"
)

type published struct {
	name    topic.Topic
	payload any
}

func newRecordingBus(t *testing.T) (event.Bus, *[]published) {
	t.Helper()
	bus := event.NewBus(event.WithLogger(logging.Nop()))
	var got []published
	_, err := bus.SubscribeAll(event.HandlerFunc(func(ctx context.Context, evt event.Event) error {
		got = append(got, published{evt.Name, evt.Payload})
		return nil
	}))
	require.NoError(t, err)
	return bus, &got
}

func TestPriceText(t *testing.T) {
	assert.Equal(t, PriceNone, PriceText(decimal.NullDecimal{}))
	assert.Equal(t, "750 синапсов", PriceText(model.PriceOf(750)))
	assert.Equal(t, "0 синапсов", PriceText(model.PriceOf(0)))
	assert.Regexp(t, `^1\D?450 синапсов$`, PriceText(model.PriceOf(1450)))
	assert.Regexp(t, `^12[.,]5 синапсов$`, PriceText(decimal.NewNullDecimal(decimal.RequireFromString("12.50"))))
}

func TestCategoryClass(t *testing.T) {
	assert.Equal(t, "soft", CategoryClass(model.CategorySoftSkill))
	assert.Equal(t, "button", CategoryClass(model.CategoryButton))
	assert.Equal(t, "other", CategoryClass("неизвестно"))
}

func TestPreviewButton(t *testing.T) {
	tests := []struct {
		name     string
		data     CardData
		label    string
		disabled bool
	}{
		{"buyable", CardData{Price: model.PriceOf(10)}, ButtonBuy, false},
		{"priceless", CardData{}, ButtonBuy, true},
		{"in basket", CardData{Price: model.PriceOf(10), InBasket: true}, ButtonInCart, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, disabled := PreviewButton(tt.data)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.disabled, disabled)
		})
	}
}

func TestCards(t *testing.T) {
	d := CardData{
		Title:       "Фреймворк куки судьбы",
		Description: "Если планируете решать задачи в тренажёре, берите два.",
		Category:    model.CategorySoftSkill,
		Price:       model.PriceOf(750),
		Position:    2,
	}
	assert.Equal(t, " 1. [soft:софт-скил] Фреймворк куки судьбы, 750 синапсов", CatalogCard(1, d))
	assert.Equal(t, "2. Фреймворк куки судьбы, 750 синапсов", BasketItem(d))

	preview := Preview(d)
	assert.Contains(t, preview, d.Description)
	assert.Contains(t, preview, "[ В корзину ]")

	d.InBasket = true
	assert.Contains(t, Preview(d), "( В корзине )")
}

func TestCardDataOf(t *testing.T) {
	item := model.NewCardItem(model.Product{ID: "x", Title: "T", Price: model.PriceOf(5)}, nil)
	item.InBasket = true
	d := CardDataOf(item)
	assert.Equal(t, "T", d.Title)
	assert.True(t, d.InBasket)
	assert.True(t, d.Price.Valid)
}

func TestPage(t *testing.T) {
	bus, got := newRecordingBus(t)
	var out bytes.Buffer
	p := NewPage(&out, bus)

	p.SetCounter(3)
	p.SetCatalog([]string{"card one", "card two"})
	require.NoError(t, p.Render())
	assert.Contains(t, out.String(), "Корзина: 3")
	assert.Contains(t, out.String(), "card two\n")

	require.NoError(t, p.OpenBasket(context.Background()))
	require.Len(t, *got, 1)
	assert.Equal(t, state.TopicBasketOpen, (*got)[0].name)
}

func TestModal(t *testing.T) {
	bus, got := newRecordingBus(t)
	var out bytes.Buffer
	m := NewModal(&out, bus)
	ctx := context.Background()

	require.NoError(t, m.Close(ctx))
	assert.Empty(t, *got)

	require.NoError(t, m.Render(ctx, "hello"))
	assert.True(t, m.IsOpen())
	assert.Equal(t, "hello", m.Content())
	assert.Contains(t, out.String(), "hello")

	require.NoError(t, m.Close(ctx))
	assert.False(t, m.IsOpen())
	require.Len(t, *got, 2)
	assert.Equal(t, state.TopicModalOpen, (*got)[0].name)
	assert.Equal(t, state.TopicModalClose, (*got)[1].name)
}

func TestBasket(t *testing.T) {
	bus, got := newRecordingBus(t)
	b := NewBasket(bus)
	ctx := context.Background()

	out := b.Render(nil, decimal.Zero)
	assert.Contains(t, out, "Корзина пуста")
	assert.Contains(t, out, "( Оформить )")
	assert.ErrorIs(t, b.Checkout(ctx), ErrEmptyBasket)

	out = b.Render([]string{"1. A, 10 синапсов"}, decimal.NewFromInt(10))
	assert.Contains(t, out, "Итого: 10 синапсов")
	require.NoError(t, b.Checkout(ctx))
	require.Len(t, *got, 1)
	assert.Equal(t, state.TopicOrderOpen, (*got)[0].name)
}

func TestOrderForm(t *testing.T) {
	bus, got := newRecordingBus(t)
	f := NewOrderForm(bus)
	ctx := context.Background()

	out := f.Render("", state.PaymentNone)
	assert.Contains(t, out, "( Далее )")

	require.NoError(t, f.Change(ctx, "address", "Moscow"))
	require.Len(t, *got, 1)
	assert.Equal(t, topic.Topic("order.address:change"), (*got)[0].name)
	assert.Equal(t, state.FieldChange{Field: "address", Value: "Moscow"}, (*got)[0].payload)
	assert.True(t, state.OrderFieldChanged.Match((*got)[0].name))

	assert.ErrorIs(t, f.Submit(ctx), ErrFormInvalid)

	f.SetValid(true)
	f.SetErrors("")
	require.NoError(t, f.Change(ctx, "paymentType", "card"))
	assert.Contains(t, f.String(), "[x] Онлайн (card)")
	assert.Contains(t, f.String(), "Адрес доставки: Moscow")
	assert.Contains(t, f.String(), "[ Далее ]")

	require.NoError(t, f.Submit(ctx))
	assert.Equal(t, state.TopicOrderSubmit, (*got)[len(*got)-1].name)
}

func TestContactsForm(t *testing.T) {
	bus, got := newRecordingBus(t)
	f := NewContactsForm(bus)
	ctx := context.Background()

	f.Render("", "")
	require.NoError(t, f.Change(ctx, "email", "a@b.c"))
	assert.True(t, state.ContactsFieldChanged.Match((*got)[0].name))

	f.SetErrors(state.MsgPhoneRequired)
	assert.Contains(t, f.String(), "! "+state.MsgPhoneRequired)

	f.SetValid(true)
	require.NoError(t, f.Submit(ctx))
	assert.Equal(t, state.TopicContactsSubmit, (*got)[len(*got)-1].name)

	f.Render("", "")
	assert.False(t, f.Valid())
	assert.Empty(t, f.Errors())
	assert.Empty(t, f.Value("email"))
}

func TestSuccess(t *testing.T) {
	closed := false
	s := NewSuccess(func(ctx context.Context) error {
		closed = true
		return nil
	})
	assert.Contains(t, s.Render(decimal.NewFromInt(750)), "Списано 750 синапсов")
	require.NoError(t, s.Close(context.Background()))
	assert.True(t, closed)

	assert.NoError(t, NewSuccess(nil).Close(context.Background()))
}
