package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/larek/internal/api"
	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
	"github.com/dshills/larek/internal/state"
	"github.com/dshills/larek/internal/view"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeCatalog struct {
	products []model.Product
	listErr  error
	itemErr  error
}

func (c *fakeCatalog) GetCardList(ctx context.Context) ([]model.Product, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.products, nil
}

func (c *fakeCatalog) GetCardItem(ctx context.Context, id string) (model.Product, error) {
	if c.itemErr != nil {
		return model.Product{}, c.itemErr
	}
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, &api.StatusError{StatusCode: 404, Message: "NotFound"}
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []state.Order
	err    error
}

func (o *fakeOrders) OrderProducts(ctx context.Context, order state.Order) (api.OrderResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders = append(o.orders, order)
	if o.err != nil {
		return api.OrderResult{}, o.err
	}
	return api.OrderResult{ID: "order-1", Total: order.Total}, nil
}

func (o *fakeOrders) placed() []state.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]state.Order(nil), o.orders...)
}

func shopProducts() []model.Product {
	return []model.Product{
		{ID: "a", Title: "Alpha", Category: model.CategorySoftSkill, Price: model.PriceOf(750)},
		{ID: "b", Title: "Beta", Category: model.CategoryHardSkill, Price: model.PriceOf(1450)},
		{ID: "c", Title: "Gamma", Category: model.CategoryOther},
	}
}

type harness struct {
	t      *testing.T
	app    *Application
	out    *syncBuffer
	orders *fakeOrders
	ctx    context.Context
}

func startApp(t *testing.T, cat *fakeCatalog, orders *fakeOrders) *harness {
	t.Helper()
	out := &syncBuffer{}
	app, err := New(Options{Out: out, Catalog: cat, Orders: orders, Logger: logging.Nop()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		app.Shutdown()
	})
	return &harness{t: t, app: app, out: out, orders: orders, ctx: ctx}
}

// read runs fn on the loop so it sees a consistent state.
func (h *harness) read(fn func()) {
	h.t.Helper()
	require.NoError(h.t, h.app.Do(h.ctx, func(ctx context.Context) error {
		fn()
		return nil
	}))
}

func (h *harness) cardCount() int {
	var n int
	h.read(func() { n = len(h.app.cards) })
	return n
}

func (h *harness) modalContent() string {
	var s string
	h.read(func() { s = h.app.modal.Content() })
	return s
}

func (h *harness) exec(line string) error {
	return h.app.Exec(h.ctx, line)
}

func (h *harness) waitStage(s Stage) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.app.Stage() == s }, 2*time.Second, 5*time.Millisecond,
		"stage is %s, want %s", h.app.Stage(), s)
}

func (h *harness) waitCatalog(n int) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.cardCount() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestNew_RequiresBackends(t *testing.T) {
	_, err := New(Options{Orders: &fakeOrders{}})
	var ce *ComponentError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "app", ce.Component)

	_, err = New(Options{Catalog: &fakeCatalog{}})
	assert.Error(t, err)
}

func TestApp_LoadsCatalog(t *testing.T) {
	h := startApp(t, &fakeCatalog{products: shopProducts()}, &fakeOrders{})
	h.waitCatalog(3)

	out := h.out.String()
	assert.Contains(t, out, "Корзина: 0")
	assert.Contains(t, out, "1. [soft:софт-скил] Alpha, 750 синапсов")
	assert.Contains(t, out, "Gamma, Бесценно")
}

func TestApp_CatalogFailureIsSwallowed(t *testing.T) {
	h := startApp(t, &fakeCatalog{listErr: errors.New("offline")}, &fakeOrders{})

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, h.cardCount())
	assert.Equal(t, StageBrowsing, h.app.Stage())
	assert.ErrorIs(t, h.exec("show 1"), ErrNoSuchCard)
}

func TestApp_CheckoutFlow(t *testing.T) {
	orders := &fakeOrders{}
	h := startApp(t, &fakeCatalog{products: shopProducts()}, orders)
	h.waitCatalog(3)

	require.NoError(t, h.exec("show 1"))
	h.waitStage(StagePreviewOpen)
	assert.Contains(t, h.modalContent(), "[ В корзину ]")

	require.NoError(t, h.exec("buy"))
	require.Eventually(t, func() bool {
		return strings.Contains(h.modalContent(), "( В корзине )")
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, h.exec("basket"))
	h.waitStage(StageBasketOpen)
	assert.Contains(t, h.modalContent(), "1. Alpha, 750 синапсов")
	assert.Contains(t, h.modalContent(), "Итого: 750 синапсов")
	h.read(func() { assert.Equal(t, 1, h.app.page.Counter()) })

	require.NoError(t, h.exec("checkout"))
	assert.Equal(t, StageOrderFormOpen, h.app.Stage())

	assert.ErrorIs(t, h.exec("next"), view.ErrFormInvalid)
	require.NoError(t, h.exec("pay card"))
	h.read(func() {
		assert.Equal(t, state.MsgAddressRequired, h.app.order.Errors())
		assert.False(t, h.app.order.Valid())
	})
	require.NoError(t, h.exec("address Москва, ул. Ленина 1"))
	h.read(func() { assert.True(t, h.app.order.Valid()) })
	require.NoError(t, h.exec("next"))
	assert.Equal(t, StageContactsFormOpen, h.app.Stage())

	require.NoError(t, h.exec("email user@mail"))
	h.read(func() {
		assert.Equal(t, state.MsgPhoneRequired+"; "+state.MsgEmailInvalid, h.app.contacts.Errors())
	})
	require.NoError(t, h.exec("email user@mail.ru"))
	require.NoError(t, h.exec("phone +71234567890"))
	require.NoError(t, h.exec("submit"))
	h.waitStage(StageSuccessShown)

	placed := orders.placed()
	require.Len(t, placed, 1)
	assert.Equal(t, []string{"a"}, placed[0].Items)
	assert.True(t, placed[0].Total.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, state.PaymentCard, placed[0].Payment)
	assert.Equal(t, "Москва, ул. Ленина 1", placed[0].Address)
	assert.Equal(t, "user@mail.ru", placed[0].Email)
	assert.Equal(t, "+71234567890", placed[0].Phone)

	assert.Contains(t, h.modalContent(), "Списано 750 синапсов")
	h.read(func() {
		assert.Zero(t, h.app.state.BasketCount())
		assert.Empty(t, h.app.state.Order().Email)
		assert.Zero(t, h.app.page.Counter())
	})

	require.NoError(t, h.exec("close"))
	assert.Equal(t, StageBrowsing, h.app.Stage())
	h.read(func() { assert.False(t, h.app.page.Locked()) })
}

func TestApp_OrderFailureKeepsContactsOpen(t *testing.T) {
	orders := &fakeOrders{err: errors.New("503")}
	h := startApp(t, &fakeCatalog{products: shopProducts()}, orders)
	h.waitCatalog(3)

	require.NoError(t, h.exec("show 2"))
	h.waitStage(StagePreviewOpen)
	require.NoError(t, h.exec("buy"))
	require.NoError(t, h.exec("basket"))
	require.NoError(t, h.exec("checkout"))
	require.NoError(t, h.exec("pay cash"))
	require.NoError(t, h.exec("address Kazan"))
	require.NoError(t, h.exec("next"))
	require.NoError(t, h.exec("email a@b.cd"))
	require.NoError(t, h.exec("phone 81234567890"))
	require.NoError(t, h.exec("submit"))

	require.Eventually(t, func() bool { return len(orders.placed()) == 1 }, 2*time.Second, 5*time.Millisecond)
	h.waitStage(StageContactsFormOpen)
	h.read(func() { assert.Equal(t, 1, h.app.state.BasketCount()) })
}

func TestApp_OrderPlacedAfterCatalogReload(t *testing.T) {
	orders := &fakeOrders{}
	h := startApp(t, &fakeCatalog{products: shopProducts()}, orders)
	h.waitCatalog(3)

	for _, n := range []string{"1", "2"} {
		require.NoError(t, h.exec("show "+n))
		h.waitStage(StagePreviewOpen)
		require.NoError(t, h.exec("buy"))
		require.Eventually(t, func() bool {
			return strings.Contains(h.modalContent(), "( В корзине )")
		}, 2*time.Second, 5*time.Millisecond)
		require.NoError(t, h.exec("close"))
	}
	require.NoError(t, h.exec("basket"))
	require.NoError(t, h.exec("checkout"))
	require.NoError(t, h.exec("pay card"))
	require.NoError(t, h.exec("address Kazan"))
	require.NoError(t, h.exec("next"))
	require.NoError(t, h.exec("email a@b.cd"))
	require.NoError(t, h.exec("phone 81234567890"))

	// the catalog file loses Alpha while the contacts form is open
	require.NoError(t, h.app.Do(h.ctx, func(ctx context.Context) error {
		return h.app.state.SetCatalog(ctx, shopProducts()[1:])
	}))
	h.waitCatalog(2)

	require.NoError(t, h.exec("submit"))
	h.waitStage(StageSuccessShown)

	placed := orders.placed()
	require.Len(t, placed, 1)
	assert.Equal(t, []string{"a", "b"}, placed[0].Items)
	h.read(func() {
		assert.Zero(t, h.app.state.BasketCount())
		assert.True(t, h.app.state.Order().Total.IsZero())
		assert.Empty(t, h.app.state.Order().Email)
		assert.Zero(t, h.app.page.Counter())
	})
	assert.Contains(t, h.modalContent(), "Списано")
}

func TestApp_PricelessCannotBeBought(t *testing.T) {
	h := startApp(t, &fakeCatalog{products: shopProducts()}, &fakeOrders{})
	h.waitCatalog(3)

	require.NoError(t, h.exec("show 3"))
	h.waitStage(StagePreviewOpen)
	assert.Contains(t, h.modalContent(), "( В корзину )")
	assert.ErrorIs(t, h.exec("buy"), ErrNotAvailable)
}

func TestApp_RemoveFromBasket(t *testing.T) {
	h := startApp(t, &fakeCatalog{products: shopProducts()}, &fakeOrders{})
	h.waitCatalog(3)

	for _, n := range []string{"1", "2"} {
		require.NoError(t, h.exec("show "+n))
		h.waitStage(StagePreviewOpen)
		require.NoError(t, h.exec("buy"))
		require.Eventually(t, func() bool {
			return strings.Contains(h.modalContent(), "( В корзине )")
		}, 2*time.Second, 5*time.Millisecond)
		require.NoError(t, h.exec("close"))
	}
	require.NoError(t, h.exec("basket"))
	assert.Contains(t, h.modalContent(), "Итого: 2")

	require.NoError(t, h.exec("remove 1"))
	assert.Equal(t, StageBasketOpen, h.app.Stage())
	assert.Contains(t, h.modalContent(), "1. Beta")
	assert.NotContains(t, h.modalContent(), "Alpha")
	assert.ErrorIs(t, h.exec("remove 5"), ErrNoSuchCard)
}

func TestApp_PreviewFetchFailure(t *testing.T) {
	h := startApp(t, &fakeCatalog{products: shopProducts(), itemErr: errors.New("timeout")}, &fakeOrders{})
	h.waitCatalog(3)

	require.NoError(t, h.exec("show 1"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StageBrowsing, h.app.Stage())
	assert.Empty(t, h.modalContent())
}

func TestApp_CommandsCheckStage(t *testing.T) {
	h := startApp(t, &fakeCatalog{products: shopProducts()}, &fakeOrders{})
	h.waitCatalog(3)

	for _, cmd := range []string{"buy", "remove 1", "checkout", "pay card", "next", "email a@b.c", "submit", "form"} {
		assert.ErrorIs(t, h.exec(cmd), ErrNotAvailable, cmd)
	}
	assert.ErrorIs(t, h.exec("dance"), ErrUnknownCommand)
	assert.ErrorIs(t, h.exec("quit"), ErrQuit)
	assert.NoError(t, h.exec(""))
}

func TestApp_Stats(t *testing.T) {
	h := startApp(t, &fakeCatalog{products: shopProducts()}, &fakeOrders{})
	h.waitCatalog(3)

	require.NoError(t, h.exec("stats"))
	out := h.out.String()
	assert.Contains(t, out, "requests 1 (0 failed")
	assert.Contains(t, out, "commands 1\n")
	assert.Regexp(t, `subscribers (\d+) \(\d+ active, \d+ topics\)`, out)
}

func TestApp_ShutdownClosesOwnBus(t *testing.T) {
	app, err := New(Options{Catalog: &fakeCatalog{}, Orders: &fakeOrders{}, Logger: logging.Nop()})
	require.NoError(t, err)
	sub, err := app.Bus().SubscribeAll(event.HandlerFunc(func(context.Context, event.Event) error { return nil }))
	require.NoError(t, err)

	app.Shutdown()
	assert.Equal(t, event.SubscriptionStateCancelled, sub.State())
	assert.Zero(t, app.Bus().Stats().Subscribers)

	shared := event.NewBus()
	app, err = New(Options{Bus: shared, Catalog: &fakeCatalog{}, Orders: &fakeOrders{}, Logger: logging.Nop()})
	require.NoError(t, err)
	sub, err = shared.SubscribeAll(event.HandlerFunc(func(context.Context, event.Event) error { return nil }))
	require.NoError(t, err)

	app.Shutdown()
	assert.True(t, sub.IsActive())
	assert.Equal(t, 1, shared.Stats().Subscribers)
}

func TestApp_EmptyBasketCheckout(t *testing.T) {
	h := startApp(t, &fakeCatalog{products: shopProducts()}, &fakeOrders{})
	h.waitCatalog(3)

	require.NoError(t, h.exec("basket"))
	assert.Contains(t, h.modalContent(), "Корзина пуста")
	assert.ErrorIs(t, h.exec("checkout"), view.ErrEmptyBasket)
}

func TestInteract(t *testing.T) {
	h := startApp(t, &fakeCatalog{products: shopProducts()}, &fakeOrders{})
	h.waitCatalog(3)

	var out bytes.Buffer
	c := NewConsole(strings.NewReader("help\ndance\nquit\nlist\n"), &out)
	require.NoError(t, h.app.Interact(h.ctx, c))
	assert.Contains(t, h.out.String(), "show N")
	assert.Contains(t, out.String(), "error: unknown command: dance")
	assert.NoError(t, c.Close())
}
