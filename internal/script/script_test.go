package script

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/larek/internal/api"
	"github.com/dshills/larek/internal/app"
	"github.com/dshills/larek/internal/event/topic"
	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
	"github.com/dshills/larek/internal/state"
)

type fakeCatalog struct{}

func (fakeCatalog) GetCardList(context.Context) ([]model.Product, error) {
	return []model.Product{
		{ID: "a", Title: "Alpha", Category: model.CategorySoftSkill, Price: model.PriceOf(750)},
		{ID: "b", Title: "Beta", Category: model.CategoryHardSkill, Price: model.PriceOf(1450)},
		{ID: "c", Title: "Gamma", Category: model.CategoryOther},
	}, nil
}

func (c fakeCatalog) GetCardItem(ctx context.Context, id string) (model.Product, error) {
	products, _ := c.GetCardList(ctx)
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, &api.StatusError{StatusCode: 404, Message: "NotFound"}
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []state.Order
}

func (o *fakeOrders) OrderProducts(_ context.Context, order state.Order) (api.OrderResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders = append(o.orders, order)
	return api.OrderResult{ID: "order-1", Total: order.Total}, nil
}

func (o *fakeOrders) placed() []state.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]state.Order(nil), o.orders...)
}

// startRunner creates the runner before the application starts so the
// first catalog load is recorded.
func startRunner(t *testing.T) (*Runner, *app.Application, *fakeOrders, *bytes.Buffer) {
	t.Helper()
	orders := &fakeOrders{}
	a, err := app.New(app.Options{Catalog: fakeCatalog{}, Orders: orders, Logger: logging.Nop()})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	r, err := New(a, WithLogger(logging.Nop()), WithOutput(out))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	t.Cleanup(func() {
		r.Close()
		cancel()
		<-done
		a.Shutdown()
	})
	return r, a, orders, out
}

func TestRunner_Checkout(t *testing.T) {
	r, a, orders, out := startRunner(t)

	err := r.RunString(context.Background(), `
		local e = larek.wait("items:changed", 2000)
		assert(e, "catalog not loaded")
		assert(#e.payload.catalog == 3)
		assert(e.payload.catalog[3].price == nil)

		local changes = {}
		larek.on("^order\\..*:change", function(name, p)
			changes[#changes + 1] = p.field .. "=" .. p.value
		end)

		assert(larek.exec("show 1"))
		assert(larek.wait("modal:open", 2000), "preview not shown")
		assert(larek.exec("buy"))
		assert(larek.exec("basket"))
		assert(larek.exec("checkout"))

		assert(larek.emit("order.paymentType:change", {value = "card"}))
		assert(larek.emit("order.address:change", "Москва"))

		local s = larek.state()
		assert(s.stage == "order", s.stage)
		assert(s.count == 1)
		assert(s.total == "750", s.total)
		assert(s.order.address == "Москва")
		assert(s.order.payment == "card")
		assert(#changes == 2)

		assert(larek.exec("next"))
		assert(larek.exec("email user@mail.ru"))
		assert(larek.exec("phone 89991234567"))

		larek.flush()
		assert(larek.exec("submit"))
		assert(larek.wait("modal:open", 2000), "success not shown")
		print("done", larek.state().stage)
	`)
	require.NoError(t, err)

	assert.Equal(t, "done\tsuccess\n", out.String())
	assert.Equal(t, app.StageSuccessShown, a.Stage())

	placed := orders.placed()
	require.Len(t, placed, 1)
	assert.Equal(t, []string{"a"}, placed[0].Items)
	assert.Equal(t, "89991234567", placed[0].Phone)
}

func TestRunner_Errors(t *testing.T) {
	r, _, _, _ := startRunner(t)
	ctx := context.Background()

	require.NoError(t, r.RunString(ctx, `assert(larek.wait("items:changed", 2000))`))

	err := r.RunString(ctx, `
		local ok, err = larek.emit("card:select", {id = "zzz"})
		assert(not ok)
		assert(string.find(err, "item not found"), err)

		ok, err = larek.exec("frobnicate")
		assert(not ok)
		assert(string.find(err, "unknown command"), err)

		assert(larek.exec("quit"))
		assert(larek.wait("never:happens", 10) == nil)
	`)
	require.NoError(t, err)

	err = r.RunString(ctx, `larek.on("not a name", function() end)`)
	assert.Error(t, err)

	err = r.RunString(ctx, `error("boom")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunner_HandlerErrorStopsScript(t *testing.T) {
	r, _, _, _ := startRunner(t)

	err := r.RunString(context.Background(), `
		larek.on("page:changed", function() error("handler failed") end)
		assert(larek.wait("items:changed", 2000))
		larek.emit("page:changed")
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler failed")
}

func TestRunner_Off(t *testing.T) {
	r, _, _, out := startRunner(t)

	err := r.RunString(context.Background(), `
		local n = 0
		local id = larek.on("page:changed", function() n = n + 1 end)
		larek.emit("page:changed")
		assert(larek.off(id))
		assert(not larek.off(id))
		larek.emit("page:changed")
		print(n)
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out.String())
}

func TestRunner_PauseResume(t *testing.T) {
	r, _, _, out := startRunner(t)

	err := r.RunString(context.Background(), `
		local n = 0
		larek.on("page:changed", function() n = n + 1 end)
		larek.pause()
		larek.emit("page:changed")
		assert(larek.wait("page:changed", 10) == nil)
		larek.resume()
		larek.emit("page:changed")
		print(n)
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out.String())
}

func TestRunner_RunFile(t *testing.T) {
	r, _, _, out := startRunner(t)
	path := filepath.Join(t.TempDir(), "session.lua")
	require.NoError(t, os.WriteFile(path, []byte(`print(#larek.state().catalog >= 0)`), 0o644))

	require.NoError(t, r.RunFile(context.Background(), path))
	assert.Equal(t, "true\n", out.String())

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.RunString(context.Background(), "print(1)"), ErrClosed)
}

func TestSelectorFor(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"items:changed", "items:changed", true},
		{"items:changed", "items:other", false},
		{`^order\..*:change`, "order.address:change", true},
		{`^order\..*:change`, "contacts.email:change", false},
		{"order.*", "order.address", true},
	}
	for _, tt := range tests {
		sel, err := selectorFor(tt.pattern)
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.want, sel.Match(topic.Topic(tt.topic)), "%s vs %s", tt.pattern, tt.topic)
	}

	_, err := selectorFor("^(")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	require.NoError(t, L.DoString(`t = {1, 2, "x"}; m = {a = 1.5, b = {true}}`))
	assert.Equal(t, []any{int64(1), int64(2), "x"}, toGo(L.GetGlobal("t")))
	assert.Equal(t, map[string]any{"a": 1.5, "b": []any{true}}, toGo(L.GetGlobal("m")))

	v := toLua(L, map[string]any{"items": []string{"a"}, "n": 2})
	L.SetGlobal("v", v)
	require.NoError(t, L.DoString(`assert(v.items[1] == "a" and v.n == 2)`))

	assert.Equal(t, map[string]any{"field": "email", "value": "x"},
		describe(state.FieldChange{Field: "email", Value: "x"}))
	assert.Equal(t, "hello", describe("hello"))
	assert.True(t, strings.HasPrefix(describe(struct{}{}).(string), "struct"))
}
