package script

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/larek/internal/state"
)

// toGo converts a Lua value to plain Go data. Tables with keys 1..n become
// []any, other tables map[string]any. Functions and cycles become nil.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, map[*lua.LTable]bool{})
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[cast.ToString(toGoVisited(k, visited))] = toGoVisited(v, visited)
	})
	return m
}

// toLua converts data produced by describe to a Lua value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []string:
		t := L.CreateTable(len(val), 0)
		for i, s := range val {
			t.RawSetInt(i+1, lua.LString(s))
		}
		return t
	case []any:
		t := L.CreateTable(len(val), 0)
		for i, e := range val {
			t.RawSetInt(i+1, toLua(L, e))
		}
		return t
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		t := L.CreateTable(0, len(val))
		for _, k := range keys {
			t.RawSetString(k, toLua(L, val[k]))
		}
		return t
	default:
		s, err := cast.ToStringE(val)
		if err != nil {
			return lua.LString(fmt.Sprint(val))
		}
		return lua.LString(s)
	}
}

// describe flattens an event payload into data a script can read. It runs
// on the event loop, so it may look at live state objects.
func describe(payload any) any {
	switch p := payload.(type) {
	case nil:
		return nil
	case *state.CardItem:
		if p == nil {
			return nil
		}
		return describeItem(p)
	case *state.AppState:
		return map[string]any{"count": p.BasketCount(), "total": p.BasketTotal().String()}
	case state.CatalogChange:
		items := make([]any, 0, len(p.Catalog))
		for _, item := range p.Catalog {
			items = append(items, describeItem(item))
		}
		return map[string]any{"catalog": items}
	case state.Order:
		return describeOrder(p)
	case state.FormErrors:
		m := make(map[string]any, len(p))
		for f, msg := range p {
			m[string(f)] = msg
		}
		return m
	case state.FieldChange:
		return map[string]any{"field": p.Field, "value": p.Value}
	case map[string]any:
		return p
	default:
		s, err := cast.ToStringE(p)
		if err != nil {
			return fmt.Sprintf("%T", p)
		}
		return s
	}
}

func describeItem(item *state.CardItem) map[string]any {
	return map[string]any{
		"id":       item.ID,
		"title":    item.Title,
		"category": string(item.Category),
		"price":    priceValue(item.Price),
		"inBasket": item.InBasket,
	}
}

func describeOrder(o state.Order) map[string]any {
	items := o.Items
	if items == nil {
		items = []string{}
	}
	return map[string]any{
		"email":   o.Email,
		"phone":   o.Phone,
		"address": o.Address,
		"payment": string(o.Payment),
		"items":   items,
		"total":   o.Total.String(),
	}
}

func priceValue(p decimal.NullDecimal) any {
	if !p.Valid {
		return nil
	}
	return p.Decimal.String()
}

// productOf reads a product id from a script payload.
func productOf(data any) (string, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return "", false
	}
	id, err := cast.ToStringE(m["id"])
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}
