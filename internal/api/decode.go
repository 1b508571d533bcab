package api

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/dshills/larek/internal/model"
)

// decodeProducts reads either {"total": n, "items": [...]} or a bare array.
func decodeProducts(body []byte, cdn string) ([]model.Product, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrBadResponse)
	}
	root := gjson.ParseBytes(body)
	items := root
	if root.IsObject() {
		items = root.Get("items")
	}
	if !items.IsArray() {
		return nil, fmt.Errorf("%w: no items array", ErrBadResponse)
	}

	var (
		products []model.Product
		err      error
	)
	items.ForEach(func(_, value gjson.Result) bool {
		var p model.Product
		p, err = decodeProduct(value, cdn)
		if err != nil {
			return false
		}
		products = append(products, p)
		return true
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// decodeProduct converts one product object. The image path is prefixed
// with cdn.
func decodeProduct(r gjson.Result, cdn string) (model.Product, error) {
	if !r.IsObject() {
		return model.Product{}, fmt.Errorf("%w: product is not an object", ErrBadResponse)
	}
	id := r.Get("id").String()
	if id == "" {
		return model.Product{}, fmt.Errorf("%w: product without id", ErrBadResponse)
	}
	price, err := decodePrice(r.Get("price"))
	if err != nil {
		return model.Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	return model.Product{
		ID:          id,
		Title:       r.Get("title").String(),
		Description: r.Get("description").String(),
		Image:       cdn + r.Get("image").String(),
		Category:    model.Category(r.Get("category").String()),
		Price:       price,
	}, nil
}

// decodePrice maps null or a missing field to an absent price.
func decodePrice(r gjson.Result) (decimal.NullDecimal, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return decimal.NullDecimal{}, nil
	}
	raw := r.Raw
	if r.Type != gjson.Number {
		s, err := cast.ToStringE(r.Value())
		if err != nil {
			return decimal.NullDecimal{}, fmt.Errorf("%w: price %s", ErrBadResponse, r.Raw)
		}
		raw = s
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: price %s", ErrBadResponse, r.Raw)
	}
	return decimal.NewNullDecimal(d), nil
}
