// Package api talks to the storefront backend: catalog listing, product
// detail and order submission. It also provides a file-backed catalog for
// working offline.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
	"github.com/dshills/larek/internal/state"
)

// Catalog lists products and fetches product detail.
type Catalog interface {
	GetCardList(ctx context.Context) ([]model.Product, error)
	GetCardItem(ctx context.Context, id string) (model.Product, error)
}

// Orderer submits orders.
type Orderer interface {
	OrderProducts(ctx context.Context, order state.Order) (OrderResult, error)
}

// OrderResult is the backend's confirmation of an accepted order.
type OrderResult struct {
	ID    string
	Total decimal.Decimal
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the API root, for example https://larek-api.nomoreparties.co/api/weblarek.
	BaseURL string

	// CDNURL is prepended to every product image path.
	CDNURL string

	Timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// Client is the HTTP implementation of Catalog and Orderer.
type Client struct {
	baseURL    string
	cdn        string
	httpClient *http.Client
	log        *logging.Logger
}

// New creates a client.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cdn:        cfg.CDNURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("api")
	return c
}

// GetCardList fetches the whole catalog.
func (c *Client) GetCardList(ctx context.Context) ([]model.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/product", nil, nil)
	if err != nil {
		return nil, err
	}
	products, err := decodeProducts(body, c.cdn)
	if err != nil {
		return nil, fmt.Errorf("get product list: %w", err)
	}
	if total := gjson.GetBytes(body, "total"); total.Exists() {
		if n, err := cast.ToIntE(total.Value()); err == nil && n != len(products) {
			c.log.Warn("product list total %d differs from %d items", n, len(products))
		}
	}
	return products, nil
}

// GetCardItem fetches one product.
func (c *Client) GetCardItem(ctx context.Context, id string) (model.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/product/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return model.Product{}, err
	}
	if !gjson.ValidBytes(body) {
		return model.Product{}, fmt.Errorf("get product %s: %w: invalid json", id, ErrBadResponse)
	}
	p, err := decodeProduct(gjson.ParseBytes(body), c.cdn)
	if err != nil {
		return model.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// OrderProducts submits the order draft.
func (c *Client) OrderProducts(ctx context.Context, order state.Order) (OrderResult, error) {
	payload, err := EncodeOrder(order)
	if err != nil {
		return OrderResult{}, err
	}

	headers := map[string]string{
		"Content-Type":    "application/json",
		"Idempotency-Key": uuid.NewString(),
	}
	body, err := c.do(ctx, http.MethodPost, "/order", payload, headers)
	if err != nil {
		return OrderResult{}, err
	}

	id := gjson.GetBytes(body, "id")
	if !id.Exists() || id.String() == "" {
		return OrderResult{}, fmt.Errorf("post order: %w: no id", ErrBadResponse)
	}
	total, err := decodePrice(gjson.GetBytes(body, "total"))
	if err != nil {
		return OrderResult{}, fmt.Errorf("post order: %w", err)
	}
	c.log.Info("order %s accepted, total %s", id.String(), total.Decimal)
	return OrderResult{ID: id.String(), Total: total.Decimal}, nil
}

// EncodeOrder builds the POST /order body.
func EncodeOrder(order state.Order) ([]byte, error) {
	items := order.Items
	if items == nil {
		items = []string{}
	}

	body := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, value)
		}
	}
	set("payment", string(order.Payment))
	set("email", order.Email)
	set("phone", order.Phone)
	set("address", order.Address)
	if err == nil {
		body, err = sjson.SetRawBytes(body, "total", []byte(order.Total.String()))
	}
	set("items", items)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}
