// Package apiserver is a development backend for the storefront. It serves
// the catalog from a file and accepts orders, checking them the way the
// hosted API does, and keeps accepted orders in a bbolt database.
package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dshills/larek/internal/api"
	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
)

// IdempotencyHeader carries the client's retry key for POST /order.
const IdempotencyHeader = "Idempotency-Key"

// Config configures the server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// BasePath prefixes every route, e.g. "/api/weblarek".
	BasePath string
}

// Server is the REST backend.
type Server struct {
	echo    *echo.Echo
	addr    string
	catalog api.Catalog
	store   *OrderStore
	log     *logging.Logger
	now     func() time.Time
}

// New builds a server reading products from catalog and storing orders in store.
func New(cfg Config, catalog api.Catalog, store *OrderStore, log *logging.Logger) *Server {
	log = log.WithComponent("apiserver")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		addr:    cfg.Addr,
		catalog: catalog,
		store:   store,
		log:     log,
		now:     time.Now,
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Zap().Info("request", fields...)
			return nil
		},
	}))

	g := e.Group(cfg.BasePath)
	g.GET("/product", s.listProducts)
	g.GET("/product/:id", s.getProduct)
	g.POST("/order", s.createOrder)
	g.GET("/order", s.listOrders)
	g.GET("/order/:id", s.getOrder)

	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	s.log.Info("listening on %s", s.addr)
	return s.echo.Start(s.addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type errorBody struct {
	Error string `json:"error"`
}

type productBody struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Category    string       `json:"category"`
	Price       *json.Number `json:"price"`
}

type productListBody struct {
	Total int           `json:"total"`
	Items []productBody `json:"items"`
}

type orderBody struct {
	ID    string      `json:"id"`
	Total json.Number `json:"total"`
}

func toBody(p model.Product) productBody {
	b := productBody{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Category:    string(p.Category),
	}
	if p.Priced() {
		n := json.Number(p.Price.Decimal.String())
		b.Price = &n
	}
	return b
}

func (s *Server) listProducts(c echo.Context) error {
	products, err := s.catalog.GetCardList(c.Request().Context())
	if err != nil {
		return err
	}
	items := make([]productBody, 0, len(products))
	for _, p := range products {
		items = append(items, toBody(p))
	}
	return c.JSON(http.StatusOK, productListBody{Total: len(items), Items: items})
}

func (s *Server) getProduct(c echo.Context) error {
	p, err := s.catalog.GetCardItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBody(p))
}

func (s *Server) createOrder(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса")
	}

	products, err := s.catalog.GetCardList(c.Request().Context())
	if err != nil {
		return err
	}
	if err := checkOrder(req, products); err != nil {
		return err
	}

	rec := OrderRecord{
		ID:        uuid.NewString(),
		Payment:   req.Payment,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Total:     req.Total,
		Items:     req.Items,
		CreatedAt: s.now().UTC(),
	}
	stored, replayed, err := s.store.Put(c.Request().Header.Get(IdempotencyHeader), rec)
	if err != nil {
		return err
	}
	if replayed {
		s.log.Info("order %s replayed", stored.ID)
	} else {
		s.log.Info("order %s accepted: %d items, total %s", stored.ID, len(stored.Items), stored.Total)
	}
	return c.JSON(http.StatusOK, orderBody{ID: stored.ID, Total: json.Number(stored.Total.String())})
}

func (s *Server) listOrders(c echo.Context) error {
	recs, err := s.store.List()
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []OrderRecord{}
	}
	return c.JSON(http.StatusOK, recs)
}

func (s *Server) getOrder(c echo.Context) error {
	rec, err := s.store.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// handleError renders every error as {"error": message}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)

	var (
		he *echo.HTTPError
		oe *OrderError
	)
	switch {
	case errors.As(err, &oe):
		status, msg = http.StatusBadRequest, oe.Message
	case api.IsNotFound(err), errors.Is(err, ErrOrderNotFound):
		status, msg = http.StatusNotFound, "NotFound"
	case errors.As(err, &he):
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	default:
		s.log.Error("request %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorBody{Error: msg})
	}
	if err != nil {
		s.log.Warn("write error response: %v", err)
	}
}
