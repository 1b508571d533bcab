// Package app is the storefront presenter. It wires the application state,
// the views and the backend together over the event bus, drives the
// checkout flow and runs everything on a single event loop.
package app

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/dshills/larek/internal/api"
	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
	"github.com/dshills/larek/internal/state"
	"github.com/dshills/larek/internal/view"
)

// CatalogWatcher is implemented by catalogs that can report changes, such
// as api.FileSource.
type CatalogWatcher interface {
	Watch(ctx context.Context, onChange func([]model.Product)) error
}

// Options configures the application.
type Options struct {
	// Out receives everything the views render. Defaults to io.Discard.
	Out io.Writer

	// Catalog supplies products. Required.
	Catalog api.Catalog

	// Orders accepts orders. Required.
	Orders api.Orderer

	// Bus is the event bus. A new bus is created when nil and closed by
	// Shutdown; a bus passed in is left open.
	Bus event.Bus

	// Logger defaults to logging.Default().
	Logger *logging.Logger

	// QueueSize is the event loop queue length.
	QueueSize int
}

// Application is the central coordinator for the storefront.
type Application struct {
	bus     event.Bus
	ownsBus bool
	subs    *event.Subscriber
	state   *state.AppState
	catalog api.Catalog
	orders  api.Orderer
	loop    *Loop
	flow    Flow
	metrics *Metrics
	log     *logging.Logger
	output  io.Writer

	// Views
	page     *view.Page
	modal    *view.Modal
	basket   *view.Basket
	order    *view.OrderForm
	contacts *view.ContactsForm
	success  *view.Success

	// What the open views are showing, for console commands.
	cards       []*state.CardItem
	preview     *state.CardItem
	basketItems []*state.CardItem

	running atomic.Bool
}

// New creates an Application and subscribes it to the bus.
func New(opts Options) (*Application, error) {
	if opts.Catalog == nil {
		return nil, NewComponentError("app", "init", errors.New("catalog is required"))
	}
	if opts.Orders == nil {
		return nil, NewComponentError("app", "init", errors.New("order backend is required"))
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	ownsBus := opts.Bus == nil
	if ownsBus {
		opts.Bus = event.NewBus(event.WithLogger(opts.Logger))
	}

	app := &Application{
		bus:     opts.Bus,
		ownsBus: ownsBus,
		subs:    event.NewSubscriber(opts.Bus),
		catalog: opts.Catalog,
		orders:  opts.Orders,
		metrics: NewMetrics(),
		log:     opts.Logger.WithComponent("app"),
		output:  opts.Out,
	}
	app.state = state.New(opts.Bus, state.WithLogger(opts.Logger))
	app.loop = NewLoop(opts.QueueSize, opts.Logger, app.metrics)

	app.page = view.NewPage(opts.Out, opts.Bus)
	app.modal = view.NewModal(opts.Out, opts.Bus)
	app.basket = view.NewBasket(opts.Bus)
	app.order = view.NewOrderForm(opts.Bus)
	app.contacts = view.NewContactsForm(opts.Bus)
	app.success = view.NewSuccess(app.modal.Close)

	if err := app.subscribe(); err != nil {
		app.subs.Close()
		return nil, NewComponentError("app", "subscribe", err)
	}
	return app, nil
}

// Run loads the catalog and processes the event loop until ctx is done or
// Shutdown is called.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.LoadCatalog(ctx)
	if w, ok := app.catalog.(CatalogWatcher); ok {
		go app.watchCatalog(ctx, w)
	}

	err := app.loop.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

// Shutdown stops the loop and drops the bus subscriptions. A bus created by
// New is closed as well, cancelling subscriptions made by others.
func (app *Application) Shutdown() {
	app.loop.Close()
	app.subs.Close()
	if app.ownsBus {
		app.bus.Close()
	}
}

// LoadCatalog fetches the catalog in the background and installs it on the
// loop. Failures are logged; the page keeps its previous catalog.
func (app *Application) LoadCatalog(ctx context.Context) {
	go func() {
		timer := StartTimer()
		products, err := app.catalog.GetCardList(ctx)
		app.metrics.RecordRequest(timer.Elapsed(), err)
		if err != nil {
			app.log.Error("load catalog: %v", err)
			return
		}
		app.post(func(ctx context.Context) error {
			return app.state.SetCatalog(ctx, products)
		})
	}()
}

func (app *Application) watchCatalog(ctx context.Context, w CatalogWatcher) {
	err := w.Watch(ctx, func(products []model.Product) {
		app.post(func(ctx context.Context) error {
			return app.state.SetCatalog(ctx, products)
		})
	})
	if err != nil {
		app.log.Warn("catalog watch stopped: %v", err)
	}
}

// post queues a continuation, logging when the loop is gone.
func (app *Application) post(t Task) {
	if err := app.loop.Post(t); err != nil {
		app.log.Debug("continuation dropped: %v", err)
	}
}

// Do runs t on the event loop and waits for it.
func (app *Application) Do(ctx context.Context, t Task) error {
	return app.loop.Do(ctx, t)
}

func (app *Application) out() io.Writer {
	return app.output
}

// Bus returns the event bus.
func (app *Application) Bus() event.Bus {
	return app.bus
}

// State returns the application state. Use it only from loop tasks.
func (app *Application) State() *state.AppState {
	return app.state
}

// Stage returns the checkout flow stage.
func (app *Application) Stage() Stage {
	return app.flow.Stage()
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// requestTimeout bounds background backend calls.
const requestTimeout = 30 * time.Second
