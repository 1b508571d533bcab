package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/state"
	"github.com/dshills/larek/internal/view"
)

// command is one console verb. run executes on the event loop.
type command struct {
	usage string
	help  string
	run   func(app *Application, ctx context.Context, arg string) error
}

var commands = map[string]command{
	"list": {"list", "show the catalog", func(app *Application, ctx context.Context, _ string) error {
		return app.page.Render()
	}},
	"show": {"show N", "open card N", func(app *Application, ctx context.Context, arg string) error {
		item, err := pick(app.cards, arg)
		if err != nil {
			return err
		}
		return app.bus.Publish(ctx, state.TopicCardSelect, item)
	}},
	"buy": {"buy", "put the previewed product in the basket", func(app *Application, ctx context.Context, _ string) error {
		if app.flow.Stage() != StagePreviewOpen || app.preview == nil {
			return ErrNotAvailable
		}
		if _, disabled := view.PreviewButton(view.CardDataOf(app.preview)); disabled {
			return fmt.Errorf("%w: button disabled", ErrNotAvailable)
		}
		return app.state.AddItemToBasket(ctx, app.preview)
	}},
	"basket": {"basket", "open the basket", func(app *Application, ctx context.Context, _ string) error {
		return app.page.OpenBasket(ctx)
	}},
	"remove": {"remove N", "take basket line N out", func(app *Application, ctx context.Context, arg string) error {
		if app.flow.Stage() != StageBasketOpen {
			return ErrNotAvailable
		}
		item, err := pick(app.basketItems, arg)
		if err != nil {
			return err
		}
		return app.state.RemoveItemFromBasket(ctx, item)
	}},
	"checkout": {"checkout", "start checkout from the basket", func(app *Application, ctx context.Context, _ string) error {
		if app.flow.Stage() != StageBasketOpen {
			return ErrNotAvailable
		}
		return app.basket.Checkout(ctx)
	}},
	"pay": {"pay card|cash", "choose the payment method", func(app *Application, ctx context.Context, arg string) error {
		return app.orderInput(ctx, state.FieldPayment, arg)
	}},
	"address": {"address TEXT", "set the delivery address", func(app *Application, ctx context.Context, arg string) error {
		return app.orderInput(ctx, state.FieldAddress, arg)
	}},
	"next": {"next", "submit the order step", func(app *Application, ctx context.Context, _ string) error {
		if app.flow.Stage() != StageOrderFormOpen {
			return ErrNotAvailable
		}
		return app.order.Submit(ctx)
	}},
	"email": {"email TEXT", "set the contact email", func(app *Application, ctx context.Context, arg string) error {
		return app.contactsInput(ctx, state.FieldEmail, arg)
	}},
	"phone": {"phone TEXT", "set the contact phone", func(app *Application, ctx context.Context, arg string) error {
		return app.contactsInput(ctx, state.FieldPhone, arg)
	}},
	"submit": {"submit", "place the order", func(app *Application, ctx context.Context, _ string) error {
		if app.flow.Stage() != StageContactsFormOpen {
			return ErrNotAvailable
		}
		return app.contacts.Submit(ctx)
	}},
	"form": {"form", "show the open form", func(app *Application, ctx context.Context, _ string) error {
		switch app.flow.Stage() {
		case StageOrderFormOpen:
			return app.modal.Render(ctx, app.order.String())
		case StageContactsFormOpen:
			return app.modal.Render(ctx, app.contacts.String())
		}
		return ErrNotAvailable
	}},
	"stats": {"stats", "show loop and backend counters", func(app *Application, ctx context.Context, _ string) error {
		_, err := io.WriteString(app.out(), formatStats(app.metrics.Snapshot(), app.bus.Stats()))
		return err
	}},
	"close": {"close", "close the open window", func(app *Application, ctx context.Context, _ string) error {
		if app.flow.Stage() == StageSuccessShown {
			return app.success.Close(ctx)
		}
		return app.modal.Close(ctx)
	}},
}

// Exec parses a console line and runs it on the event loop.
func (app *Application) Exec(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "":
		return nil
	case "quit", "exit":
		return ErrQuit
	case "help":
		return app.Do(ctx, func(ctx context.Context) error {
			return app.writeHelp()
		})
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	app.metrics.RecordCommand()
	return app.Do(ctx, func(ctx context.Context) error {
		if err := cmd.run(app, ctx, arg); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

func (app *Application) orderInput(ctx context.Context, field state.Field, value string) error {
	if app.flow.Stage() != StageOrderFormOpen {
		return ErrNotAvailable
	}
	return app.order.Change(ctx, string(field), value)
}

func (app *Application) contactsInput(ctx context.Context, field state.Field, value string) error {
	if app.flow.Stage() != StageContactsFormOpen {
		return ErrNotAvailable
	}
	return app.contacts.Change(ctx, string(field), value)
}

func (app *Application) writeHelp() error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(&b, "  %-16s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(&b, "  %-16s %s\n", "quit", "leave the shop")
	_, err := io.WriteString(app.out(), b.String())
	return err
}

func formatStats(s MetricsSnapshot, b event.Stats) string {
	round := func(d time.Duration) time.Duration { return d.Round(time.Microsecond) }
	return fmt.Sprintf("uptime %s\ntasks %d (%d failed, avg %s, max %s)\nrequests %d (%d failed, avg %s)\ncommands %d\n"+
		"events %d (%d delivered, %d handler errors)\nsubscribers %d (%d active, %d topics)\n",
		s.Uptime.Round(time.Second), s.Tasks, s.TasksFailed, round(s.AvgTask), round(s.MaxTask),
		s.Requests, s.RequestsFailed, round(s.AvgRequest), s.Commands,
		b.EventsPublished, b.EventsDelivered, b.HandlerErrors,
		b.Subscribers, b.ActiveSubscribers, b.Topics)
}

// pick returns the 1-based element n of items.
func pick(items []*state.CardItem, arg string) (*state.CardItem, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(items) {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchCard, arg)
	}
	return items[n-1], nil
}
