package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/larek/internal/api"
	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/state"
	"github.com/dshills/larek/internal/view"
)

// subscribe registers the presenter's handlers.
func (app *Application) subscribe() error {
	s := app.subs

	steps := []func() error{
		func() error { _, err := s.SubscribeFunc(state.TopicModalOpen, app.onModalOpen); return err },
		func() error { _, err := s.SubscribeFunc(state.TopicModalClose, app.onModalClose); return err },
		func() error {
			_, err := event.SubscribePayload(s, state.TopicItemsChanged, app.onItemsChanged)
			return err
		},
		func() error {
			_, err := event.SubscribePayload(s, state.TopicCardSelect, app.onCardSelect)
			return err
		},
		func() error { _, err := s.SubscribeFunc(state.TopicPreviewOpen, app.onPreviewOpen); return err },
		func() error { _, err := s.SubscribeFunc(state.TopicBasketOpen, app.onBasketOpen); return err },
		func() error { _, err := s.SubscribeFunc(state.TopicPageChanged, app.onPageChanged); return err },
		func() error { _, err := s.SubscribeFunc(state.TopicOrderOpen, app.onOrderOpen); return err },
		func() error { _, err := s.SubscribeFunc(state.TopicOrderSubmit, app.onContactsOpen); return err },
		func() error { _, err := s.SubscribeFunc(state.TopicContactsOpen, app.onContactsOpen); return err },
		func() error { _, err := s.SubscribeFunc(state.TopicContactsSubmit, app.onContactsSubmit); return err },
		func() error {
			_, err := event.SubscribePayload(s, state.TopicFormErrorsOrder, app.onOrderErrors)
			return err
		},
		func() error {
			_, err := event.SubscribePayload(s, state.TopicFormErrorsContacts, app.onContactsErrors)
			return err
		},
		func() error {
			_, err := event.SubscribePayload(s, state.ContactsFieldChanged, app.onContactsField)
			return err
		},
		func() error {
			_, err := event.SubscribePayload(s, state.OrderFieldChanged, app.onOrderField)
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (app *Application) onModalOpen(ctx context.Context, _ event.Event) error {
	app.page.SetLocked(true)
	return nil
}

func (app *Application) onModalClose(ctx context.Context, _ event.Event) error {
	app.page.SetLocked(false)
	app.preview = nil
	app.basketItems = nil
	return app.flow.Move(StageBrowsing)
}

func (app *Application) onItemsChanged(ctx context.Context, change state.CatalogChange) error {
	app.cards = change.Catalog
	lines := make([]string, 0, len(change.Catalog))
	for i, item := range change.Catalog {
		lines = append(lines, view.CatalogCard(i+1, view.CardDataOf(item)))
	}
	app.page.SetCatalog(lines)
	return app.page.Render()
}

func (app *Application) onCardSelect(ctx context.Context, item *state.CardItem) error {
	return app.state.SetPreview(ctx, item)
}

// onPreviewOpen confirms the product with the backend before showing it.
// A nil item closes the modal.
func (app *Application) onPreviewOpen(ctx context.Context, evt event.Event) error {
	item, _ := evt.Payload.(*state.CardItem)
	if item == nil {
		return app.modal.Close(ctx)
	}

	go func() {
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		timer := StartTimer()
		_, err := app.catalog.GetCardItem(rctx, item.ID)
		app.metrics.RecordRequest(timer.Elapsed(), err)
		if err != nil {
			app.log.Error("get product %s: %v", item.ID, err)
			return
		}
		app.post(func(ctx context.Context) error {
			return app.showPreview(ctx, item)
		})
	}()
	return nil
}

func (app *Application) showPreview(ctx context.Context, item *state.CardItem) error {
	if !app.flow.CanMove(StagePreviewOpen) {
		app.log.Debug("stale preview of %s dropped in stage %s", item.ID, app.flow.Stage())
		return nil
	}
	app.preview = item
	if err := app.modal.Render(ctx, view.Preview(view.CardDataOf(item))); err != nil {
		return err
	}
	return app.flow.Move(StagePreviewOpen)
}

func (app *Application) onBasketOpen(ctx context.Context, _ event.Event) error {
	if err := app.flow.Move(StageBasketOpen); err != nil {
		return err
	}
	items := app.state.BasketItems()
	lines := make([]string, 0, len(items))
	for i, item := range items {
		d := view.CardDataOf(item)
		d.Position = i + 1
		lines = append(lines, view.BasketItem(d))
	}
	app.basketItems = items
	app.preview = nil
	return app.modal.Render(ctx, app.basket.Render(lines, app.state.Order().Total))
}

func (app *Application) onPageChanged(ctx context.Context, _ event.Event) error {
	app.page.SetCounter(app.state.BasketCount())
	return nil
}

func (app *Application) onOrderOpen(ctx context.Context, _ event.Event) error {
	if err := app.flow.Move(StageOrderFormOpen); err != nil {
		return err
	}
	app.state.ClearOrderStatus()
	app.basketItems = nil
	return app.modal.Render(ctx, app.order.Render("", state.PaymentNone))
}

func (app *Application) onContactsOpen(ctx context.Context, _ event.Event) error {
	if err := app.flow.Move(StageContactsFormOpen); err != nil {
		return err
	}
	return app.modal.Render(ctx, app.contacts.Render("", ""))
}

// onContactsSubmit posts the order. On success the basket and the order
// status are cleared and the confirmation is shown; on failure the contacts
// form stays open.
func (app *Application) onContactsSubmit(ctx context.Context, _ event.Event) error {
	if err := app.flow.Move(StageSubmitting); err != nil {
		return err
	}
	order := app.state.Order()

	go func() {
		rctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		timer := StartTimer()
		res, err := app.orders.OrderProducts(rctx, order)
		app.metrics.RecordRequest(timer.Elapsed(), err)

		app.post(func(ctx context.Context) error {
			if err != nil {
				app.log.Error("post order: %v", err)
				if app.flow.Stage() != StageSubmitting {
					return nil
				}
				return app.flow.Move(StageContactsFormOpen)
			}
			return app.orderPlaced(ctx, res)
		})
	}()
	return nil
}

// orderPlaced clears the basket and the order status and shows the
// confirmation if the user is still waiting for it.
func (app *Application) orderPlaced(ctx context.Context, res api.OrderResult) error {
	app.log.Info("order %s placed", res.ID)
	if err := app.state.ClearBasket(ctx); err != nil {
		// ids dropped by a catalog reload still leave the basket empty
		if !errors.Is(err, state.ErrItemNotFound) {
			return err
		}
		app.log.Warn("order %s: %v", res.ID, err)
	}
	app.state.ClearOrderStatus()
	if app.flow.Stage() != StageSubmitting {
		return nil
	}
	if err := app.modal.Render(ctx, app.success.Render(res.Total)); err != nil {
		return err
	}
	return app.flow.Move(StageSuccessShown)
}

func (app *Application) onOrderErrors(ctx context.Context, errs state.FormErrors) error {
	_, address := errs[state.FieldAddress]
	_, payment := errs[state.FieldPayment]
	app.order.SetValid(!address && !payment)
	app.order.SetErrors(errs.Join(state.FieldAddress, state.FieldPayment))
	return nil
}

func (app *Application) onContactsErrors(ctx context.Context, errs state.FormErrors) error {
	_, email := errs[state.FieldEmail]
	_, phone := errs[state.FieldPhone]
	app.contacts.SetValid(!email && !phone)
	app.contacts.SetErrors(errs.Join(state.FieldPhone, state.FieldEmail))
	return nil
}

func (app *Application) onOrderField(ctx context.Context, change state.FieldChange) error {
	update, err := state.ParseFieldUpdate(change.Field, change.Value)
	if err != nil {
		return fmt.Errorf("order form: %w", err)
	}
	return app.state.SetOrderField(ctx, update)
}

func (app *Application) onContactsField(ctx context.Context, change state.FieldChange) error {
	update, err := state.ParseFieldUpdate(change.Field, change.Value)
	if err != nil {
		return fmt.Errorf("contacts form: %w", err)
	}
	return app.state.SetContactField(ctx, update)
}
