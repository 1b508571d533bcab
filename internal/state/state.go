// Package state holds the storefront's application state: the catalog, the
// basket, the checkout draft and its validation errors. Every mutation that
// other components care about is announced on the event bus.
//
// AppState is not safe for concurrent use. It is owned by the presenter's
// event loop.
package state

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/logging"
	"github.com/dshills/larek/internal/model"
)

// AppState is the single source of truth for the storefront.
type AppState struct {
	model.Model

	catalog    []*CardItem
	order      Order
	formErrors FormErrors
	log        *logging.Logger
}

// Option configures an AppState.
type Option func(*AppState)

// WithLogger sets the logger used for basket and validation traces.
func WithLogger(l *logging.Logger) Option {
	return func(s *AppState) {
		s.log = l
	}
}

// New creates an empty state publishing through events.
func New(events event.Publisher, opts ...Option) *AppState {
	s := &AppState{
		formErrors: FormErrors{},
		log:        logging.Default(),
	}
	s.Model = model.NewModel(events, s)
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("state")
	return s
}

// Catalog returns the current catalog items in load order.
func (s *AppState) Catalog() []*CardItem {
	return slices.Clone(s.catalog)
}

// Order returns a snapshot of the checkout draft.
func (s *AppState) Order() Order {
	return s.order.Clone()
}

// FormErrors returns a copy of the errors from the last validation.
func (s *AppState) FormErrors() FormErrors {
	return s.formErrors.Clone()
}

// SetCatalog replaces the catalog with fresh items built from products and
// emits TopicItemsChanged. Basket flags of the previous catalog are not
// carried over.
func (s *AppState) SetCatalog(ctx context.Context, products []model.Product) error {
	items := make([]*CardItem, 0, len(products))
	for _, p := range products {
		items = append(items, model.NewCardItem(p, s.Events()))
	}
	s.catalog = items
	s.log.Debug("catalog replaced with %d items", len(items))
	return s.EmitChanges(ctx, TopicItemsChanged, CatalogChange{Catalog: s.Catalog()})
}

// GetItem finds a catalog item by product id.
func (s *AppState) GetItem(id string) (*CardItem, bool) {
	for _, item := range s.catalog {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

// ToggleOrderedCard puts item in the basket when include is true and takes
// it out otherwise. Both directions are idempotent.
func (s *AppState) ToggleOrderedCard(item *CardItem, include bool) error {
	if item == nil {
		return ErrNilItem
	}

	if include {
		if s.order.contains(item.ID) {
			item.InBasket = true
			return nil
		}
		if !item.Priced() {
			return fmt.Errorf("%w: %s", ErrPriceless, item.ID)
		}
		s.order.Items = append(slices.Clone(s.order.Items), item.ID)
		s.order.Total = s.order.Total.Add(item.Price.Decimal)
		item.InBasket = true
		s.log.Debug("basket add %s total=%s", item.ID, s.order.Total)
		return nil
	}

	if s.order.contains(item.ID) {
		s.order.remove(item.ID)
		if item.Priced() {
			s.order.Total = s.order.Total.Sub(item.Price.Decimal)
		}
		s.log.Debug("basket remove %s total=%s", item.ID, s.order.Total)
	}
	item.InBasket = false
	return nil
}

// BasketCount returns the number of products in the basket.
func (s *AppState) BasketCount() int {
	return len(s.order.Items)
}

// BasketTotal returns the sum of the basket prices.
func (s *AppState) BasketTotal() decimal.Decimal {
	return s.order.Total
}

// ClearBasket takes every product out of the basket and emits
// TopicPageChanged. Basket ids with no catalog item are dropped too; the
// basket always ends empty, and such ids are then reported as ErrItemNotFound.
func (s *AppState) ClearBasket(ctx context.Context) error {
	var missing []string
	for _, id := range slices.Clone(s.order.Items) {
		item, ok := s.GetItem(id)
		if !ok {
			s.order.remove(id)
			missing = append(missing, id)
			continue
		}
		if err := s.ToggleOrderedCard(item, false); err != nil {
			return err
		}
	}
	s.order.Total = decimal.Zero
	if err := s.EmitChanges(ctx, TopicPageChanged); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("clear basket: %w: %s", ErrItemNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// AddItemToBasket puts item in the basket, refreshes its preview and emits
// TopicPageChanged.
func (s *AppState) AddItemToBasket(ctx context.Context, item *CardItem) error {
	if err := s.ToggleOrderedCard(item, true); err != nil {
		return err
	}
	if err := s.EmitChanges(ctx, TopicPreviewOpen, item); err != nil {
		return err
	}
	return s.EmitChanges(ctx, TopicPageChanged)
}

// RemoveItemFromBasket takes item out of the basket, reopens the basket and
// emits TopicPageChanged.
func (s *AppState) RemoveItemFromBasket(ctx context.Context, item *CardItem) error {
	if err := s.ToggleOrderedCard(item, false); err != nil {
		return err
	}
	if err := s.EmitChanges(ctx, TopicBasketOpen); err != nil {
		return err
	}
	return s.EmitChanges(ctx, TopicPageChanged)
}

// BasketItems returns the catalog items in the basket, in catalog order.
func (s *AppState) BasketItems() []*CardItem {
	var out []*CardItem
	for _, item := range s.catalog {
		if item.InBasket {
			out = append(out, item)
		}
	}
	return out
}

// SetPreview announces the item to preview. A nil item closes the preview.
func (s *AppState) SetPreview(ctx context.Context, item *CardItem) error {
	if item == nil {
		return s.EmitChanges(ctx, TopicPreviewOpen, nil)
	}
	return s.EmitChanges(ctx, TopicPreviewOpen, item)
}

// SetOrderField applies update and validates the order step. When the step
// is valid TopicOrderReady is emitted with a snapshot of the draft.
func (s *AppState) SetOrderField(ctx context.Context, update FieldUpdate) error {
	if update == nil {
		return ErrUnknownField
	}
	update.apply(&s.order)
	ok, err := s.ValidateOrder(ctx)
	if err != nil || !ok {
		return err
	}
	return s.EmitChanges(ctx, TopicOrderReady, s.Order())
}

// SetContactField applies update and validates the contacts step. When the
// step is valid TopicContactsReady is emitted with a snapshot of the draft.
func (s *AppState) SetContactField(ctx context.Context, update FieldUpdate) error {
	if update == nil {
		return ErrUnknownField
	}
	update.apply(&s.order)
	ok, err := s.ValidateContacts(ctx)
	if err != nil || !ok {
		return err
	}
	return s.EmitChanges(ctx, TopicContactsReady, s.Order())
}

// ValidateOrder checks the address and payment method, replaces the form
// errors and emits TopicFormErrorsOrder.
func (s *AppState) ValidateOrder(ctx context.Context) (bool, error) {
	s.formErrors = orderErrors(s.order)
	if err := s.EmitChanges(ctx, TopicFormErrorsOrder, s.FormErrors()); err != nil {
		return false, err
	}
	return len(s.formErrors) == 0, nil
}

// ValidateContacts checks the email and phone, replaces the form errors and
// emits TopicFormErrorsContacts.
func (s *AppState) ValidateContacts(ctx context.Context) (bool, error) {
	s.formErrors = contactErrors(s.order)
	if err := s.EmitChanges(ctx, TopicFormErrorsContacts, s.FormErrors()); err != nil {
		return false, err
	}
	return len(s.formErrors) == 0, nil
}

// ClearOrderStatus blanks the contact and delivery fields. Items and total
// are kept.
func (s *AppState) ClearOrderStatus() {
	s.order.Email = ""
	s.order.Phone = ""
	s.order.Address = ""
	s.order.Payment = PaymentNone
}
