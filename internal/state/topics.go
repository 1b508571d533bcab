package state

import "github.com/dshills/larek/internal/event/topic"

// Event names exchanged between the state, the presenter and the views.
const (
	TopicItemsChanged   topic.Topic = "items:changed"
	TopicCardSelect     topic.Topic = "card:select"
	TopicPreviewOpen    topic.Topic = "preview:open"
	TopicBasketOpen     topic.Topic = "basket:open"
	TopicPageChanged    topic.Topic = "page:changed"
	TopicModalOpen      topic.Topic = "modal:open"
	TopicModalClose     topic.Topic = "modal:close"
	TopicOrderOpen      topic.Topic = "order:open"
	TopicOrderSubmit    topic.Topic = "order:submit"
	TopicOrderReady     topic.Topic = "order:ready"
	TopicContactsOpen   topic.Topic = "contacts:open"
	TopicContactsSubmit topic.Topic = "contacts:submit"
	TopicContactsReady  topic.Topic = "contacts:ready"

	TopicFormErrorsOrder    topic.Topic = "formErrorsOrder:change"
	TopicFormErrorsContacts topic.Topic = "formErrorsContacts:change"
)

// Form names used as the first segment of field change topics.
const (
	FormOrder    = "order"
	FormContacts = "contacts"
)

// Selectors for field change events such as "order.address:change".
var (
	OrderFieldChanged    = topic.MustRegexp(`^order\..*:change`)
	ContactsFieldChanged = topic.MustRegexp(`^contacts\..*:change`)
)

// CatalogChange is the payload of TopicItemsChanged.
type CatalogChange struct {
	Catalog []*CardItem
}

// FieldChange is the payload a form emits when one of its inputs changes.
type FieldChange struct {
	Field string
	Value string
}
