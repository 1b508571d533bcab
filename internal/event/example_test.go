package event_test

import (
	"context"
	"fmt"

	"github.com/dshills/larek/internal/event"
	"github.com/dshills/larek/internal/event/topic"
)

// Example_dispatchOrder shows that exact subscribers run before pattern subscribers.
func Example_dispatchOrder() {
	bus := event.NewBus()

	bus.SubscribeFunc(topic.MustRegexp(`^order\..*:change`), func(ctx context.Context, evt event.Event) error {
		fmt.Println("pattern:", evt.Name)
		return nil
	})
	bus.SubscribeFunc(topic.Topic("order.address:change"), func(ctx context.Context, evt event.Event) error {
		fmt.Println("exact:", evt.Payload)
		return nil
	})

	bus.Publish(context.Background(), topic.FieldChange("order", "address"), "Moscow")

	// Output:
	// exact: Moscow
	// pattern: order.address:change
}
