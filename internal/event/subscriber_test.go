package event

import (
	"context"
	"testing"

	"github.com/dshills/larek/internal/event/topic"
)

func TestSubscriber_TracksAndCloses(t *testing.T) {
	bus := NewBus()
	s := NewSubscriber(bus)

	count := 0
	h := func(ctx context.Context, evt Event) error {
		count++
		return nil
	}
	if _, err := s.SubscribeFunc(topic.Topic("page:changed"), h); err != nil {
		t.Fatalf("SubscribeFunc() failed: %v", err)
	}
	if _, err := SubscribePayload(s, topic.Topic("basket:open"), func(ctx context.Context, n int) error {
		count += n
		return nil
	}); err != nil {
		t.Fatalf("SubscribePayload() failed: %v", err)
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}

	bus.Publish(context.Background(), "page:changed", nil)
	bus.Publish(context.Background(), "basket:open", 10)
	if count != 11 {
		t.Fatalf("count = %d, want 11", count)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	bus.Publish(context.Background(), "page:changed", nil)
	if count != 11 {
		t.Errorf("handler ran after Close")
	}
	if bus.Stats().ActiveSubscribers != 0 {
		t.Errorf("ActiveSubscribers = %d after Close", bus.Stats().ActiveSubscribers)
	}

	if _, err := s.SubscribeFunc(topic.Topic("page:changed"), h); err != ErrSubscriberClosed {
		t.Errorf("Subscribe after close: err = %v, want ErrSubscriberClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}
