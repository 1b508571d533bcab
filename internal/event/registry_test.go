package event

import (
	"context"
	"testing"

	"github.com/dshills/larek/internal/event/topic"
)

func newTestSub(id string, sel topic.Selector) *subscription {
	return newSubscription(id, sel, HandlerFunc(func(ctx context.Context, evt Event) error { return nil }))
}

func ids(subs []*subscription) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.ID()
	}
	return out
}

func TestRegistry_AddAndMatch(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestSub("p1", topic.Glob("order.*")))
	r.Add(newTestSub("e1", topic.Topic("order.address:change")))
	r.Add(newTestSub("e2", topic.Topic("order:open")))
	r.Add(newTestSub("p2", topic.Any()))

	tests := []struct {
		topic topic.Topic
		want  []string
	}{
		{"order.address:change", []string{"e1", "p1", "p2"}},
		{"order:open", []string{"e2", "p2"}},
		{"basket:open", []string{"p2"}},
	}

	for _, tt := range tests {
		t.Run(tt.topic.String(), func(t *testing.T) {
			got := ids(r.Match(tt.topic))
			if len(got) != len(tt.want) {
				t.Fatalf("Match(%q) = %v, want %v", tt.topic, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Match(%q) = %v, want %v", tt.topic, got, tt.want)
				}
			}
		})
	}

	if r.Count() != 4 {
		t.Errorf("Count() = %d, want 4", r.Count())
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestSub("e1", topic.Topic("a:b")))
	r.Add(newTestSub("p1", topic.Glob("**")))

	if !r.Remove("e1") {
		t.Error("Remove(e1) = false, want true")
	}
	if r.Remove("e1") {
		t.Error("second Remove(e1) = true, want false")
	}
	if !r.Remove("p1") {
		t.Error("Remove(p1) = false, want true")
	}
	if got := r.Match("a:b"); len(got) != 0 {
		t.Errorf("Match after removal = %v", ids(got))
	}
	if len(r.Topics()) != 0 {
		t.Errorf("Topics() = %v, want empty", r.Topics())
	}
}

func TestRegistry_MatchIsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestSub("e1", topic.Topic("a:b")))
	r.Add(newTestSub("e2", topic.Topic("a:b")))

	snap := r.Match("a:b")
	r.Remove("e1")

	if len(snap) != 2 || snap[0].ID() != "e1" || snap[1].ID() != "e2" {
		t.Errorf("snapshot changed after Remove: %v", ids(snap))
	}
}

func TestRegistry_CountActive(t *testing.T) {
	r := NewRegistry()
	a := newTestSub("a", topic.Topic("a:b"))
	b := newTestSub("b", topic.Topic("a:b"))
	r.Add(a)
	r.Add(b)

	b.Pause()
	if got := r.CountActive(); got != 1 {
		t.Errorf("CountActive() = %d, want 1", got)
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	a := newTestSub("a", topic.Topic("a:b"))
	r.Add(a)
	r.Add(newTestSub("b", topic.Any()))

	r.Clear()
	if r.Count() != 0 {
		t.Errorf("Count() = %d after Clear", r.Count())
	}
	if a.State() != SubscriptionStateCancelled {
		t.Error("expected cleared subscriptions to be cancelled")
	}
}
