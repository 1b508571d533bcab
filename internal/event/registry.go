package event

import (
	"sync"

	"github.com/dshills/larek/internal/event/topic"
)

// Registry stores subscriptions in two tiers: exact topic names and
// predicate selectors. Both tiers keep registration order.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	exact    map[topic.Topic][]*subscription
	patterns []*subscription
	byID     map[string]*subscription
}

// NewRegistry creates a new subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		exact: make(map[topic.Topic][]*subscription),
		byID:  make(map[string]*subscription),
	}
}

// Add appends a subscription to its tier.
func (r *Registry) Add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := topic.IsExact(sub.Selector()); ok {
		r.exact[t] = append(r.exact[t], sub)
	} else {
		r.patterns = append(r.patterns, sub)
	}
	r.byID[sub.ID()] = sub
}

// Remove removes a subscription by ID and reports whether it was present.
func (r *Registry) Remove(subID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.byID[subID]
	if !exists {
		return false
	}
	r.removeLocked(sub)
	return true
}

func (r *Registry) removeLocked(sub *subscription) {
	if t, ok := topic.IsExact(sub.Selector()); ok {
		subs := r.exact[t]
		for i, s := range subs {
			if s == sub {
				r.exact[t] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(r.exact[t]) == 0 {
			delete(r.exact, t)
		}
	} else {
		for i, s := range r.patterns {
			if s == sub {
				r.patterns = append(r.patterns[:i:i], r.patterns[i+1:]...)
				break
			}
		}
	}
	delete(r.byID, sub.ID())
}

// Get returns a subscription by ID.
func (r *Registry) Get(subID string) (*subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, exists := r.byID[subID]
	return sub, exists
}

// Match returns the subscriptions selecting eventTopic: exact subscribers in
// registration order, then predicate subscribers in registration order.
// The returned slice is a snapshot owned by the caller.
func (r *Registry) Match(eventTopic topic.Topic) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exact := r.exact[eventTopic]
	result := make([]*subscription, 0, len(exact)+len(r.patterns))
	result = append(result, exact...)
	for _, sub := range r.patterns {
		if sub.Selector().Match(eventTopic) {
			result = append(result, sub)
		}
	}
	return result
}

// Count returns the total number of subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

// CountActive returns the number of active subscriptions.
func (r *Registry) CountActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, sub := range r.byID {
		if sub.IsActive() {
			count++
		}
	}
	return count
}

// Topics returns the exact topic names that have subscribers.
func (r *Registry) Topics() []topic.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.exact) == 0 {
		return nil
	}
	topics := make([]topic.Topic, 0, len(r.exact))
	for t := range r.exact {
		topics = append(topics, t)
	}
	return topics
}

// Clear removes all subscriptions.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.byID {
		sub.cancel()
	}
	r.exact = make(map[topic.Topic][]*subscription)
	r.patterns = nil
	r.byID = make(map[string]*subscription)
}
