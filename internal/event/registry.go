package event

import (
	"sort"
	"sync"
)

// Registry manages subscriptions by ID and topic pattern.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]*subscription
}

// NewRegistry creates a new subscription registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*subscription)}
}

// Add adds a subscription.
func (r *Registry) Add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[sub.ID()] = sub
}

// Remove removes a subscription by ID.
func (r *Registry) Remove(subID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[subID]; !exists {
		return false
	}
	delete(r.byID, subID)
	return true
}

// Match returns the active subscriptions whose pattern matches eventTopic,
// in priority order. Equal priorities keep subscription order.
func (r *Registry) Match(eventTopic Topic) []*subscription {
	r.mu.RLock()
	var matched []*subscription
	for _, sub := range r.byID {
		if sub.Active() && eventTopic.Matches(sub.Topic()) {
			matched = append(matched, sub)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].config.Priority != matched[j].config.Priority {
			return matched[i].config.Priority < matched[j].config.Priority
		}
		return matched[i].seq < matched[j].seq
	})
	return matched
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
		if sub.Active() {
			count++
		}
	}
	return count
}

// Clear removes all subscriptions.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]*subscription)
}
