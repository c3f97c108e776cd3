package event

import "sync/atomic"

// Subscription is a handle returned by Subscribe. Cancelling it stops
// delivery; Bus.Unsubscribe also removes it from the bus.
type Subscription interface {
	ID() string
	Topic() Topic
	// Active reports whether the subscription still receives events.
	Active() bool
	Cancel()
}

// SubscriptionConfig holds per-subscription delivery settings.
type SubscriptionConfig struct {
	// Priority orders delivery; lower values run first.
	Priority Priority
	Filter   FilterFunc
	// Once cancels the subscription after its first delivery.
	Once bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the delivery priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Priority = p }
}

// WithFilter skips events the predicate rejects.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Filter = f }
}

// WithOnce delivers at most one event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) { c.Once = true }
}

type subscription struct {
	id        string
	seq       uint64
	topic     Topic
	handler   Handler
	config    SubscriptionConfig
	cancelled atomic.Bool
}

func newSubscription(id string, seq uint64, t Topic, h Handler, opts ...SubscriptionOption) *subscription {
	s := &subscription{
		id:      id,
		seq:     seq,
		topic:   t,
		handler: h,
		config:  SubscriptionConfig{Priority: PriorityNormal},
	}
	for _, opt := range opts {
		opt(&s.config)
	}
	return s
}

func (s *subscription) ID() string   { return s.id }
func (s *subscription) Topic() Topic { return s.topic }
func (s *subscription) Active() bool { return !s.cancelled.Load() }
func (s *subscription) Cancel()      { s.cancelled.Store(true) }

// claim cancels a once-subscription, reporting whether this caller won the
// single delivery.
func (s *subscription) claim() bool {
	return s.cancelled.CompareAndSwap(false, true)
}

func (s *subscription) accepts(ev any) bool {
	return s.Active() && (s.config.Filter == nil || s.config.Filter(ev))
}
