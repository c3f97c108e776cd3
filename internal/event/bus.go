package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/google/uuid"
)

// PanicHandler is called when a handler panics.
type PanicHandler func(event any, recovered any)

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets a hook called for every recovered handler panic.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *Bus) {
		b.panicHandler = h
	}
}

// Stats contains event bus statistics.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// Bus delivers events synchronously to subscribers.
type Bus struct {
	registry     *Registry
	seq          atomic.Uint64
	closed       atomic.Bool
	panicHandler PanicHandler

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{registry: NewRegistry()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for events whose topic matches pattern.
func (b *Bus) Subscribe(pattern Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%q: %w", pattern, ErrInvalidTopic)
	}
	sub := newSubscription(uuid.New().String(), b.seq.Add(1), pattern, handler, opts...)
	b.registry.Add(sub)
	return sub, nil
}

// SubscribeFunc is Subscribe for a plain function.
func (b *Bus) SubscribeFunc(pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe cancels and removes a subscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()
	if !b.registry.Remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Publish delivers ev to every matching handler before returning. Handler
// errors and panics are collected and returned joined; they do not stop
// delivery to the remaining handlers.
func (b *Bus) Publish(ctx context.Context, ev TopicProvider) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	t := ev.EventTopic()
	if !t.IsValid() || t.IsWildcard() {
		return fmt.Errorf("%q: %w", t, ErrInvalidTopic)
	}
	b.eventsPublished.Add(1)

	var errs []error
	for _, sub := range b.registry.Match(t) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !sub.accepts(ev) {
			continue
		}
		if sub.config.Once {
			if !sub.claim() {
				continue
			}
			b.registry.Remove(sub.id)
		}
		if err := b.deliver(ctx, sub, t, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, sub *subscription, t Topic, ev any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.panicHandler != nil {
				b.panicHandler(ev, r)
			}
			err = &PanicError{SubscriptionID: sub.id, Topic: t, Value: r, Stack: string(debug.Stack())}
		}
	}()

	b.eventsDelivered.Add(1)
	if herr := sub.handler.Handle(ctx, ev); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: sub.id, Topic: t, Err: herr}
	}
	return nil
}

// Close stops the bus. Later Subscribe and Publish calls fail with ErrBusClosed.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.registry.Clear()
}

// Stats returns delivery counters.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: b.registry.CountActive(),
	}
}
