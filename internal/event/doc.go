// Package event provides the in-process notification bus for blockstorm.
//
// The bus decouples the editor state from its collaborators: undo history,
// persistence, sync layers and UI containers subscribe to topics instead of
// being called directly.
//
// # Event Topics
//
// Events use hierarchical topics with dot notation:
//
//	document.transaction.committed - a transaction was applied
//	document.selection.changed     - the selection moved
//	config.drag.reloaded           - drag thresholds were reloaded
//
// # Wildcard Patterns
//
// Subscriptions support wildcard patterns:
//
//	document.*   - matches document.opened (single segment)
//	document.**  - matches document.transaction.committed (multi-segment)
//	*.changed    - matches selection.changed (prefix wildcard)
//
// # Delivery
//
// Delivery is synchronous: Publish runs every matching handler in the
// publisher's goroutine, in priority order (lower values first, ties in
// subscription order), and returns once all of them finished. Consecutive
// publishes are therefore observed in publish order. A panicking handler is
// recovered and reported as a PanicError; it does not stop delivery to the
// remaining handlers.
//
// # Subscriptions
//
//	sub, err := bus.Subscribe("document.**", event.HandlerFunc(func(ctx context.Context, ev any) error {
//		...
//	}), event.WithPriority(event.PriorityHigh))
//
//	bus.Unsubscribe(sub)
package event
