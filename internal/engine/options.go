package engine

import (
	"github.com/dshills/blockstorm/internal/dnd"
	"github.com/dshills/blockstorm/internal/engine/handler"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/selection"
	"github.com/dshills/blockstorm/internal/event"
)

// DefaultMaxUndoEntries is the default undo stack limit.
const DefaultMaxUndoEntries = 1000

// Option configures an Engine during creation.
type Option func(*Engine)

// WithDocument sets the initial document. The engine takes ownership.
func WithDocument(doc *node.Document) Option {
	return func(e *Engine) {
		if doc != nil {
			e.doc = doc
		}
	}
}

// WithSelection sets the initial selection. It is clamped to the document.
func WithSelection(sel selection.Selection) Option {
	return func(e *Engine) {
		e.sel = &sel
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithReadOnly creates a read-only engine.
// Apply, Undo and Redo return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

// WithDragConfig sets the drag classification thresholds.
func WithDragConfig(cfg dnd.Config) Option {
	return func(e *Engine) {
		e.resolver.Store(dnd.NewResolver(cfg))
	}
}

// WithLayout sets the provider of rendered block rectangles.
func WithLayout(layout dnd.LayoutProvider) Option {
	return func(e *Engine) {
		e.layout = layout
	}
}

// WithBus publishes change notifications on a shared bus. The engine does
// not close a bus it did not create.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// WithHandlers replaces the node-type handler registry.
func WithHandlers(r *handler.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.handlers = r
		}
	}
}

// WithNotifyErrorHandler receives errors returned by subscribers. A failing
// subscriber never fails the commit that notified it.
func WithNotifyErrorHandler(fn func(error)) Option {
	return func(e *Engine) {
		e.onNotifyError = fn
	}
}
