package engine

import (
	"context"

	"github.com/dshills/blockstorm/internal/dnd"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/transaction"
)

// SetLayout replaces the provider of rendered block rectangles.
func (e *Engine) SetLayout(layout dnd.LayoutProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = layout
}

// SetDragConfig replaces the drag thresholds. In-flight resolutions keep
// the thresholds they started with.
func (e *Engine) SetDragConfig(cfg dnd.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.resolver.Store(dnd.NewResolver(cfg))
	return nil
}

// DragConfig returns the current drag thresholds.
func (e *Engine) DragConfig() dnd.Config {
	return e.resolver.Load().Config()
}

// ResolveDrag resolves the drop target for dragged at pt.
func (e *Engine) ResolveDrag(dragged path.Path, pt dnd.Point) (*dnd.Indicator, error) {
	e.mu.RLock()
	doc, layout := e.doc, e.layout
	e.mu.RUnlock()

	if layout == nil {
		return nil, dnd.ErrUnresolvedGeometry
	}
	return e.resolver.Load().Resolve(doc, layout, dragged, pt)
}

// OnDragMove returns the indicator to paint for dragged at pt, or nil when
// there is no valid drop target. It never mutates the document.
func (e *Engine) OnDragMove(dragged path.Path, pt dnd.Point) *dnd.Indicator {
	ind, err := e.ResolveDrag(dragged, pt)
	if err != nil {
		return nil
	}
	return ind
}

// OnDrop builds the transaction that drops dragged at target. It does not
// apply it.
func (e *Engine) OnDrop(dragged path.Path, target dnd.Target) (*transaction.Transaction, error) {
	e.mu.RLock()
	doc := e.doc
	e.mu.RUnlock()
	return dnd.BuildDropTransaction(doc, dragged, target)
}

// Drop resolves the target under pt and commits the move.
func (e *Engine) Drop(ctx context.Context, dragged path.Path, pt dnd.Point) (*ChangeEvent, error) {
	ind, err := e.ResolveDrag(dragged, pt)
	if err != nil {
		return nil, err
	}
	tx, err := e.OnDrop(dragged, ind.Target)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, tx)
}
