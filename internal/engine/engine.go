package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dshills/blockstorm/internal/dnd"
	"github.com/dshills/blockstorm/internal/engine/handler"
	"github.com/dshills/blockstorm/internal/engine/history"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/selection"
	"github.com/dshills/blockstorm/internal/engine/transaction"
	"github.com/dshills/blockstorm/internal/event"
)

// Engine is the editor state: it owns the document and the selection and
// is the only way to change them.
//
// All methods are safe for concurrent use. Commits are serialized in call
// order and subscribers are notified synchronously before the committing
// call returns, so notifications arrive in commit order. Subscribers must
// not commit from inside a notification.
type Engine struct {
	// commitMu serializes Apply, Undo, Redo and UpdateSelection.
	commitMu sync.Mutex

	mu       sync.RWMutex
	doc      *node.Document
	sel      *selection.Selection
	revision uint64
	closed   bool
	layout   dnd.LayoutProvider

	history  *history.History
	handlers *handler.Registry
	bus      *event.Bus
	ownBus   bool
	resolver atomic.Pointer[dnd.Resolver]

	maxUndoEntries int
	readOnly       bool
	onNotifyError  func(error)
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		doc:            node.NewDocument(),
		maxUndoEntries: DefaultMaxUndoEntries,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.bus == nil {
		e.bus = event.NewBus()
		e.ownBus = true
	}
	if e.handlers == nil {
		e.handlers = handler.NewRegistry()
		handler.RegisterBuiltins(e.handlers)
	}
	if e.resolver.Load() == nil {
		e.resolver.Store(dnd.NewResolver(dnd.DefaultConfig()))
	}
	if e.sel != nil {
		s := e.sel.Clamp(e.doc)
		e.sel = &s
	}
	e.history = history.NewHistory(e.maxUndoEntries)
	return e
}

// ============================================================================
// Read Operations
// ============================================================================

// Document returns a copy of the current document.
func (e *Engine) Document() *node.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Clone()
}

// Selection returns the current selection, or nil when there is none.
func (e *Engine) Selection() *selection.Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneSelection(e.sel)
}

// Revision returns the number of committed transactions.
func (e *Engine) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// ReadOnly returns true if edits are rejected.
func (e *Engine) ReadOnly() bool {
	return e.readOnly
}

// Handlers returns the node-type handler registry.
func (e *Engine) Handlers() *handler.Registry {
	return e.handlers
}

// Bus returns the bus change notifications are published on.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// snapshot returns the current document and selection. The document is
// never mutated in place, so the pointer stays valid after unlocking.
func (e *Engine) snapshot() (*node.Document, *selection.Selection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, nil, ErrClosed
	}
	return e.doc, cloneSelection(e.sel), nil
}

// ============================================================================
// Write Operations
// ============================================================================

// Apply commits tx. On failure the document and selection are unchanged
// and nothing is published. An empty transaction commits nothing: the
// returned event carries the current revision and is not published.
func (e *Engine) Apply(ctx context.Context, tx *transaction.Transaction) (*ChangeEvent, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	if e.readOnly {
		return nil, ErrReadOnly
	}
	return e.applyLocked(ctx, tx, true)
}

// applyLocked runs the commit pipeline. Caller must hold commitMu.
func (e *Engine) applyLocked(ctx context.Context, tx *transaction.Transaction, dispatch bool) (*ChangeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, before, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if tx.IsEmpty() {
		return &ChangeEvent{
			TransactionID: tx.ID,
			Revision:      e.Revision(),
			Selection:     before,
			Reason:        tx.Reason,
			Description:   tx.Description,
		}, nil
	}

	if dispatch {
		if tx, err = e.handlers.Dispatch(doc, before, tx); err != nil {
			return nil, err
		}
	}

	res, err := transaction.Apply(doc, before, tx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.doc = res.Document
	e.sel = res.Selection
	e.revision++
	rev := e.revision
	e.mu.Unlock()

	if !tx.SkipHistory && tx.Reason != transaction.ReasonUndo && tx.Reason != transaction.ReasonRedo {
		e.history.Push(&history.Entry{
			Operations:      res.Applied,
			SelectionBefore: before,
			SelectionAfter:  cloneSelection(res.Selection),
			Description:     tx.Description,
		})
	}

	change := &ChangeEvent{
		TransactionID: tx.ID,
		Revision:      rev,
		Operations:    res.Applied,
		Selection:     cloneSelection(res.Selection),
		Reason:        tx.Reason,
		Description:   tx.Description,
	}
	e.publish(ctx, event.NewEvent(TopicTransactionCommitted, *change, EventSource).
		WithCausation(tx.ID.String()))

	if !selection.Equal(before, res.Selection) {
		e.publish(ctx, event.NewEvent(TopicSelectionChanged, SelectionEvent{
			Previous:  before,
			Selection: cloneSelection(res.Selection),
			Reason:    selection.ReasonTransactionSideEffect,
			Revision:  rev,
		}, EventSource).WithCausation(tx.ID.String()))
	}
	return change, nil
}

// publish notifies subscribers of a commit that already happened, so the
// caller's cancellation does not apply to it.
func (e *Engine) publish(ctx context.Context, ev event.TopicProvider) {
	if err := e.bus.Publish(context.WithoutCancel(ctx), ev); err != nil && e.onNotifyError != nil {
		e.onNotifyError(err)
	}
}

// UpdateSelection replaces the selection. The selection must resolve
// against the current document; offsets are clamped. Setting the current
// value again publishes nothing. A nil selection clears it.
func (e *Engine) UpdateSelection(ctx context.Context, sel *selection.Selection, reason selection.Reason) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	doc, before, err := e.snapshot()
	if err != nil {
		return err
	}

	var next *selection.Selection
	if sel != nil {
		if err := sel.Validate(doc); err != nil {
			return err
		}
		s := sel.Clamp(doc)
		next = &s
	}
	if selection.Equal(before, next) {
		return nil
	}

	e.mu.Lock()
	e.sel = next
	rev := e.revision
	e.mu.Unlock()

	e.publish(ctx, event.NewEvent(TopicSelectionChanged, SelectionEvent{
		Previous:  before,
		Selection: cloneSelection(next),
		Reason:    reason,
		Revision:  rev,
	}, EventSource))
	return nil
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo reverts the last committed transaction.
func (e *Engine) Undo(ctx context.Context) (*ChangeEvent, error) {
	return e.replay(ctx, transaction.ReasonUndo)
}

// Redo reapplies the last undone transaction.
func (e *Engine) Redo(ctx context.Context) (*ChangeEvent, error) {
	return e.replay(ctx, transaction.ReasonRedo)
}

func (e *Engine) replay(ctx context.Context, reason transaction.Reason) (*ChangeEvent, error) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	if e.readOnly {
		return nil, ErrReadOnly
	}

	var change *ChangeEvent
	run := func(entry *history.Entry) (*history.Entry, error) {
		tx := transaction.NewWithReason(reason)
		tx.Description = entry.Description
		if reason == transaction.ReasonUndo {
			tx.Operations = entry.Inverse()
			tx.SelectionAfter = cloneSelection(entry.SelectionBefore)
		} else {
			tx.Operations = entry.Operations
			tx.SelectionAfter = cloneSelection(entry.SelectionAfter)
		}
		var err error
		change, err = e.applyLocked(ctx, tx, false)
		return entry, err
	}

	var err error
	if reason == transaction.ReasonUndo {
		err = e.history.Undo(run)
	} else {
		err = e.history.Redo(run)
	}
	if err != nil {
		return nil, err
	}
	return change, nil
}

// CanUndo returns true if there are operations to undo.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if there are operations to redo.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of undo entries.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of redo entries.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// History returns the undo entries, oldest first.
func (e *Engine) History() []history.Info {
	return e.history.UndoInfo()
}

// BeginUndoGroup starts grouping commits into one undo unit.
func (e *Engine) BeginUndoGroup(name string) {
	e.history.BeginGroup(name)
}

// EndUndoGroup closes the current undo group.
func (e *Engine) EndUndoGroup() {
	e.history.EndGroup()
}

// ClearHistory removes all undo/redo history.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// ============================================================================
// Subscriptions
// ============================================================================

// Subscribe calls fn after every committed transaction, in commit order.
func (e *Engine) Subscribe(fn func(ChangeEvent), opts ...event.SubscriptionOption) (event.Subscription, error) {
	return e.bus.Subscribe(TopicTransactionCommitted, event.Typed[ChangeEvent](func(_ context.Context, ev event.Event[ChangeEvent]) error {
		fn(ev.Payload)
		return nil
	}), opts...)
}

// SubscribeSelection calls fn after every selection change.
func (e *Engine) SubscribeSelection(fn func(SelectionEvent), opts ...event.SubscriptionOption) (event.Subscription, error) {
	return e.bus.Subscribe(TopicSelectionChanged, event.Typed[SelectionEvent](func(_ context.Context, ev event.Event[SelectionEvent]) error {
		fn(ev.Payload)
		return nil
	}), opts...)
}

// Unsubscribe stops delivery to sub.
func (e *Engine) Unsubscribe(sub event.Subscription) error {
	return e.bus.Unsubscribe(sub)
}

// Close releases the engine. Later edits fail with ErrClosed.
func (e *Engine) Close() {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	if e.ownBus {
		e.bus.Close()
	}
}

func cloneSelection(s *selection.Selection) *selection.Selection {
	if s == nil {
		return nil
	}
	c := s.Clone()
	return &c
}
