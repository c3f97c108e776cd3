// Package handler maps node-type tags to transaction transforms.
//
// Before a transaction is applied, the engine looks up the type of the node
// its first operation targets (the inserted node's type for inserts) and
// lets the registered handler rewrite the transaction. Types without a
// handler fall back to the default handler, which passes the transaction
// through unchanged.
package handler

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/selection"
	"github.com/dshills/blockstorm/internal/engine/transaction"
)

var (
	// ErrEmptyType is returned when registering a handler without a type tag.
	ErrEmptyType = errors.New("empty node type")

	// ErrNilHandler is returned when registering a nil handler.
	ErrNilHandler = errors.New("nil handler")
)

// Context describes what a handler is asked to transform. Document and
// Selection are read-only views of the state before the transaction.
type Context struct {
	Type      string
	Target    path.Path
	Document  *node.Document
	Selection *selection.Selection
}

// Handler rewrites a transaction for one node type. Returning the input
// unchanged is valid; returning an error rejects the transaction.
type Handler interface {
	Transform(ctx Context, tx *transaction.Transaction) (*transaction.Transaction, error)
}

// Func adapts a function to Handler.
type Func func(ctx Context, tx *transaction.Transaction) (*transaction.Transaction, error)

// Transform implements Handler.
func (f Func) Transform(ctx Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	return f(ctx, tx)
}

// Passthrough returns the transaction unchanged.
var Passthrough Handler = Func(func(_ Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	return tx, nil
})

// Registry is a dispatch table from node type to handler.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	fallback Handler
}

// NewRegistry creates an empty registry with the passthrough default.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		fallback: Passthrough,
	}
}

// Register sets the handler for typ, replacing any previous one.
func (r *Registry) Register(typ string, h Handler) error {
	if typ == "" {
		return ErrEmptyType
	}
	if h == nil {
		return ErrNilHandler
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typ] = h
	return nil
}

// Unregister removes the handler for typ.
func (r *Registry) Unregister(typ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[typ]; !ok {
		return false
	}
	delete(r.handlers, typ)
	return true
}

// SetDefault sets the handler used for unregistered types.
func (r *Registry) SetDefault(h Handler) {
	if h == nil {
		h = Passthrough
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = h
}

// Lookup returns the handler for typ, or the default handler.
// The boolean reports whether a type-specific handler exists.
func (r *Registry) Lookup(typ string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handlers[typ]; ok {
		return h, true
	}
	return r.fallback, false
}

// Types returns the registered type tags, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// TargetType returns the node type the first operation of tx addresses.
// It is empty when tx has no operations or the target does not resolve.
func TargetType(doc *node.Document, tx *transaction.Transaction) (string, path.Path) {
	if len(tx.Operations) == 0 {
		return "", nil
	}
	first := tx.Operations[0]
	if ins, ok := first.(*operation.Insert); ok {
		if len(ins.Nodes) > 0 && ins.Nodes[0] != nil {
			return ins.Nodes[0].Type, ins.Path
		}
		return "", ins.Path
	}
	n, err := doc.Resolve(first.Target())
	if err != nil {
		return "", first.Target()
	}
	return n.Type, first.Target()
}

// Dispatch runs the handler for tx's target type and returns the
// transaction to apply.
func (r *Registry) Dispatch(doc *node.Document, sel *selection.Selection, tx *transaction.Transaction) (*transaction.Transaction, error) {
	typ, target := TargetType(doc, tx)
	if typ == "" {
		return tx, nil
	}
	h, _ := r.Lookup(typ)
	out, err := h.Transform(Context{Type: typ, Target: target, Document: doc, Selection: sel}, tx)
	if err != nil {
		return nil, fmt.Errorf("%s handler: %w", typ, err)
	}
	if out == nil {
		return tx, nil
	}
	return out, nil
}
