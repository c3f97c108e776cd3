package transaction

import (
	"fmt"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/selection"
)

// Error identifies the operation that failed. Index is -1 when the
// selection hint failed to resolve.
type Error struct {
	Index int
	Op    operation.Operation
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("transaction selection: %v", e.Err)
	}
	return fmt.Sprintf("transaction op %d (%s): %v", e.Index, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the outcome of a successful Apply.
type Result struct {
	// Document is the mutated copy.
	Document *node.Document
	// Selection is the mapped or hinted selection; nil if there was none.
	Selection *selection.Selection
	// Applied holds the resolved operations in application order.
	Applied []operation.Operation
}

// Inverse returns the operations that undo the result.
func (r *Result) Inverse() []operation.Operation {
	return operation.Invert(r.Applied)
}

// Apply runs tx against a copy of doc, carrying sel through every operation.
// The first failing operation aborts the whole transaction and doc is left
// as it was.
func Apply(doc *node.Document, sel *selection.Selection, tx *Transaction) (*Result, error) {
	work := doc.Clone()
	var cur *selection.Selection
	if sel != nil {
		s := sel.Clone()
		cur = &s
	}

	applied := make([]operation.Operation, 0, len(tx.Operations))
	for i, op := range tx.Operations {
		resolved, err := op.Apply(work)
		if err != nil {
			return nil, &Error{Index: i, Op: op, Err: err}
		}
		applied = append(applied, resolved)
		if cur != nil {
			s := cur.Map(resolved, work)
			cur = &s
		}
	}

	if tx.SelectionAfter != nil {
		if err := tx.SelectionAfter.Validate(work); err != nil {
			return nil, &Error{Index: -1, Err: err}
		}
		s := tx.SelectionAfter.Clone()
		cur = &s
	}
	if cur != nil {
		s := cur.Clamp(work)
		cur = &s
	}

	return &Result{Document: work, Selection: cur, Applied: applied}, nil
}
