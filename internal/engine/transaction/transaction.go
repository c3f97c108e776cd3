// Package transaction batches operations into atomic edits.
//
// Operations in a transaction apply left to right, each against the tree as
// mutated by the operations before it. Apply works on a copy of the
// document, so a failure at any step leaves the caller's document untouched.
package transaction

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/selection"
)

// Reason tags why a transaction was submitted.
type Reason uint8

const (
	// ReasonUserEdit is an explicit edit by the user.
	ReasonUserEdit Reason = iota
	// ReasonProgrammatic is a system-triggered edit.
	ReasonProgrammatic
	// ReasonUndo replays history backwards.
	ReasonUndo
	// ReasonRedo replays history forwards.
	ReasonRedo
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonUserEdit:
		return "user-edit"
	case ReasonProgrammatic:
		return "programmatic"
	case ReasonUndo:
		return "undo"
	case ReasonRedo:
		return "redo"
	default:
		return fmt.Sprintf("reason(%d)", r)
	}
}

// ParseReason converts a reason name back to a Reason.
func ParseReason(s string) (Reason, error) {
	for _, r := range []Reason{ReasonUserEdit, ReasonProgrammatic, ReasonUndo, ReasonRedo} {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction reason %q", s)
}

// Transaction is an ordered batch of operations with an optional selection
// hint applied after the last operation.
type Transaction struct {
	ID         uuid.UUID
	Operations []operation.Operation
	// SelectionAfter replaces the mapped selection when set.
	SelectionAfter *selection.Selection
	Reason         Reason
	// Description labels the edit in history listings.
	Description string
	// SkipHistory keeps the transaction out of the undo stack.
	SkipHistory bool
}

// New creates an empty user-edit transaction.
func New() *Transaction {
	return &Transaction{ID: uuid.New(), Reason: ReasonUserEdit}
}

// NewWithReason creates an empty transaction with the given reason.
func NewWithReason(reason Reason) *Transaction {
	return &Transaction{ID: uuid.New(), Reason: reason}
}

// IsEmpty returns true if the transaction has no operations and no selection hint.
func (tx *Transaction) IsEmpty() bool {
	return len(tx.Operations) == 0 && tx.SelectionAfter == nil
}

// Clone returns a shallow copy with its own operation slice and a new ID.
func (tx *Transaction) Clone() *Transaction {
	c := *tx
	c.ID = uuid.New()
	c.Operations = append([]operation.Operation(nil), tx.Operations...)
	if tx.SelectionAfter != nil {
		sel := tx.SelectionAfter.Clone()
		c.SelectionAfter = &sel
	}
	return &c
}

// String lists the operations.
func (tx *Transaction) String() string {
	parts := make([]string, len(tx.Operations))
	for i, op := range tx.Operations {
		parts[i] = op.String()
	}
	return fmt.Sprintf("tx(%s: %s)", tx.Reason, strings.Join(parts, "; "))
}

// Add appends operations.
func (tx *Transaction) Add(ops ...operation.Operation) *Transaction {
	tx.Operations = append(tx.Operations, ops...)
	return tx
}

// InsertNode inserts n at p.
func (tx *Transaction) InsertNode(p path.Path, n *node.Node) *Transaction {
	return tx.Add(operation.NewInsert(p, n))
}

// InsertNodes inserts nodes starting at p.
func (tx *Transaction) InsertNodes(p path.Path, nodes ...*node.Node) *Transaction {
	return tx.Add(operation.NewInsert(p, nodes...))
}

// DeleteNode deletes the node at p.
func (tx *Transaction) DeleteNode(p path.Path) *Transaction {
	return tx.Add(operation.NewDelete(p))
}

// DeleteNodes deletes count consecutive nodes starting at p.
func (tx *Transaction) DeleteNodes(p path.Path, count int) *Transaction {
	return tx.Add(&operation.Delete{Path: p.Clone(), Count: count})
}

// UpdateAttributes merges attrs into the node at p.
func (tx *Transaction) UpdateAttributes(p path.Path, attrs node.Attributes) *Transaction {
	return tx.Add(operation.NewUpdateAttributes(p, attrs))
}

// UpdateText composes delta into the content of the node at p.
func (tx *Transaction) UpdateText(p path.Path, delta node.Delta) *Transaction {
	return tx.Add(operation.NewUpdateText(p, delta))
}

// InsertText inserts text at offset within the node at p.
func (tx *Transaction) InsertText(p path.Path, offset int, text string, attrs node.Attributes) *Transaction {
	return tx.UpdateText(p, node.NewDelta().Retain(offset, nil).Insert(text, attrs))
}

// DeleteText removes length grapheme clusters at offset within the node at p.
func (tx *Transaction) DeleteText(p path.Path, offset, length int) *Transaction {
	return tx.UpdateText(p, node.NewDelta().Retain(offset, nil).Delete(length))
}

// FormatText applies attrs to length grapheme clusters at offset. Nil values
// remove formatting.
func (tx *Transaction) FormatText(p path.Path, offset, length int, attrs node.Attributes) *Transaction {
	return tx.UpdateText(p, node.NewDelta().Retain(offset, nil).Retain(length, attrs))
}

// MoveNode moves the node at from to to, with to expressed against the tree
// before the move.
func (tx *Transaction) MoveNode(from, to path.Path) *Transaction {
	return tx.Add(operation.NewMove(from, to))
}

// AfterSelection sets the selection to apply once all operations succeed.
func (tx *Transaction) AfterSelection(sel selection.Selection) *Transaction {
	s := sel.Clone()
	tx.SelectionAfter = &s
	return tx
}

// WithDescription sets the history label.
func (tx *Transaction) WithDescription(desc string) *Transaction {
	tx.Description = desc
	return tx
}
