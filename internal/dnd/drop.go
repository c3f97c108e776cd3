package dnd

import (
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/transaction"
)

// BuildDropTransaction returns the single-move transaction that drops
// dragged at target. A target inside the dragged subtree fails with
// operation.ErrCyclicMove before any operation is built.
func BuildDropTransaction(doc *node.Document, dragged path.Path, target Target) (*transaction.Transaction, error) {
	if _, err := doc.Resolve(dragged); err != nil {
		return nil, err
	}
	if dragged.IsRoot() || target.Insert.IsRoot() {
		return nil, &node.PathError{Op: "drop", Path: target.Insert, Err: node.ErrInvalidPath}
	}
	if dragged.IsAncestorOf(target.Insert) {
		return nil, operation.ErrCyclicMove
	}
	return transaction.New().
		MoveNode(dragged, target.Insert).
		WithDescription("drag " + target.Intent.String()), nil
}
