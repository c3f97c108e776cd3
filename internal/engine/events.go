package engine

import (
	"github.com/google/uuid"

	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/selection"
	"github.com/dshills/blockstorm/internal/engine/transaction"
	"github.com/dshills/blockstorm/internal/event"
)

// Topics published by the engine.
const (
	TopicTransactionCommitted event.Topic = "document.transaction.committed"
	TopicSelectionChanged     event.Topic = "document.selection.changed"
)

// EventSource identifies the engine in event metadata.
const EventSource = "engine"

// ChangeEvent describes one committed transaction.
type ChangeEvent struct {
	// TransactionID is the ID of the committed transaction.
	TransactionID uuid.UUID
	// Revision is the document revision after the commit.
	Revision uint64
	// Operations are the resolved operations in application order.
	Operations []operation.Operation
	// Selection is the resulting selection; nil when there is none.
	Selection *selection.Selection
	Reason    transaction.Reason
	// Description is copied from the transaction.
	Description string
}

// Inverse returns the operations that undo the change.
func (c ChangeEvent) Inverse() []operation.Operation {
	return operation.Invert(c.Operations)
}

// SelectionEvent describes a selection change.
type SelectionEvent struct {
	Previous  *selection.Selection
	Selection *selection.Selection
	Reason    selection.Reason
	Revision  uint64
}
