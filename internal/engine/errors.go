package engine

import (
	"errors"

	"github.com/dshills/blockstorm/internal/engine/history"
)

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates an edit was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrClosed indicates the engine was closed.
	ErrClosed = errors.New("engine is closed")

	// ErrNilTransaction indicates Apply was called without a transaction.
	ErrNilTransaction = errors.New("nil transaction")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
)
