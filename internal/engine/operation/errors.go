package operation

import "errors"

var (
	// ErrCyclicMove indicates a move that would make a node its own descendant.
	ErrCyclicMove = errors.New("cyclic move")

	// ErrUnknownKind indicates an encoded operation of an unrecognized kind.
	ErrUnknownKind = errors.New("unknown operation kind")

	// ErrEmptyInsert indicates an insert carrying no nodes.
	ErrEmptyInsert = errors.New("insert without nodes")
)
