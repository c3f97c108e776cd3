package lua

import "errors"

// Errors for Lua state and scripted handler operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a call runs past its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrRejected is returned when a script handler vetoes a transaction.
	ErrRejected = errors.New("rejected by script")

	// ErrBadResult is returned when a script handler returns a value it
	// should not.
	ErrBadResult = errors.New("invalid script handler result")
)
