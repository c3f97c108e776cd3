package node

import (
	"errors"

	"github.com/dshills/blockstorm/internal/engine/path"
)

// Errors returned by tree operations.
var (
	// ErrInvalidPath indicates a path does not resolve against the current tree.
	ErrInvalidPath = errors.New("invalid path")

	// ErrOffsetOutOfRange indicates a text offset or delta reaches past the content.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrInvalidDocument indicates malformed serialized document data.
	ErrInvalidDocument = errors.New("invalid document")
)

// PathError reports the path that failed to resolve.
type PathError struct {
	Op   string
	Path path.Path
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return e.Op + " " + e.Path.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

func invalidPath(op string, p path.Path) error {
	return &PathError{Op: op, Path: p.Clone(), Err: ErrInvalidPath}
}
