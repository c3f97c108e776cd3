package store

import "errors"

var (
	// ErrEmptyDocID is returned when a document ID is blank.
	ErrEmptyDocID = errors.New("empty document id")

	// ErrNoSnapshot is returned when a document has no snapshot.
	ErrNoSnapshot = errors.New("no snapshot")

	// ErrNoChanges is returned when a document has no recorded changes.
	ErrNoChanges = errors.New("no recorded changes")

	// ErrRevisionConflict is returned when a change would reuse a stored
	// revision.
	ErrRevisionConflict = errors.New("revision already recorded")
)
