package dnd

import "errors"

var (
	// ErrUnresolvedGeometry is returned when no rectangle is available for
	// the target. It is transient; retry on the next pointer move.
	ErrUnresolvedGeometry = errors.New("unresolved geometry")

	// ErrIgnoredTarget is returned when the target is the dragged node or
	// lies inside it.
	ErrIgnoredTarget = errors.New("ignored drag target")
)
