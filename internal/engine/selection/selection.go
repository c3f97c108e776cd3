// Package selection provides the caret and range model over block paths.
//
// A Selection is a value: it holds positions by path, not by node, so it
// stays a valid description after the nodes it pointed to have moved.
// Transactions carry selections forward with Map and Clamp.
package selection

import (
	"fmt"

	"github.com/dshills/blockstorm/internal/engine/path"
)

// Selection is a caret or range. Start is where the selection began; End is
// where the caret is now. A selection whose Start is ordered after its End
// is backward.
type Selection struct {
	Start path.Position
	End   path.Position
}

// Collapsed creates a caret at pos.
func Collapsed(pos path.Position) Selection {
	return Selection{Start: pos.Clone(), End: pos.Clone()}
}

// Caret creates a caret at offset within the node at p.
func Caret(p path.Path, offset int) Selection {
	return Collapsed(path.NewPosition(p, offset))
}

// Range creates a selection from start to end.
func Range(start, end path.Position) Selection {
	return Selection{Start: start.Clone(), End: end.Clone()}
}

// IsCollapsed returns true if the selection has no extent.
func (s Selection) IsCollapsed() bool {
	return s.Start.Equal(s.End)
}

// IsBackward returns true if Start is ordered after End.
func (s Selection) IsBackward() bool {
	return s.Start.Compare(s.End) > 0
}

// Normalize returns a forward selection.
func (s Selection) Normalize() Selection {
	if s.IsBackward() {
		return s.Flip()
	}
	return s.Clone()
}

// Flip swaps Start and End.
func (s Selection) Flip() Selection {
	return Selection{Start: s.End.Clone(), End: s.Start.Clone()}
}

// Collapse returns a caret at End.
func (s Selection) Collapse() Selection {
	return Collapsed(s.End)
}

// Extend keeps Start and moves End to pos.
func (s Selection) Extend(pos path.Position) Selection {
	return Selection{Start: s.Start.Clone(), End: pos.Clone()}
}

// First returns whichever endpoint comes first in document order.
func (s Selection) First() path.Position {
	if s.IsBackward() {
		return s.End.Clone()
	}
	return s.Start.Clone()
}

// Last returns whichever endpoint comes last in document order.
func (s Selection) Last() path.Position {
	if s.IsBackward() {
		return s.Start.Clone()
	}
	return s.End.Clone()
}

// Contains returns true if pos lies within the selection, inclusive.
func (s Selection) Contains(pos path.Position) bool {
	return s.First().Compare(pos) <= 0 && pos.Compare(s.Last()) <= 0
}

// Clone returns a selection with independent paths.
func (s Selection) Clone() Selection {
	return Selection{Start: s.Start.Clone(), End: s.End.Clone()}
}

// Equal compares both endpoints, including direction.
func (s Selection) Equal(other Selection) bool {
	return s.Start.Equal(other.Start) && s.End.Equal(other.End)
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsCollapsed() {
		return fmt.Sprintf("Caret(%s)", s.Start)
	}
	return fmt.Sprintf("Selection(%s -> %s)", s.Start, s.End)
}

// Equal compares two optional selections.
func Equal(a, b *Selection) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
