package path

import "fmt"

// Position is a caret location: a node path plus an offset into that node's
// text content, counted in grapheme clusters.
type Position struct {
	Path   Path
	Offset int
}

// NewPosition creates a position.
func NewPosition(p Path, offset int) Position {
	return Position{Path: p.Clone(), Offset: offset}
}

// Clone returns a position with an independent path.
func (p Position) Clone() Position {
	return Position{Path: p.Path.Clone(), Offset: p.Offset}
}

// Equal returns true if path and offset match.
func (p Position) Equal(other Position) bool {
	return p.Offset == other.Offset && p.Path.Equal(other.Path)
}

// Compare orders positions by document order, then by offset.
func (p Position) Compare(other Position) int {
	if c := p.Path.Compare(other.Path); c != 0 {
		return c
	}
	switch {
	case p.Offset < other.Offset:
		return -1
	case p.Offset > other.Offset:
		return 1
	}
	return 0
}

// String returns the position as "[0 1]:3".
func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Path, p.Offset)
}
