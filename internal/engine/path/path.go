// Package path provides structural addressing for the block tree.
//
// A Path is the sequence of child indices leading from the document root to a
// node. Paths are values: they are recomputed after every structural edit and
// never cached on nodes. Lexicographic order over paths is document order, with
// an ancestor ordered before all of its descendants.
package path

import (
	"strconv"
	"strings"
)

// Path locates a node by child indices from the root. The empty path is the root.
type Path []int

// New creates a path from indices.
func New(indices ...int) Path {
	p := make(Path, len(indices))
	copy(p, indices)
	return p
}

// Root returns the empty path.
func Root() Path {
	return Path{}
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// IsRoot returns true for the empty path.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Depth returns the number of indices in the path.
func (p Path) Depth() int {
	return len(p)
}

// IsValid returns true if no index is negative.
func (p Path) IsValid() bool {
	for _, i := range p {
		if i < 0 {
			return false
		}
	}
	return true
}

// Parent returns the path of the parent node. The root's parent is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1].Clone()
}

// Last returns the final index, or -1 for the root.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Child returns the path of the index-th child.
func (p Path) Child(index int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = index
	return c
}

// Next returns the path of the following sibling.
func (p Path) Next() Path {
	if len(p) == 0 {
		return Path{}
	}
	c := p.Clone()
	c[len(c)-1]++
	return c
}

// Previous returns the path of the preceding sibling.
// The second return value is false when there is no preceding sibling.
func (p Path) Previous() (Path, bool) {
	if len(p) == 0 || p[len(p)-1] == 0 {
		return nil, false
	}
	c := p.Clone()
	c[len(c)-1]--
	return c, true
}

// Equal returns true if both paths have identical indices.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Compare orders paths in document order.
// Returns -1 if p comes first, 1 if other comes first, 0 if equal.
// A proper prefix sorts before any path it prefixes.
func (p Path) Compare(other Path) int {
	n := min(len(p), len(other))
	for i := 0; i < n; i++ {
		switch {
		case p[i] < other[i]:
			return -1
		case p[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(p) < len(other):
		return -1
	case len(p) > len(other):
		return 1
	}
	return 0
}

// Before returns true if p precedes other in document order.
func (p Path) Before(other Path) bool {
	return p.Compare(other) < 0
}

// After returns true if p follows other in document order.
func (p Path) After(other Path) bool {
	return p.Compare(other) > 0
}

// IsAncestorOf returns true if p is a proper prefix of other.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p) >= len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// IsAncestorOrSelf returns true if p equals other or is a proper prefix of it.
func (p Path) IsAncestorOrSelf(other Path) bool {
	return p.Equal(other) || p.IsAncestorOf(other)
}

// IsSiblingOf returns true if both paths share the same parent and depth.
func (p Path) IsSiblingOf(other Path) bool {
	if len(p) == 0 || len(p) != len(other) {
		return false
	}
	return p.Parent().Equal(other.Parent())
}

// CommonAncestor returns the longest shared prefix of both paths.
func (p Path) CommonAncestor(other Path) Path {
	n := min(len(p), len(other))
	i := 0
	for i < n && p[i] == other[i] {
		i++
	}
	return p[:i].Clone()
}

// String returns the path as "[0 1 2]".
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, idx := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Parse parses a dotted or comma separated index list ("0.1.2", "0,1,2").
// The empty string parses to the root path.
func Parse(s string) (Path, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "[]")
	if s == "" {
		return Path{}, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == ',' || r == ' ' || r == '/'
	})
	p := make(Path, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, &ParseError{Input: s, Err: err}
		}
		if n < 0 {
			return nil, &ParseError{Input: s, Err: errNegativeIndex}
		}
		p = append(p, n)
	}
	return p, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}
