package node

import (
	"github.com/dshills/blockstorm/internal/engine/path"
)

// Document is a block tree with an implicit root. An empty document has a
// root with zero children.
type Document struct {
	Root *Node
}

// NewDocument creates a document whose root holds children.
func NewDocument(children ...*Node) *Document {
	return &Document{Root: New(TypePage, children...)}
}

// Resolve returns the node at p. The empty path resolves to the root.
func (d *Document) Resolve(p path.Path) (*Node, error) {
	if d == nil || d.Root == nil {
		return nil, invalidPath("resolve", p)
	}
	cur := d.Root
	for _, idx := range p {
		ch, ok := cur.Child(idx)
		if !ok {
			return nil, invalidPath("resolve", p)
		}
		cur = ch
	}
	return cur, nil
}

// Exists returns true if p resolves.
func (d *Document) Exists(p path.Path) bool {
	_, err := d.Resolve(p)
	return err == nil
}

// PathOf returns the current path of target, found by identity. The result
// is only meaningful until the next structural edit.
func (d *Document) PathOf(target *Node) (path.Path, bool) {
	if d == nil || d.Root == nil || target == nil {
		return nil, false
	}
	if target == d.Root {
		return path.Root(), true
	}
	var found path.Path
	d.Walk(func(p path.Path, n *Node) bool {
		if n == target {
			found = p
			return false
		}
		return true
	})
	return found, found != nil
}

// Walk visits every node below the root depth-first in index order, which is
// document order. Returning false from fn stops the walk.
func (d *Document) Walk(fn func(p path.Path, n *Node) bool) {
	if d == nil || d.Root == nil {
		return
	}
	walk(d.Root, path.Root(), fn)
}

func walk(n *Node, at path.Path, fn func(path.Path, *Node) bool) bool {
	for i, ch := range n.Children {
		p := at.Child(i)
		if !fn(p, ch) {
			return false
		}
		if !walk(ch, p, fn) {
			return false
		}
	}
	return true
}

// Paths returns the path of every node in document order.
func (d *Document) Paths() []path.Path {
	var out []path.Path
	d.Walk(func(p path.Path, _ *Node) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Len returns the number of nodes below the root.
func (d *Document) Len() int {
	n := 0
	d.Walk(func(path.Path, *Node) bool {
		n++
		return true
	})
	return n
}

// IsEmpty returns true if the root has no children.
func (d *Document) IsEmpty() bool {
	return d == nil || d.Root == nil || len(d.Root.Children) == 0
}

// Insert places nodes so the first lands at p. The parent of p must resolve
// and the final index may equal the current child count (append).
func (d *Document) Insert(p path.Path, nodes ...*Node) error {
	if p.IsRoot() || !p.IsValid() {
		return invalidPath("insert", p)
	}
	parent, err := d.Resolve(p.Parent())
	if err != nil {
		return invalidPath("insert", p)
	}
	idx := p.Last()
	if idx > len(parent.Children) {
		return invalidPath("insert", p)
	}
	parent.insertChildren(idx, nodes)
	return nil
}

// Remove detaches and returns the node at p.
func (d *Document) Remove(p path.Path) (*Node, error) {
	if p.IsRoot() {
		return nil, invalidPath("remove", p)
	}
	parent, err := d.Resolve(p.Parent())
	if err != nil {
		return nil, invalidPath("remove", p)
	}
	idx := p.Last()
	if idx < 0 || idx >= len(parent.Children) {
		return nil, invalidPath("remove", p)
	}
	return parent.removeChild(idx), nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Root: d.Root.Clone()}
}

// Equal compares two documents structurally.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Root.Equal(other.Root)
}

// String renders the document outline.
func (d *Document) String() string {
	if d == nil || d.Root == nil {
		return ""
	}
	return d.Root.String()
}
