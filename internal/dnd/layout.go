package dnd

import (
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// LayoutProvider supplies rendered rectangles. ok is false for nodes that
// are not rendered yet.
type LayoutProvider interface {
	Rect(p path.Path) (Rect, bool)
}

// LayoutFunc adapts a function to LayoutProvider.
type LayoutFunc func(p path.Path) (Rect, bool)

// Rect implements LayoutProvider.
func (f LayoutFunc) Rect(p path.Path) (Rect, bool) {
	return f(p)
}

// Layout is a LayoutProvider backed by a map keyed by path.
type Layout map[string]Rect

// Rect implements LayoutProvider.
func (l Layout) Rect(p path.Path) (Rect, bool) {
	r, ok := l[p.String()]
	return r, ok
}

// Set records the rectangle for p.
func (l Layout) Set(p path.Path, r Rect) {
	l[p.String()] = r
}

// Delete forgets the rectangle for p.
func (l Layout) Delete(p path.Path) {
	delete(l, p.String())
}

// StackOptions configures StackLayout.
type StackOptions struct {
	Origin    Point
	Width     float64
	RowHeight float64
	Indent    float64
}

// DefaultStackOptions returns a 600px wide column of 24px rows.
func DefaultStackOptions() StackOptions {
	return StackOptions{Width: 600, RowHeight: 24, Indent: 24}
}

// StackLayout lays the document out as a vertical stack: every node gets
// one row for itself, followed by its children indented by one level. A
// node's rectangle covers its own row and all of its descendants.
func StackLayout(doc *node.Document, opts StackOptions) Layout {
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultStackOptions().RowHeight
	}
	if opts.Width <= 0 {
		opts.Width = DefaultStackOptions().Width
	}
	l := make(Layout)
	row := 0
	var place func(n *node.Node, at path.Path)
	place = func(n *node.Node, at path.Path) {
		depth := float64(at.Depth() - 1)
		first := row
		row++
		for i, ch := range n.Children {
			place(ch, at.Child(i))
		}
		x := opts.Origin.X + depth*opts.Indent
		l.Set(at, Rect{
			X:      x,
			Y:      opts.Origin.Y + float64(first)*opts.RowHeight,
			Width:  max(opts.Width-depth*opts.Indent, 0),
			Height: float64(row-first) * opts.RowHeight,
		})
	}
	for i, ch := range doc.Root.Children {
		place(ch, path.New(i))
	}
	return l
}
