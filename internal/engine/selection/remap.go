package selection

import (
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// MapPosition carries pos through a resolved operation. doc is the tree
// after the operation. A position inside a removed subtree lands on the
// nearest surviving neighbor.
func MapPosition(pos path.Position, op operation.Operation, doc *node.Document) path.Position {
	if ut, ok := op.(*operation.UpdateText); ok {
		if pos.Path.Equal(ut.Path) {
			return path.NewPosition(pos.Path, ut.TransformOffset(pos.Offset))
		}
		return pos.Clone()
	}
	if p, ok := op.TransformPath(pos.Path); ok {
		return path.NewPosition(p, pos.Offset)
	}
	return Nearest(doc, op.Target(), pos.Offset)
}

// Nearest returns a valid position for a caret whose node at p is gone.
// In order of preference: the node now at p keeping offset, the previous
// sibling at its end, the parent at its end, the first node, and finally
// the root.
func Nearest(doc *node.Document, p path.Path, offset int) path.Position {
	if !p.IsRoot() && doc.Exists(p) {
		return path.NewPosition(p, offset)
	}
	if prev, ok := p.Previous(); ok {
		if n, err := doc.Resolve(prev); err == nil {
			return path.NewPosition(prev, n.TextLength())
		}
	}
	if parent := p.Parent(); !parent.IsRoot() {
		if n, err := doc.Resolve(parent); err == nil {
			return path.NewPosition(parent, n.TextLength())
		}
	}
	if !doc.IsEmpty() {
		return path.NewPosition(path.New(0), 0)
	}
	return path.NewPosition(path.Root(), 0)
}

// Map carries the selection through a resolved operation.
func (s Selection) Map(op operation.Operation, doc *node.Document) Selection {
	return Selection{
		Start: MapPosition(s.Start, op, doc),
		End:   MapPosition(s.End, op, doc),
	}
}

// Clamp limits each offset to its node's content length. Endpoints that no
// longer resolve move to the nearest valid position.
func (s Selection) Clamp(doc *node.Document) Selection {
	return Selection{Start: clampPosition(doc, s.Start), End: clampPosition(doc, s.End)}
}

func clampPosition(doc *node.Document, pos path.Position) path.Position {
	n, err := doc.Resolve(pos.Path)
	if err != nil {
		pos = Nearest(doc, pos.Path, pos.Offset)
		if n, err = doc.Resolve(pos.Path); err != nil {
			return path.NewPosition(path.Root(), 0)
		}
	}
	offset := pos.Offset
	if max := n.TextLength(); offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return path.NewPosition(pos.Path, offset)
}

// Validate reports ErrInvalidPath if either endpoint does not resolve.
func (s Selection) Validate(doc *node.Document) error {
	for _, pos := range []path.Position{s.Start, s.End} {
		if _, err := doc.Resolve(pos.Path); err != nil {
			return err
		}
	}
	return nil
}
