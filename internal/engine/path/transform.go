package path

// Index-shift rules. An insert of n nodes at index i shifts every sibling
// index >= i (and everything beneath those siblings) by +n at that depth.
// A delete at index i removes the addressed subtree and shifts following
// siblings by -1. A move is a delete followed by an insert at the shifted
// destination.

// sharesParentOf reports whether p lies at or below the parent of at,
// deep enough to carry an index at at's depth.
func sharesParentOf(p, at Path) bool {
	if len(at) == 0 || len(p) < len(at) {
		return false
	}
	for i := 0; i < len(at)-1; i++ {
		if p[i] != at[i] {
			return false
		}
	}
	return true
}

// TransformInsert returns p adjusted for count nodes inserted at at.
func TransformInsert(p, at Path, count int) Path {
	if count <= 0 || !sharesParentOf(p, at) {
		return p.Clone()
	}
	d := len(at) - 1
	if p[d] < at[d] {
		return p.Clone()
	}
	c := p.Clone()
	c[d] += count
	return c
}

// TransformDelete returns p adjusted for the removal of the node at at.
// The second return value is false when p addressed the removed node or one
// of its descendants.
func TransformDelete(p, at Path) (Path, bool) {
	if len(at) == 0 {
		return nil, false
	}
	if at.IsAncestorOrSelf(p) {
		return nil, false
	}
	if !sharesParentOf(p, at) {
		return p.Clone(), true
	}
	d := len(at) - 1
	if p[d] < at[d] {
		return p.Clone(), true
	}
	c := p.Clone()
	c[d]--
	return c, true
}

// Destination returns where a node moved from `from` to `to` ends up.
// `to` is expressed against the tree before the move. The second return
// value is false when `to` lies inside the moved subtree.
func Destination(from, to Path) (Path, bool) {
	if from.IsAncestorOf(to) {
		return nil, false
	}
	if from.Equal(to) {
		return from.Clone(), true
	}
	dest, ok := TransformDelete(to, from)
	if !ok {
		return nil, false
	}
	return dest, true
}

// TransformMove returns p adjusted for a move of the node at from to to.
// Paths inside the moved subtree follow the node.
func TransformMove(p, from, to Path) (Path, bool) {
	dest, ok := Destination(from, to)
	if !ok {
		return nil, false
	}
	if from.IsAncestorOrSelf(p) {
		out := dest.Clone()
		out = append(out, p[len(from):]...)
		return out, true
	}
	shifted, _ := TransformDelete(p, from)
	return TransformInsert(shifted, dest, 1), true
}

// InverseMoveTarget returns the `to` argument of the move that undoes a move
// which left its node at dest and originally removed it from from.
func InverseMoveTarget(from, dest Path) Path {
	return TransformInsert(from, dest, 1)
}
