// Package operation defines the primitive, invertible edits over a block tree.
//
// There are five operations:
//
//   - Insert places one or more subtrees at a path.
//   - Delete removes one or more consecutive subtrees.
//   - UpdateAttributes merges an attribute diff into a node.
//   - UpdateText composes a text delta into a node's content.
//   - Move detaches a subtree and re-inserts it elsewhere.
//
// # Resolved Operations
//
// Apply mutates a document and returns the resolved form of the operation:
// a copy carrying whatever state was captured during application (the
// removed subtrees, the previous attribute values, the inverse text delta,
// the final destination of a move). Only resolved operations can be
// inverted reliably:
//
//	resolved, err := op.Apply(doc)
//	undo := resolved.Invert()
//
// # Index Shifts
//
// Each operation maps paths from the tree before it to the tree after it
// through TransformPath. An insert at index i shifts every following
// sibling by the number of inserted nodes; a delete shifts them back; a
// move is a delete followed by an insert.
package operation
