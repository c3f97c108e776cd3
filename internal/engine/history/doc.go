// Package history provides undo/redo for committed transactions.
//
// Each committed transaction becomes an Entry holding its resolved
// operations. Undo replays the entry's inverse; redo replays the
// operations themselves. The history does not touch the document: the
// caller supplies a Replay function that runs the operations through the
// normal transaction pipeline.
//
//	h := NewHistory(1000) // Max 1000 undo entries
//
//	h.Push(&Entry{Operations: res.Applied, SelectionBefore: before, SelectionAfter: after})
//
//	h.Undo(func(e *Entry) (*Entry, error) {
//		return e, engine.applyOps(e.Inverse(), e.SelectionBefore)
//	})
//
// # Grouping
//
// Several transactions can be grouped into one undo unit:
//
//	h.BeginGroup("Paste")
//	// ... multiple commits ...
//	h.EndGroup()
package history
