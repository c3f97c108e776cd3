// Package engine provides the editor state for blockstorm documents.
//
// The Engine owns a block tree (node.Document) and the current selection.
// The only way to change the document is to commit a transaction.Transaction;
// every commit produces a ChangeEvent carrying the resolved operations and
// the resulting selection.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - path: structural addresses and the index-shift rules
//   - node: the block tree, text deltas and the JSON codec
//   - operation: invertible primitive edits
//   - transaction: atomic batches and selection remapping
//   - selection: carets, ranges and change reasons
//   - history: undo/redo of committed transactions
//   - handler: node-type transforms consulted before each commit
//
// Drag and drop geometry lives in the dnd package; the engine exposes it
// through OnDragMove, OnDrop and Drop.
//
// # Thread Safety
//
// All Engine operations are thread-safe. Commits are serialized: a
// transaction runs to completion against a private copy of the document
// before the result is swapped in, so readers never observe a partially
// applied transaction. Notifications are delivered synchronously, in commit
// order, before the committing call returns. A failed commit publishes
// nothing.
//
// # Basic Usage
//
//	e := engine.New(engine.WithDocument(node.NewDocument(
//		node.Paragraph("A"),
//		node.Paragraph("B"),
//	)))
//
//	sub, _ := e.Subscribe(func(ev engine.ChangeEvent) {
//		fmt.Println(ev.Revision, ev.Operations)
//	})
//	defer e.Unsubscribe(sub)
//
//	tx := transaction.New().MoveNode(path.New(1), path.New(0))
//	if _, err := e.Apply(ctx, tx); err != nil {
//		// errors.Is(err, node.ErrInvalidPath) for unresolvable paths
//	}
//
//	e.Undo(ctx)
//
// # Selection
//
// UpdateSelection records why the selection moved. Selection changes caused
// by a commit are published with selection.ReasonTransactionSideEffect.
//
//	e.UpdateSelection(ctx, &sel, selection.ReasonUserInteraction)
package engine
