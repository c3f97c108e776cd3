package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/blockstorm/internal/dnd"
	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/transaction"
	"github.com/dshills/blockstorm/internal/htmlimport"
	"github.com/dshills/blockstorm/internal/store"
)

// Save writes the document as JSON to file, or to the document path when
// file is empty. The write goes through a temporary file and a rename.
func (app *Application) Save(file string) error {
	if file == "" {
		file = app.opts.DocumentPath
	}
	if file == "" {
		return &OperationError{Op: "save", Err: os.ErrInvalid}
	}
	data, err := node.EncodeDocument(app.engine.Document())
	if err != nil {
		return &OperationError{Op: "save", Target: file, Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(file), ".blockstorm-*")
	if err != nil {
		return &OperationError{Op: "save", Target: file, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return &OperationError{Op: "save", Target: file, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return &OperationError{Op: "save", Target: file, Err: err}
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		_ = os.Remove(tmp.Name())
		return &OperationError{Op: "save", Target: file, Err: err}
	}
	app.logger.WithComponent("document").Debug("saved %s", file)
	return nil
}

// ImportHTML inserts the blocks of an HTML fragment at the given path, or
// at the end of the document when at is nil.
func (app *Application) ImportHTML(ctx context.Context, r io.Reader, at path.Path) (*engine.ChangeEvent, error) {
	nodes, err := htmlimport.Import(r)
	if err != nil {
		return nil, &OperationError{Op: "import", Err: err}
	}
	if len(nodes) == 0 {
		return nil, &OperationError{Op: "import", Err: htmlimport.ErrNoContent}
	}
	if at == nil {
		at = path.New(app.engine.Document().Root.ChildCount())
	}
	tx := transaction.New().InsertNodes(at, nodes...).WithDescription("import html")
	return app.engine.Apply(ctx, tx)
}

// Move moves the node at from to the insertion path to.
func (app *Application) Move(ctx context.Context, from, to path.Path) (*engine.ChangeEvent, error) {
	return app.engine.Apply(ctx, transaction.New().MoveNode(from, to).WithDescription("move"))
}

// Drop resolves a drop of dragged at pt against the stacked layout and
// commits it. It returns the indicator that was shown for the drop.
func (app *Application) Drop(ctx context.Context, dragged path.Path, pt dnd.Point) (*dnd.Indicator, *engine.ChangeEvent, error) {
	ind, err := app.engine.ResolveDrag(dragged, pt)
	if err != nil {
		return nil, nil, err
	}
	ev, err := app.engine.Drop(ctx, dragged, pt)
	if err != nil {
		return ind, nil, err
	}
	return ind, ev, nil
}

// RevertLast commits the inverse of the most recent recorded change. Undo
// history lives only as long as the engine, so this is the way to undo
// across sessions. Reverting twice restores the change.
func (app *Application) RevertLast(ctx context.Context) (*engine.ChangeEvent, error) {
	if app.store == nil {
		return nil, &OperationError{Op: "revert", Err: ErrNoStore}
	}
	tail, err := app.store.Tail(ctx, app.opts.DocID, 1)
	if err != nil {
		return nil, &OperationError{Op: "revert", Target: app.opts.DocID, Err: err}
	}
	if len(tail) == 0 {
		return nil, &OperationError{Op: "revert", Target: app.opts.DocID, Err: store.ErrNoChanges}
	}
	last := tail[0]
	tx := transaction.New().
		Add(operation.Invert(last.Operations)...).
		WithDescription(fmt.Sprintf("revert r%d", last.Revision))
	return app.engine.Apply(ctx, tx)
}
