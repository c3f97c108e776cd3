package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/blockstorm/internal/config"
	"github.com/dshills/blockstorm/internal/dnd"
	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/transaction"
	"github.com/dshills/blockstorm/internal/store"
)

func newApp(t *testing.T, opts Options) *Application {
	t.Helper()
	if opts.LogOutput == nil {
		opts.LogOutput = &bytes.Buffer{}
	}
	a, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func writeDoc(t *testing.T, file string, doc *node.Document) {
	t.Helper()
	data, err := node.EncodeDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewDefaults(t *testing.T) {
	a := newApp(t, Options{})
	if a.DocID() != DefaultDocID {
		t.Errorf("DocID() = %q", a.DocID())
	}
	if !a.Engine().Document().IsEmpty() {
		t.Error("expected an empty document")
	}
	if a.Store() != nil {
		t.Error("store should be off without a path")
	}
	if _, err := a.History(context.Background(), 10); !errors.Is(err, ErrNoStore) {
		t.Errorf("History() error = %v", err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestLoadEditSaveAndRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	docFile := filepath.Join(dir, "notes.json")
	dbFile := filepath.Join(dir, "changes.db")
	writeDoc(t, docFile, node.NewDocument(node.Paragraph("A"), node.Paragraph("B")))

	a := newApp(t, Options{DocumentPath: docFile, StorePath: dbFile})
	if a.DocID() != "notes" {
		t.Fatalf("DocID() = %q", a.DocID())
	}

	// Scenario: dropping B on the top band of A puts it first.
	ind, ev, err := a.Drop(ctx, path.New(1), dnd.Pt(10, 2))
	if err != nil {
		t.Fatal(err)
	}
	if ind.Target.Intent != dnd.IntentBefore || ev.Revision != 1 {
		t.Errorf("intent %s revision %d", ind.Target.Intent, ev.Revision)
	}
	if _, err := a.ImportHTML(ctx, strings.NewReader("<h1>T</h1><p>body</p>"), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Move(ctx, path.New(3), path.New(0)); err != nil {
		t.Fatal(err)
	}
	want := a.Engine().Document()
	if got := want.Root.ChildCount(); got != 4 {
		t.Fatalf("child count = %d\n%s", got, want)
	}
	if err := a.Save(""); err != nil {
		t.Fatal(err)
	}

	changes, err := a.History(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 3 || changes[1].Description != "import html" {
		t.Fatalf("history = %+v", changes)
	}
	if err := a.Close(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(docFile)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := node.DecodeDocument(data)
	if err != nil || !saved.Equal(want) {
		t.Fatalf("saved document differs: %v\n%s", err, saved)
	}

	// Remove the file: the second session restores from the change store.
	if err := os.Remove(docFile); err != nil {
		t.Fatal(err)
	}
	b := newApp(t, Options{DocumentPath: docFile, StorePath: dbFile})
	if !b.Engine().Document().Equal(want) {
		t.Errorf("restored document\n%s\nwant\n%s", b.Engine().Document(), want)
	}
	if _, err := b.Engine().Apply(ctx, transaction.New().DeleteNode(path.New(0))); err != nil {
		t.Fatal(err)
	}
	tail, err := b.History(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(tail) != 1 || tail[0].Revision != 4 {
		t.Errorf("tail = %+v, want revision 4", tail)
	}
}

func TestScriptsFromConfig(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	script := `
blockstorm.register("callout", function(ctx)
  return { defaults = { icon = "!" } }
end)
`
	if err := os.WriteFile(filepath.Join(dir, "callout.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgFile := filepath.Join(dir, "blockstorm.toml")
	if err := os.WriteFile(cfgFile, []byte("[handlers]\nscripts = [\"callout.lua\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := newApp(t, Options{ConfigPath: cfgFile})
	if got := a.Scripts(); len(got) != 1 || got[0] != "callout" {
		t.Fatalf("Scripts() = %v", got)
	}
	tx := transaction.New().InsertNode(path.New(0), node.NewText(node.TypeCallout, "c"))
	if _, err := a.Engine().Apply(ctx, tx); err != nil {
		t.Fatal(err)
	}
	n, err := a.Engine().Document().Resolve(path.New(0))
	if err != nil {
		t.Fatal(err)
	}
	if n.Attributes.String("icon") != "!" {
		t.Errorf("script default not applied: %v", n.Attributes)
	}
}

func TestBadScriptFailsStartup(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "blockstorm.toml")
	if err := os.WriteFile(cfgFile, []byte("[handlers]\nscripts = [\"missing.lua\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(context.Background(), Options{ConfigPath: cfgFile, LogOutput: &bytes.Buffer{}})
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "scripts" {
		t.Errorf("New() error = %v, want scripts InitError", err)
	}
}

func TestBadConfigFailsStartup(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "blockstorm.toml")
	if err := os.WriteFile(cfgFile, []byte("[history]\nmax_entries = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(context.Background(), Options{ConfigPath: cfgFile})
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("New() error = %v, want ErrValidationFailed", err)
	}
}

func TestApplyConfig(t *testing.T) {
	var logs bytes.Buffer
	a := newApp(t, Options{LogOutput: &logs})

	cfg := config.Default()
	cfg.Drag.HorizontalLeft = 0.1
	cfg.Log.Level = "debug"
	if err := a.ApplyConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if got := a.Engine().DragConfig().HorizontalLeft; got != 0.1 {
		t.Errorf("HorizontalLeft = %v", got)
	}
	if a.Logger().Level() != LogLevelDebug {
		t.Errorf("log level = %s", a.Logger().Level())
	}

	// Commits are logged at debug level.
	tx := transaction.New().InsertNode(path.New(0), node.Paragraph("x")).WithDescription("add")
	if _, err := a.Engine().Apply(context.Background(), tx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), `committed "add"`) {
		t.Errorf("commit not logged:\n%s", logs.String())
	}

	bad := config.Default()
	bad.Drag.VerticalTop = 0.9
	if err := a.ApplyConfig(bad); err == nil {
		t.Error("invalid config accepted")
	}
	if a.Config() != cfg {
		t.Error("rejected config replaced the active one")
	}
}

func TestWatchReloadsDragConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "blockstorm.toml")
	if err := os.WriteFile(cfgFile, []byte("[drag]\nhorizontal_left = 0.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := newApp(t, Options{ConfigPath: cfgFile, Watch: true})

	if err := os.WriteFile(cfgFile, []byte("[drag]\nhorizontal_left = 0.3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for a.Engine().DragConfig().HorizontalLeft != 0.3 {
		if time.Now().After(deadline) {
			t.Fatal("drag config was not reloaded")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestReadOnly(t *testing.T) {
	a := newApp(t, Options{ReadOnly: true})
	_, err := a.ImportHTML(context.Background(), strings.NewReader("<p>x</p>"), nil)
	if !errors.Is(err, engine.ErrReadOnly) {
		t.Errorf("ImportHTML() error = %v, want ErrReadOnly", err)
	}
}

func TestRevertLast(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	docFile := filepath.Join(dir, "notes.json")
	dbFile := filepath.Join(dir, "changes.db")
	writeDoc(t, docFile, node.NewDocument(node.Paragraph("A"), node.Paragraph("B")))

	a := newApp(t, Options{DocumentPath: docFile, StorePath: dbFile})
	if _, err := a.RevertLast(ctx); !errors.Is(err, store.ErrNoChanges) {
		t.Fatalf("RevertLast() on empty log error = %v", err)
	}
	if _, err := a.Move(ctx, path.New(0), path.New(2)); err != nil {
		t.Fatal(err)
	}
	ev, err := a.RevertLast(ctx)
	if err != nil {
		t.Fatalf("RevertLast() error = %v", err)
	}
	if ev.Description != "revert r1" {
		t.Errorf("Description = %q", ev.Description)
	}
	want := node.NewDocument(node.Paragraph("A"), node.Paragraph("B"))
	if !a.Engine().Document().Equal(want) {
		t.Errorf("document = %s", a.Engine().Document())
	}

	noStore := newApp(t, Options{})
	if _, err := noStore.RevertLast(ctx); !errors.Is(err, ErrNoStore) {
		t.Errorf("RevertLast() without store error = %v", err)
	}
}
