package transaction

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/selection"
)

func testDocument() *node.Document {
	return node.NewDocument(
		node.Paragraph("alpha", node.Paragraph("child")),
		node.Paragraph("beta"),
		node.Paragraph("gamma"),
	)
}

func encode(t *testing.T, doc *node.Document) []byte {
	t.Helper()
	data, err := node.EncodeDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestApplyLeftToRight(t *testing.T) {
	doc := testDocument()
	// The second insert targets a path that only exists after the first.
	tx := New().
		InsertNode(path.New(3), node.Paragraph("delta")).
		InsertNode(path.New(3, 0), node.Paragraph("nested")).
		DeleteNode(path.New(0))

	res, err := Apply(doc, nil, tx)
	if err != nil {
		t.Fatal(err)
	}
	got := res.Document
	if got.Root.ChildCount() != 3 {
		t.Fatalf("top level count = %d, want 3\n%s", got.Root.ChildCount(), got)
	}
	n, err := got.Resolve(path.New(2, 0))
	if err != nil || n.PlainText() != "nested" {
		t.Errorf("nested node not found at [2 0]:\n%s", got)
	}
	if len(res.Applied) != 3 {
		t.Errorf("applied %d ops, want 3", len(res.Applied))
	}
	if doc.Root.ChildCount() != 3 || doc.Root.Children[0].PlainText() != "alpha" {
		t.Error("input document was mutated")
	}
}

func TestApplyInvalidPathIsAtomic(t *testing.T) {
	tests := []struct {
		name  string
		tx    *Transaction
		index int
	}{
		{"first op out of range", New().DeleteNode(path.New(9)).InsertNode(path.New(0), node.Paragraph("x")), 0},
		{"later op out of range", New().InsertNode(path.New(0), node.Paragraph("x")).DeleteNode(path.New(0, 5)), 1},
		{"depends on deleted node", New().DeleteNode(path.New(0)).UpdateAttributes(path.New(0, 0), node.Attrs("a", 1)), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument()
			before := encode(t, doc)
			sel := selection.Caret(path.New(1), 2)

			res, err := Apply(doc, &sel, tt.tx)
			if res != nil {
				t.Error("expected nil result on failure")
			}
			if !errors.Is(err, node.ErrInvalidPath) {
				t.Fatalf("error = %v, want ErrInvalidPath", err)
			}
			var txErr *Error
			if !errors.As(err, &txErr) || txErr.Index != tt.index {
				t.Errorf("failing index = %v, want %d", err, tt.index)
			}
			if after := encode(t, doc); !bytes.Equal(before, after) {
				t.Errorf("document changed\nbefore: %s\nafter:  %s", before, after)
			}
		})
	}
}

func TestApplyComposesIndexShifts(t *testing.T) {
	o1 := operation.NewInsert(path.New(0), node.Paragraph("new"))

	// Manually: apply o1, recompute the target of "delete beta", apply it.
	manual := testDocument()
	r1, err := o1.Apply(manual)
	if err != nil {
		t.Fatal(err)
	}
	shifted, ok := r1.TransformPath(path.New(1))
	if !ok {
		t.Fatal("beta should survive the insert")
	}
	if _, err := operation.NewDelete(shifted).Apply(manual); err != nil {
		t.Fatal(err)
	}

	res, err := Apply(testDocument(), nil, New().Add(o1).DeleteNode(shifted))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Document.Equal(manual) {
		t.Errorf("transaction result differs from manual application\ngot:\n%s\nwant:\n%s", res.Document, manual)
	}
	for _, n := range res.Document.Root.Children {
		if n.PlainText() == "beta" {
			t.Error("beta should be deleted")
		}
	}
}

func TestApplyEmptyTransaction(t *testing.T) {
	doc := testDocument()
	sel := selection.Range(path.NewPosition(path.New(0), 1), path.NewPosition(path.New(2), 3))

	res, err := Apply(doc, &sel, New())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Document.Equal(doc) {
		t.Error("empty transaction changed the document")
	}
	if !selection.Equal(res.Selection, &sel) {
		t.Errorf("selection = %v, want %v", res.Selection, sel)
	}
	if len(res.Applied) != 0 {
		t.Error("empty transaction applied operations")
	}
}

func TestApplyDeletedSelectionNode(t *testing.T) {
	doc := node.NewDocument(node.Paragraph("hello"), node.Paragraph("ab"))
	sel := selection.Caret(path.New(0), 3)

	res, err := Apply(doc, &sel, New().DeleteNode(path.New(0)))
	if err != nil {
		t.Fatal(err)
	}
	want := selection.Caret(path.New(0), 2)
	if !selection.Equal(res.Selection, &want) {
		t.Errorf("selection = %v, want %v", res.Selection, want)
	}
}

func TestApplySelectionHint(t *testing.T) {
	doc := testDocument()
	tx := New().InsertNode(path.New(0), node.Paragraph("x")).AfterSelection(selection.Caret(path.New(0), 1))
	res, err := Apply(doc, nil, tx)
	if err != nil {
		t.Fatal(err)
	}
	want := selection.Caret(path.New(0), 1)
	if !selection.Equal(res.Selection, &want) {
		t.Errorf("selection = %v, want %v", res.Selection, want)
	}

	bad := New().AfterSelection(selection.Caret(path.New(7), 0))
	_, err = Apply(doc, nil, bad)
	var txErr *Error
	if !errors.As(err, &txErr) || txErr.Index != -1 || !errors.Is(err, node.ErrInvalidPath) {
		t.Errorf("bad hint error = %v", err)
	}
}

func TestTextBuilders(t *testing.T) {
	doc := node.NewDocument(node.Paragraph("hello world"))
	p := path.New(0)
	tx := New().
		DeleteText(p, 5, 6).
		InsertText(p, 5, "!", nil).
		FormatText(p, 0, 5, node.Attrs("bold", true))

	res, err := Apply(doc, nil, tx)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := res.Document.Resolve(p)
	if n.PlainText() != "hello!" {
		t.Errorf("text = %q, want %q", n.PlainText(), "hello!")
	}
	if len(n.Delta) != 2 || !n.Delta[0].Attributes.Bool("bold") || n.Delta[1].Attributes.Has("bold") {
		t.Errorf("formatting = %s", n.Delta)
	}

	undone, err := Apply(res.Document, nil, New().Add(res.Inverse()...))
	if err != nil {
		t.Fatal(err)
	}
	if !undone.Document.Equal(doc) {
		t.Errorf("inverse did not restore:\n%s", undone.Document)
	}
}

func TestTransactionIdentity(t *testing.T) {
	a, b := New(), New()
	if a.ID == b.ID {
		t.Error("transactions should get distinct IDs")
	}
	if !a.IsEmpty() {
		t.Error("new transaction should be empty")
	}
	c := a.Clone().DeleteNode(path.New(0))
	if len(a.Operations) != 0 || len(c.Operations) != 1 {
		t.Error("Clone shares operations")
	}
	if r, err := ParseReason(ReasonRedo.String()); err != nil || r != ReasonRedo {
		t.Errorf("ParseReason = %v, %v", r, err)
	}
}
