package selection

import (
	"testing"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/path"
)

func TestSelectionDirection(t *testing.T) {
	a := path.NewPosition(path.New(0), 2)
	b := path.NewPosition(path.New(1), 0)

	tests := []struct {
		name      string
		sel       Selection
		collapsed bool
		backward  bool
	}{
		{"caret", Collapsed(a), true, false},
		{"forward", Range(a, b), false, false},
		{"backward", Range(b, a), false, true},
		{"same node backward", Range(path.NewPosition(path.New(0), 4), a), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sel.IsCollapsed(); got != tt.collapsed {
				t.Errorf("IsCollapsed() = %v, want %v", got, tt.collapsed)
			}
			if got := tt.sel.IsBackward(); got != tt.backward {
				t.Errorf("IsBackward() = %v, want %v", got, tt.backward)
			}
			if tt.sel.Normalize().IsBackward() {
				t.Error("Normalize() should be forward")
			}
		})
	}
}

func TestSelectionContains(t *testing.T) {
	sel := Range(path.NewPosition(path.New(2), 1), path.NewPosition(path.New(0), 1))
	if !sel.Contains(path.NewPosition(path.New(1), 0)) {
		t.Error("middle node should be contained")
	}
	if !sel.Contains(path.NewPosition(path.New(1, 0), 3)) {
		t.Error("descendant of middle node should be contained")
	}
	if sel.Contains(path.NewPosition(path.New(2), 2)) {
		t.Error("offset past end should not be contained")
	}
}

func TestReasonString(t *testing.T) {
	tests := []struct {
		reason Reason
		want   string
	}{
		{ReasonUserInteraction, "user-interaction-direct"},
		{ReasonTransactionSideEffect, "transaction-side-effect"},
		{ReasonProgrammatic, "programmatic"},
	}
	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if r, err := ParseReason(tt.want); err != nil || r != tt.reason {
			t.Errorf("ParseReason(%q) = %v, %v", tt.want, r, err)
		}
	}
}

func apply(t *testing.T, doc *node.Document, op operation.Operation) operation.Operation {
	t.Helper()
	resolved, err := op.Apply(doc)
	if err != nil {
		t.Fatalf("%s: %v", op, err)
	}
	return resolved
}

func TestMapThroughStructuralEdits(t *testing.T) {
	tests := []struct {
		name string
		op   operation.Operation
		pos  path.Position
		want path.Position
	}{
		{"insert before", operation.NewInsert(path.New(0), node.Paragraph("x")), path.NewPosition(path.New(1), 2), path.NewPosition(path.New(2), 2)},
		{"insert after", operation.NewInsert(path.New(2), node.Paragraph("x")), path.NewPosition(path.New(1), 2), path.NewPosition(path.New(1), 2)},
		{"delete before", operation.NewDelete(path.New(0)), path.NewPosition(path.New(1), 2), path.NewPosition(path.New(0), 2)},
		{"move node with caret", operation.NewMove(path.New(0), path.New(2)), path.NewPosition(path.New(0), 1), path.NewPosition(path.New(1), 1)},
		{"text insert before caret", operation.NewUpdateText(path.New(1), node.NewDelta().Insert("ab", nil)), path.NewPosition(path.New(1), 2), path.NewPosition(path.New(1), 4)},
		{"text in other node", operation.NewUpdateText(path.New(0), node.NewDelta().Insert("ab", nil)), path.NewPosition(path.New(1), 2), path.NewPosition(path.New(1), 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := node.NewDocument(node.Paragraph("first"), node.Paragraph("second"))
			resolved := apply(t, doc, tt.op)
			if got := MapPosition(tt.pos, resolved, doc); !got.Equal(tt.want) {
				t.Errorf("MapPosition() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMapDeletedNode(t *testing.T) {
	tests := []struct {
		name    string
		doc     func() *node.Document
		deleted path.Path
		pos     path.Position
		want    path.Position
	}{
		{
			// The node that slides into the deleted slot takes the caret.
			name:    "next node takes slot",
			doc:     func() *node.Document { return node.NewDocument(node.Paragraph("hello"), node.Paragraph("ab")) },
			deleted: path.New(0),
			pos:     path.NewPosition(path.New(0), 3),
			want:    path.NewPosition(path.New(0), 2),
		},
		{
			name:    "previous sibling end",
			doc:     func() *node.Document { return node.NewDocument(node.Paragraph("abc"), node.Paragraph("hello")) },
			deleted: path.New(1),
			pos:     path.NewPosition(path.New(1), 1),
			want:    path.NewPosition(path.New(0), 3),
		},
		{
			name: "parent end",
			doc: func() *node.Document {
				return node.NewDocument(node.Paragraph("parent", node.Paragraph("only")))
			},
			deleted: path.New(0, 0),
			pos:     path.NewPosition(path.New(0, 0), 2),
			want:    path.NewPosition(path.New(0), 6),
		},
		{
			name:    "descendant of deleted",
			doc:     func() *node.Document { return node.NewDocument(node.Paragraph("a", node.Paragraph("b")), node.Paragraph("c")) },
			deleted: path.New(0),
			pos:     path.NewPosition(path.New(0, 0), 1),
			want:    path.NewPosition(path.New(0), 1),
		},
		{
			name:    "document emptied",
			doc:     func() *node.Document { return node.NewDocument(node.Paragraph("x")) },
			deleted: path.New(0),
			pos:     path.NewPosition(path.New(0), 1),
			want:    path.NewPosition(path.Root(), 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tt.doc()
			resolved := apply(t, doc, operation.NewDelete(tt.deleted))
			got := Collapsed(tt.pos).Map(resolved, doc).Clamp(doc)
			if !got.Start.Equal(tt.want) || !got.End.Equal(tt.want) {
				t.Errorf("selection = %s, want caret at %s", got, tt.want)
			}
			if err := got.Validate(doc); err != nil {
				t.Errorf("mapped selection does not resolve: %v", err)
			}
		})
	}
}

func TestClampOffsets(t *testing.T) {
	doc := node.NewDocument(node.Paragraph("abc"))
	sel := Range(path.NewPosition(path.New(0), -2), path.NewPosition(path.New(0), 10)).Clamp(doc)
	if sel.Start.Offset != 0 || sel.End.Offset != 3 {
		t.Errorf("Clamp() = %s", sel)
	}
}

func TestEqualOptional(t *testing.T) {
	a := Caret(path.New(0), 1)
	b := Caret(path.New(0), 1)
	if !Equal(&a, &b) || !Equal(nil, nil) || Equal(&a, nil) {
		t.Error("Equal mismatch")
	}
}
