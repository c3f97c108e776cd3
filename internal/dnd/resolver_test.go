package dnd

import (
	"errors"
	"testing"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/engine/transaction"
)

func texts(nodes []*node.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.PlainText()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func drop(t *testing.T, doc *node.Document, dragged path.Path, pt Point) *node.Document {
	t.Helper()
	r := NewResolver(DefaultConfig())
	ind, err := r.Resolve(doc, StackLayout(doc, DefaultStackOptions()), dragged, pt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	tx, err := BuildDropTransaction(doc, dragged, ind.Target)
	if err != nil {
		t.Fatalf("BuildDropTransaction: %v", err)
	}
	res, err := transaction.Apply(doc, nil, tx)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return res.Document
}

func TestDropBeforeSibling(t *testing.T) {
	doc := node.NewDocument(node.Paragraph("A"), node.Paragraph("B"))

	// Top-left corner of A.
	got := drop(t, doc, path.New(1), Pt(10, 2))
	if top := texts(got.Root.Children); !equalStrings(top, []string{"B", "A"}) {
		t.Errorf("top level = %v, want [B A]", top)
	}
}

func TestDropNestsIntoColumn(t *testing.T) {
	column := node.New(node.TypeColumn, node.Paragraph("X"))
	doc := node.NewDocument(column, node.Paragraph("Y"))

	// Center of the column's own row.
	got := drop(t, doc, path.New(1), Pt(300, 12))
	if got.Root.ChildCount() != 1 {
		t.Fatalf("top level has %d nodes, want 1\n%s", got.Root.ChildCount(), got)
	}
	col, _ := got.Resolve(path.New(0))
	if col.Type != node.TypeColumn {
		t.Fatalf("[0] type = %q", col.Type)
	}
	if children := texts(col.Children); !equalStrings(children, []string{"X", "Y"}) {
		t.Errorf("column children = %v, want [X Y]", children)
	}
}

// deepDocument builds [A[A0[A00[A000]], A1], B].
func deepDocument() *node.Document {
	return node.NewDocument(
		node.Paragraph("A",
			node.Paragraph("A0", node.Paragraph("A00", node.Paragraph("A000"))),
			node.Paragraph("A1"),
		),
		node.Paragraph("B"),
	)
}

func TestDragOntoSelfOrDescendantIgnored(t *testing.T) {
	doc := deepDocument()
	layout := StackLayout(doc, DefaultStackOptions())
	r := NewResolver(DefaultConfig())
	paths := doc.Paths()

	for _, dragged := range paths {
		for _, target := range paths {
			if !dragged.IsAncestorOrSelf(target) {
				continue
			}
			if !ShouldIgnoreDragTarget(doc, dragged, target) {
				t.Errorf("ShouldIgnoreDragTarget(%s, %s) = false", dragged, target)
			}
			rect, _ := layout.Rect(target)
			for _, fx := range []float64{0.05, 0.5, 0.95} {
				for _, fy := range []float64{0.05, 0.5, 0.95} {
					pt := Pt(rect.X+fx*rect.Width, rect.Y+fy*rect.Height)
					ind, err := r.Build(doc, DragAreaBuilderData{Dragged: dragged, Target: target, Offset: pt, Rect: rect})
					if ind != nil || !errors.Is(err, ErrIgnoredTarget) {
						t.Errorf("drag %s over %s at %v: indicator %v, err %v", dragged, target, pt, ind, err)
					}
				}
			}
			_, err := BuildDropTransaction(doc, dragged, Target{Node: target, Intent: IntentInside, Insert: target.Child(0)})
			if !errors.Is(err, operation.ErrCyclicMove) {
				t.Errorf("drop %s into %s error = %v, want ErrCyclicMove", dragged, target, err)
			}
		}
	}
}

func TestShouldIgnoreDragTarget(t *testing.T) {
	doc := deepDocument()
	tests := []struct {
		dragged, target path.Path
		want            bool
	}{
		{path.New(1), path.New(0), false},
		{path.New(0, 1), path.New(0, 0, 0), false},
		{path.New(0, 0, 0), path.New(0, 0), false},
		{path.New(0), path.New(0, 0, 0, 0), true},
		{path.New(1), path.New(5), true},
		{path.New(7), path.New(0), true},
		{path.Root(), path.New(0), true},
	}
	for _, tt := range tests {
		if got := ShouldIgnoreDragTarget(doc, tt.dragged, tt.target); got != tt.want {
			t.Errorf("ShouldIgnoreDragTarget(%s, %s) = %v, want %v", tt.dragged, tt.target, got, tt.want)
		}
	}
}

func TestCandidate(t *testing.T) {
	doc := node.NewDocument(node.Paragraph("A", node.Paragraph("A0")), node.Paragraph("B"))
	layout := StackLayout(doc, DefaultStackOptions())

	tests := []struct {
		name string
		pt   Point
		want path.Path
	}{
		{"own row", Pt(100, 5), path.New(0)},
		{"deepest", Pt(100, 30), path.New(0, 0)},
		{"next block", Pt(100, 60), path.New(1)},
		{"above all", Pt(100, -40), path.New(0)},
		{"below all", Pt(100, 500), path.New(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Candidate(doc, layout, tt.pt)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Candidate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnrenderedTarget(t *testing.T) {
	doc := node.NewDocument(node.Paragraph("A"), node.Paragraph("B"))
	if _, _, err := Candidate(doc, Layout{}, Pt(0, 0)); !errors.Is(err, ErrUnresolvedGeometry) {
		t.Errorf("empty layout error = %v", err)
	}

	layout := StackLayout(doc, DefaultStackOptions())
	layout.Delete(path.New(0))
	got, _, err := Candidate(doc, layout, Pt(10, 5))
	if err != nil || !got.Equal(path.New(1)) {
		t.Errorf("Candidate() = %s, %v; want [1]", got, err)
	}

	r := NewResolver(DefaultConfig())
	_, err = r.Build(doc, DragAreaBuilderData{Dragged: path.New(1), Target: path.New(0), Offset: Pt(1, 1)})
	if !errors.Is(err, ErrUnresolvedGeometry) {
		t.Errorf("zero rect error = %v", err)
	}
}

func TestInsertionPaths(t *testing.T) {
	doc := node.NewDocument(
		node.Paragraph("A", node.Paragraph("A0", node.Paragraph("x"), node.Paragraph("y"))),
		node.Paragraph("B"),
		node.Paragraph("C"),
		node.Paragraph("D", node.New(node.TypeDivider), node.Paragraph("z")),
	)
	rect := NewRect(0, 0, 400, 90)
	r := NewResolver(DefaultConfig())

	tests := []struct {
		name   string
		target path.Path
		pt     Point
		intent Intent
		insert path.Path
	}{
		{"before", path.New(1), Pt(10, 10), IntentBefore, path.New(1)},
		{"after", path.New(1), Pt(10, 80), IntentAfter, path.New(2)},
		{"inside", path.New(1), Pt(200, 45), IntentInside, path.New(1, 0)},
		{"inside existing", path.New(0), Pt(200, 10), IntentInside, path.New(0, 1)},
		{"leading", path.New(0), Pt(10, 45), IntentLeading, path.New(0, 0, 2)},
		{"leading empty", path.New(1), Pt(10, 45), IntentLeading, path.New(1, 0)},
		{"trailing", path.New(1), Pt(390, 10), IntentTrailing, path.New(2)},
		{"leading non-nestable first child", path.New(3), Pt(10, 45), IntentLeading, path.New(3, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind, err := r.Build(doc, DragAreaBuilderData{Dragged: path.New(2), Target: tt.target, Offset: tt.pt, Rect: rect})
			if err != nil {
				t.Fatal(err)
			}
			if ind.Target.Intent != tt.intent {
				t.Errorf("intent = %s, want %s", ind.Target.Intent, tt.intent)
			}
			if !ind.Target.Insert.Equal(tt.insert) {
				t.Errorf("insert = %s, want %s", ind.Target.Insert, tt.insert)
			}
		})
	}
}

func TestNonNestableTarget(t *testing.T) {
	doc := node.NewDocument(node.New(node.TypeDivider), node.Paragraph("B"))
	rect := NewRect(0, 0, 300, 90)
	r := NewResolver(DefaultConfig())

	tests := []struct {
		pt   Point
		want Intent
	}{
		{Pt(150, 40), IntentBefore},
		{Pt(150, 50), IntentAfter},
		{Pt(10, 35), IntentBefore},
		{Pt(290, 80), IntentAfter},
	}
	for _, tt := range tests {
		ind, err := r.Build(doc, DragAreaBuilderData{Dragged: path.New(1), Target: path.New(0), Offset: tt.pt, Rect: rect})
		if err != nil {
			t.Fatal(err)
		}
		if ind.Target.Intent != tt.want {
			t.Errorf("pointer %v intent = %s, want %s", tt.pt, ind.Target.Intent, tt.want)
		}
	}
}

func TestIndicatorSegments(t *testing.T) {
	rect := NewRect(0, 0, 600, 24)
	r := NewResolver(DefaultConfig())

	tests := []struct {
		intent Intent
		kind   IndicatorKind
		want   []Rect
	}{
		{IntentBefore, IndicatorHorizontalBar, []Rect{{X: 24, Y: -1, Width: 576, Height: 2}}},
		{IntentAfter, IndicatorHorizontalBar, []Rect{{X: 24, Y: 23, Width: 576, Height: 2}}},
		{IntentLeading, IndicatorVerticalBar, []Rect{{X: 24, Y: 0, Width: 2, Height: 24}}},
		{IntentTrailing, IndicatorVerticalBar, []Rect{{X: 598, Y: 0, Width: 2, Height: 24}}},
		{IntentInside, IndicatorNest, []Rect{
			{X: 24, Y: 23, Width: 16, Height: 2},
			{X: 46, Y: 23, Width: 554, Height: 2},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.intent.String(), func(t *testing.T) {
			if got := indicatorKind(tt.intent); got != tt.kind {
				t.Errorf("kind = %s, want %s", got, tt.kind)
			}
			got := r.segments(rect, tt.intent)
			if len(got) != len(tt.want) {
				t.Fatalf("segments = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !got[i].Equals(tt.want[i]) {
					t.Errorf("segment %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildDropTransactionErrors(t *testing.T) {
	doc := node.NewDocument(node.Paragraph("A"))
	if _, err := BuildDropTransaction(doc, path.New(4), Target{Insert: path.New(0)}); !errors.Is(err, node.ErrInvalidPath) {
		t.Errorf("missing dragged error = %v", err)
	}
	if _, err := BuildDropTransaction(doc, path.New(0), Target{Insert: path.Root()}); !errors.Is(err, node.ErrInvalidPath) {
		t.Errorf("root insert error = %v", err)
	}
}
