package dnd

import (
	"fmt"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// DragAreaBuilderData is the per-pointer-move input to Build. It is not
// retained after the call.
type DragAreaBuilderData struct {
	Dragged path.Path
	Target  path.Path
	Offset  Point
	// Rect is the target's rendered rectangle.
	Rect Rect
}

// Target is a resolved drop location.
type Target struct {
	// Node is the path of the node the pointer is over.
	Node           path.Path
	Classification Classification
	Intent         Intent
	// Insert is the insertion path for the dragged node, expressed against
	// the document before the move.
	Insert path.Path
}

// IndicatorKind selects how an indicator is painted.
type IndicatorKind uint8

// Indicator kinds.
const (
	// IndicatorHorizontalBar marks a reorder before or after the target.
	IndicatorHorizontalBar IndicatorKind = iota
	// IndicatorVerticalBar marks a leading or trailing drop.
	IndicatorVerticalBar
	// IndicatorNest is two short segments with a gap, marking a nested drop.
	IndicatorNest
)

// String returns the kind name.
func (k IndicatorKind) String() string {
	switch k {
	case IndicatorHorizontalBar:
		return "horizontal-bar"
	case IndicatorVerticalBar:
		return "vertical-bar"
	case IndicatorNest:
		return "nest"
	default:
		return fmt.Sprintf("indicator(%d)", k)
	}
}

// Indicator is the drop feedback for one pointer position.
type Indicator struct {
	Kind     IndicatorKind
	Segments []Rect
	Target   Target
}

// Resolver computes drop targets. It holds no mutable state and is safe
// for concurrent use.
type Resolver struct {
	cfg Config
}

// NewResolver creates a resolver. An invalid config falls back to the
// defaults.
func NewResolver(cfg Config) *Resolver {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	return &Resolver{cfg: cfg}
}

// Config returns the resolver's configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// ShouldIgnoreDragTarget reports whether target must not receive dragged:
// either path fails to resolve, or target is dragged itself or one of its
// descendants.
func ShouldIgnoreDragTarget(doc *node.Document, dragged, target path.Path) bool {
	if dragged.IsRoot() || !doc.Exists(dragged) || !doc.Exists(target) {
		return true
	}
	return dragged.IsAncestorOrSelf(target)
}

// Candidate returns the node under pt: the deepest rendered rectangle that
// contains it, otherwise the vertically nearest one, ties going to the
// earlier node in document order.
func Candidate(doc *node.Document, layout LayoutProvider, pt Point) (path.Path, Rect, error) {
	var (
		best     path.Path
		bestRect Rect
		bestDist float64
		inside   bool
		found    bool
	)
	doc.Walk(func(p path.Path, _ *node.Node) bool {
		r, ok := layout.Rect(p)
		if !ok || r.IsEmpty() {
			return true
		}
		if r.Contains(pt) {
			if !inside || p.Depth() > best.Depth() {
				best, bestRect, inside, found = p, r, true, true
			}
			return true
		}
		if inside {
			return true
		}
		d := r.VerticalDistance(pt)
		if !found || d < bestDist {
			best, bestRect, bestDist, found = p, r, d, true
		}
		return true
	})
	if !found {
		return nil, Rect{}, ErrUnresolvedGeometry
	}
	return best, bestRect, nil
}

// Build resolves the drop for one pointer position over a known target.
func (r *Resolver) Build(doc *node.Document, data DragAreaBuilderData) (*Indicator, error) {
	if ShouldIgnoreDragTarget(doc, data.Dragged, data.Target) {
		return nil, ErrIgnoredTarget
	}
	target, err := doc.Resolve(data.Target)
	if err != nil {
		return nil, err
	}
	c, err := Classify(data.Rect, data.Offset, r.cfg)
	if err != nil {
		return nil, err
	}

	t := Target{
		Node:           data.Target.Clone(),
		Classification: c,
		Intent:         c.Intent(r.cfg.IsNestable(target.Type)),
	}
	t.Insert = r.insertionPath(data.Target, target, t.Intent)
	if data.Dragged.IsAncestorOf(t.Insert) {
		return nil, ErrIgnoredTarget
	}

	return &Indicator{
		Kind:     indicatorKind(t.Intent),
		Segments: r.segments(data.Rect, t.Intent),
		Target:   t,
	}, nil
}

// Resolve finds the node under pt and builds its indicator.
func (r *Resolver) Resolve(doc *node.Document, layout LayoutProvider, dragged path.Path, pt Point) (*Indicator, error) {
	target, rect, err := Candidate(doc, layout, pt)
	if err != nil {
		return nil, err
	}
	return r.Build(doc, DragAreaBuilderData{
		Dragged: dragged,
		Target:  target,
		Offset:  pt,
		Rect:    rect,
	})
}

// insertionPath maps an intent to the path the dragged node is inserted at.
// A leading drop nests into the target's first child, unless that child
// cannot take children; then it becomes the target's new first child.
func (r *Resolver) insertionPath(at path.Path, target *node.Node, intent Intent) path.Path {
	switch intent {
	case IntentBefore:
		return at.Clone()
	case IntentInside:
		return at.Child(target.ChildCount())
	case IntentLeading:
		if first, ok := target.Child(0); ok && r.cfg.IsNestable(first.Type) {
			return at.Child(0).Child(first.ChildCount())
		}
		return at.Child(0)
	default:
		return at.Next()
	}
}

func indicatorKind(intent Intent) IndicatorKind {
	switch intent {
	case IntentLeading, IntentTrailing:
		return IndicatorVerticalBar
	case IntentInside:
		return IndicatorNest
	default:
		return IndicatorHorizontalBar
	}
}

func (r *Resolver) segments(rect Rect, intent Intent) []Rect {
	t := r.cfg.IndicatorThickness
	inset := r.cfg.IndicatorWidth
	barWidth := max(rect.Width-inset, 0)

	switch intent {
	case IntentBefore:
		return []Rect{{X: rect.X + inset, Y: rect.Y - t/2, Width: barWidth, Height: t}}
	case IntentAfter:
		return []Rect{{X: rect.X + inset, Y: rect.Bottom() - t/2, Width: barWidth, Height: t}}
	case IntentLeading:
		return []Rect{{X: rect.X + inset, Y: rect.Y, Width: t, Height: rect.Height}}
	case IntentTrailing:
		return []Rect{{X: rect.Right() - t, Y: rect.Y, Width: t, Height: rect.Height}}
	case IntentInside:
		y := rect.Bottom() - t/2
		first := Rect{X: rect.X + inset, Y: y, Width: r.cfg.NestIndent, Height: t}
		second := Rect{
			X:      first.Right() + r.cfg.NestGap,
			Y:      y,
			Width:  max(barWidth-r.cfg.NestIndent-r.cfg.NestGap, 0),
			Height: t,
		}
		return []Rect{first, second}
	}
	return nil
}
