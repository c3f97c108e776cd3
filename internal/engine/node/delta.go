package node

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// TextOp is one step of a Delta. Exactly one of Insert, Retain or Delete is
// meaningful. Lengths count grapheme clusters, not bytes.
type TextOp struct {
	Insert     string
	Retain     int
	Delete     int
	Attributes Attributes
}

// IsInsert returns true for insert steps.
func (op TextOp) IsInsert() bool { return op.Insert != "" }

// IsRetain returns true for retain steps.
func (op TextOp) IsRetain() bool { return op.Insert == "" && op.Retain > 0 }

// IsDelete returns true for delete steps.
func (op TextOp) IsDelete() bool { return op.Insert == "" && op.Retain == 0 && op.Delete > 0 }

// Delta describes text content, or a change to it.
//
// Content deltas contain only inserts: each insert is a run of text with its
// formatting attributes. Change deltas mix retain, insert and delete steps and
// are applied left to right against a content delta.
type Delta []TextOp

// NewDelta creates an empty delta.
func NewDelta() Delta {
	return Delta{}
}

// Text creates a content delta holding a single unformatted run.
func Text(s string) Delta {
	return NewDelta().Insert(s, nil)
}

// Insert appends an insert step, merging with a preceding insert that has equal attributes.
func (d Delta) Insert(text string, attrs Attributes) Delta {
	if text == "" {
		return d
	}
	if n := len(d); n > 0 && d[n-1].IsInsert() && d[n-1].Attributes.Equal(attrs) {
		out := d.Clone()
		out[n-1].Insert += text
		return out
	}
	return append(d.Clone(), TextOp{Insert: text, Attributes: attrs.Clone()})
}

// Retain appends a retain step, optionally applying attrs over the retained text.
func (d Delta) Retain(n int, attrs Attributes) Delta {
	if n <= 0 {
		return d
	}
	if last := len(d) - 1; last >= 0 && d[last].IsRetain() && d[last].Attributes.Equal(attrs) {
		out := d.Clone()
		out[last].Retain += n
		return out
	}
	return append(d.Clone(), TextOp{Retain: n, Attributes: attrs.Clone()})
}

// Delete appends a delete step.
func (d Delta) Delete(n int) Delta {
	if n <= 0 {
		return d
	}
	if last := len(d) - 1; last >= 0 && d[last].IsDelete() {
		out := d.Clone()
		out[last].Delete += n
		return out
	}
	return append(d.Clone(), TextOp{Delete: n})
}

// Clone returns a deep copy.
func (d Delta) Clone() Delta {
	if d == nil {
		return nil
	}
	out := make(Delta, len(d))
	for i, op := range d {
		op.Attributes = op.Attributes.Clone()
		out[i] = op
	}
	return out
}

// Chop drops a trailing unformatted retain.
func (d Delta) Chop() Delta {
	if n := len(d); n > 0 && d[n-1].IsRetain() && len(d[n-1].Attributes) == 0 {
		return d[:n-1].Clone()
	}
	return d
}

// Length returns the number of grapheme clusters a content delta holds.
func (d Delta) Length() int {
	n := 0
	for _, op := range d {
		n += uniseg.GraphemeClusterCount(op.Insert)
	}
	return n
}

// BaseLength returns the content length a change delta expects.
func (d Delta) BaseLength() int {
	n := 0
	for _, op := range d {
		switch {
		case op.IsRetain():
			n += op.Retain
		case op.IsDelete():
			n += op.Delete
		}
	}
	return n
}

// PlainText concatenates the inserted text.
func (d Delta) PlainText() string {
	var sb strings.Builder
	for _, op := range d {
		sb.WriteString(op.Insert)
	}
	return sb.String()
}

// IsEmpty returns true if the delta has no steps.
func (d Delta) IsEmpty() bool {
	return len(d) == 0
}

// Equal compares steps and attributes.
func (d Delta) Equal(other Delta) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		a, b := d[i], other[i]
		if a.Insert != b.Insert || a.Retain != b.Retain || a.Delete != b.Delete || !a.Attributes.Equal(b.Attributes) {
			return false
		}
	}
	return true
}

// String renders the delta for debugging.
func (d Delta) String() string {
	parts := make([]string, 0, len(d))
	for _, op := range d {
		switch {
		case op.IsInsert():
			parts = append(parts, fmt.Sprintf("insert(%q%s)", op.Insert, attrSuffix(op.Attributes)))
		case op.IsRetain():
			parts = append(parts, fmt.Sprintf("retain(%d%s)", op.Retain, attrSuffix(op.Attributes)))
		case op.IsDelete():
			parts = append(parts, fmt.Sprintf("delete(%d)", op.Delete))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func attrSuffix(a Attributes) string {
	if len(a) == 0 {
		return ""
	}
	return " " + a.GoString()
}

// glyph is one grapheme cluster with its formatting.
type glyph struct {
	s     string
	attrs Attributes
}

// graphemes splits normalized text into grapheme clusters.
func graphemes(text string) []string {
	text = norm.NFC.String(text)
	out := make([]string, 0, len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

func (d Delta) glyphs() []glyph {
	var out []glyph
	for _, op := range d {
		if !op.IsInsert() {
			continue
		}
		g := uniseg.NewGraphemes(op.Insert)
		for g.Next() {
			out = append(out, glyph{s: g.Str(), attrs: op.Attributes})
		}
	}
	return out
}

func implode(gs []glyph) Delta {
	d := NewDelta()
	for _, g := range gs {
		attrs := g.attrs
		if len(attrs) == 0 {
			attrs = nil
		}
		d = d.Insert(g.s, attrs)
	}
	// Joining runs can fuse a combining mark with the cluster before it.
	for i := range d {
		d[i].Insert = norm.NFC.String(d[i].Insert)
	}
	return d
}

// Compose applies a change delta to this content delta and returns the new
// content. Inserted text is NFC-normalized. Steps reaching past the end of
// the content fail with ErrOffsetOutOfRange.
func (d Delta) Compose(change Delta) (Delta, error) {
	src := d.glyphs()
	out := make([]glyph, 0, len(src))
	i := 0
	for _, op := range change {
		switch {
		case op.IsInsert():
			for _, s := range graphemes(op.Insert) {
				out = append(out, glyph{s: s, attrs: op.Attributes.Clone()})
			}
		case op.IsRetain():
			if i+op.Retain > len(src) {
				return nil, fmt.Errorf("retain %d at %d of %d: %w", op.Retain, i, len(src), ErrOffsetOutOfRange)
			}
			for k := 0; k < op.Retain; k++ {
				g := src[i]
				if op.Attributes != nil {
					g.attrs = g.attrs.Apply(op.Attributes)
				}
				out = append(out, g)
				i++
			}
		case op.IsDelete():
			if i+op.Delete > len(src) {
				return nil, fmt.Errorf("delete %d at %d of %d: %w", op.Delete, i, len(src), ErrOffsetOutOfRange)
			}
			i += op.Delete
		}
	}
	out = append(out, src[i:]...)
	return implode(out), nil
}

// Invert returns the change that undoes d when applied to the result of
// base.Compose(d).
func (d Delta) Invert(base Delta) Delta {
	src := base.glyphs()
	inv := NewDelta()
	i := 0
	for _, op := range d {
		switch {
		case op.IsInsert():
			inv = inv.Delete(len(graphemes(op.Insert)))
		case op.IsRetain():
			if op.Attributes == nil {
				inv = inv.Retain(op.Retain, nil)
				i += op.Retain
				continue
			}
			for k := 0; k < op.Retain && i < len(src); k++ {
				inv = inv.Retain(1, src[i].attrs.Invert(op.Attributes))
				i++
			}
		case op.IsDelete():
			for k := 0; k < op.Delete && i < len(src); k++ {
				inv = inv.Insert(src[i].s, src[i].attrs)
				i++
			}
		}
	}
	return inv.Chop()
}

// Revert returns the change that turns result back into base, where result
// is base.Compose(d). It is d.Invert(base) unless composing fused grapheme
// clusters across the edit boundary, in which case the differing span of
// result is replaced with the original text.
func (d Delta) Revert(base, result Delta) Delta {
	inv := d.Invert(base)
	if back, err := result.Compose(inv); err == nil && sameContent(back, base) {
		return inv
	}
	r, b := result.glyphs(), base.glyphs()
	pre := 0
	for pre < len(r) && pre < len(b) && sameGlyph(r[pre], b[pre]) {
		pre++
	}
	suf := 0
	for suf < len(r)-pre && suf < len(b)-pre && sameGlyph(r[len(r)-1-suf], b[len(b)-1-suf]) {
		suf++
	}
	out := NewDelta().Retain(pre, nil).Delete(len(r) - pre - suf)
	for _, g := range b[pre : len(b)-suf] {
		out = out.Insert(g.s, g.attrs)
	}
	return out.Chop()
}

func sameGlyph(a, b glyph) bool {
	return norm.NFC.String(a.s) == norm.NFC.String(b.s) && a.attrs.Equal(b.attrs)
}

func sameContent(a, b Delta) bool {
	ga, gb := a.glyphs(), b.glyphs()
	if len(ga) != len(gb) {
		return false
	}
	for i := range ga {
		if !sameGlyph(ga[i], gb[i]) {
			return false
		}
	}
	return true
}

// TransformOffset maps a caret offset in the base content through the change d.
// Inserts at the caret push it forward; a deletion spanning the caret pulls
// it to the deletion start.
func (d Delta) TransformOffset(offset int) int {
	idx := 0
	res := offset
	for _, op := range d {
		if idx > offset {
			break
		}
		switch {
		case op.IsInsert():
			res += len(graphemes(op.Insert))
		case op.IsRetain():
			idx += op.Retain
		case op.IsDelete():
			if idx+op.Delete <= offset {
				res -= op.Delete
			} else {
				res -= offset - idx
			}
			idx += op.Delete
		}
	}
	return res
}
