package htmlimport

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/blockstorm/internal/engine/node"
)

type run struct {
	text  string
	attrs node.Attributes
}

// inline accumulates formatted text runs with HTML whitespace collapsing.
type inline struct {
	runs []run
}

// walk appends n's inline content under attrs. Images are handed to
// onImage; a nil onImage drops them.
func (b *inline) walk(n *html.Node, attrs node.Attributes, onImage func(*html.Node)) {
	switch n.Type {
	case html.TextNode:
		b.text(n.Data, attrs)
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			b.raw("\n", attrs)
			return
		case atom.Img:
			if onImage != nil {
				onImage(n)
			}
			return
		case atom.Input, atom.Script, atom.Style, atom.Template:
			return
		}
		a := marks(n, attrs)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.walk(c, a, onImage)
		}
	}
}

// marks returns attrs plus the formatting n contributes.
func marks(n *html.Node, attrs node.Attributes) node.Attributes {
	switch n.DataAtom {
	case atom.Strong, atom.B:
		return attrs.Set(AttrBold, true)
	case atom.Em, atom.I:
		return attrs.Set(AttrItalic, true)
	case atom.U, atom.Ins:
		return attrs.Set(AttrUnderline, true)
	case atom.S, atom.Del, atom.Strike:
		return attrs.Set(AttrStrikethrough, true)
	case atom.Code, atom.Kbd, atom.Samp:
		return attrs.Set(AttrCode, true)
	case atom.A:
		if href := attr(n, "href"); href != "" {
			return attrs.Set(AttrHref, href)
		}
	}
	return attrs
}

// text appends s with whitespace runs collapsed to single spaces.
func (b *inline) text(s string, attrs node.Attributes) {
	var sb strings.Builder
	space := b.endsInSpace()
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				sb.WriteByte(' ')
				space = true
			}
			continue
		}
		sb.WriteRune(r)
		space = false
	}
	b.raw(sb.String(), attrs)
}

// raw appends s verbatim.
func (b *inline) raw(s string, attrs node.Attributes) {
	if s == "" {
		return
	}
	if n := len(b.runs); n > 0 && b.runs[n-1].attrs.Equal(attrs) {
		b.runs[n-1].text += s
		return
	}
	b.runs = append(b.runs, run{text: s, attrs: attrs.Clone()})
}

// endsInSpace is true at the start of the block and after a space or
// line break.
func (b *inline) endsInSpace() bool {
	if len(b.runs) == 0 {
		return true
	}
	last := b.runs[len(b.runs)-1].text
	return strings.HasSuffix(last, " ") || strings.HasSuffix(last, "\n")
}

// delta returns the content delta, or nil if there is no visible text.
func (b *inline) delta() node.Delta {
	runs := append([]run(nil), b.runs...)
	for len(runs) > 0 {
		last := &runs[len(runs)-1]
		last.text = strings.TrimRight(last.text, " ")
		if last.text != "" {
			break
		}
		runs = runs[:len(runs)-1]
	}
	if len(runs) == 0 {
		return nil
	}
	d := node.NewDelta()
	for _, r := range runs {
		d = d.Insert(norm.NFC.String(r.text), r.attrs)
	}
	return d
}
