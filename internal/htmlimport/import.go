package htmlimport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/blockstorm/internal/engine/node"
)

// Inline attribute keys.
const (
	AttrBold          = "bold"
	AttrItalic        = "italic"
	AttrUnderline     = "underline"
	AttrStrikethrough = "strikethrough"
	AttrCode          = "code"
	AttrHref          = "href"
)

// Block attribute keys.
const (
	AttrLevel    = "level"
	AttrLanguage = "language"
	AttrSrc      = "src"
	AttrAlt      = "alt"
	AttrChecked  = "checked"
)

// ErrNoContent is returned by callers that need at least one block.
var ErrNoContent = errors.New("html has no importable content")

// Import parses an HTML fragment and returns its blocks.
func Import(r io.Reader) ([]*node.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return convertChildren(root), nil
}

// ImportString is Import for a string.
func ImportString(s string) ([]*node.Node, error) {
	return Import(strings.NewReader(s))
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Aside: true,
	atom.Nav: true, atom.Figure: true, atom.Figcaption: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Pre: true, atom.Hr: true, atom.Img: true, atom.Details: true,
	atom.Table: true, atom.Thead: true, atom.Tbody: true, atom.Tr: true, atom.Td: true, atom.Th: true,
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockAtoms[n.DataAtom]
}

func isSkipped(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Head, atom.Meta, atom.Link, atom.Title:
		return true
	}
	return false
}

// convertChildren converts the children of a block container. Runs of
// inline content between blocks become paragraphs.
func convertChildren(parent *html.Node) []*node.Node {
	var out []*node.Node
	var inl inline
	flush := func() {
		if d := inl.delta(); d != nil {
			out = append(out, &node.Node{Type: node.TypeParagraph, Delta: d})
		}
		inl = inline{}
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isSkipped(c):
		case isBlock(c):
			flush()
			out = append(out, convertBlock(c)...)
		default:
			inl.walk(c, nil, func(img *html.Node) {
				flush()
				out = append(out, image(img))
			})
		}
	}
	flush()
	return out
}

func convertBlock(n *html.Node) []*node.Node {
	switch n.DataAtom {
	case atom.P:
		return textBlock(n, node.TypeParagraph, nil)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		return textBlock(n, node.TypeHeading, node.Attrs(AttrLevel, level))
	case atom.Blockquote:
		return []*node.Node{container(n, node.TypeQuote, nil)}
	case atom.Ul, atom.Ol:
		return list(n)
	case atom.Li:
		return []*node.Node{listItem(n, node.TypeBulletedList)}
	case atom.Details:
		return []*node.Node{container(n, node.TypeToggleList, nil)}
	case atom.Pre:
		return []*node.Node{code(n)}
	case atom.Hr:
		return []*node.Node{node.New(node.TypeDivider)}
	case atom.Img:
		return []*node.Node{image(n)}
	default:
		return convertChildren(n)
	}
}

// textBlock converts an element holding inline content. Images split the
// block.
func textBlock(n *html.Node, typ string, attrs node.Attributes) []*node.Node {
	var out []*node.Node
	var inl inline
	flush := func() {
		if d := inl.delta(); d != nil {
			out = append(out, &node.Node{Type: typ, Attributes: attrs.Clone(), Delta: d})
		}
		inl = inline{}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			flush()
			out = append(out, convertBlock(c)...)
			continue
		}
		inl.walk(c, nil, func(img *html.Node) {
			flush()
			out = append(out, image(img))
		})
	}
	flush()
	return out
}

// container converts an element with its own text and nested blocks. When
// the element has no inline text of its own, a leading paragraph supplies
// it.
func container(n *html.Node, typ string, attrs node.Attributes) *node.Node {
	var inl inline
	var children []*node.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isSkipped(c):
		case c.Type == html.ElementNode && c.DataAtom == atom.Summary:
			for s := c.FirstChild; s != nil; s = s.NextSibling {
				inl.walk(s, nil, nil)
			}
		case isBlock(c):
			children = append(children, convertBlock(c)...)
		default:
			inl.walk(c, nil, func(img *html.Node) {
				children = append(children, image(img))
			})
		}
	}

	out := &node.Node{Type: typ, Attributes: attrs, Delta: inl.delta()}
	if out.Delta == nil && len(children) > 0 && children[0].Type == node.TypeParagraph {
		out.Delta = children[0].Delta
		children = children[1:]
	}
	if out.Delta == nil {
		out.Delta = node.NewDelta()
	}
	out.Children = children
	return out
}

func list(n *html.Node) []*node.Node {
	typ := node.TypeBulletedList
	if n.DataAtom == atom.Ol {
		typ = node.TypeNumberedList
	}
	var out []*node.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode && c.DataAtom == atom.Li:
			out = append(out, listItem(c, typ))
		case isBlock(c):
			out = append(out, convertBlock(c)...)
		}
	}
	return out
}

func listItem(li *html.Node, typ string) *node.Node {
	var attrs node.Attributes
	if box := findCheckbox(li); box != nil {
		typ = node.TypeTodoList
		attrs = node.Attrs(AttrChecked, hasAttr(box, "checked"))
	}
	return container(li, typ, attrs)
}

// findCheckbox returns the first checkbox input directly in li's inline
// content.
func findCheckbox(li *html.Node) *html.Node {
	var found *html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type != html.ElementNode || isBlock(c) {
				continue
			}
			if c.DataAtom == atom.Input && strings.EqualFold(attr(c, "type"), "checkbox") {
				found = c
				return
			}
			visit(c)
		}
	}
	visit(li)
	return found
}

func code(pre *html.Node) *node.Node {
	var lang string
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			for _, cls := range strings.Fields(attr(c, "class")) {
				if l, ok := strings.CutPrefix(cls, "language-"); ok {
					lang = l
					break
				}
			}
		}
	}
	var sb strings.Builder
	textContent(pre, &sb)
	text := strings.TrimPrefix(sb.String(), "\n")
	text = strings.TrimSuffix(text, "\n")

	n := &node.Node{Type: node.TypeCode, Delta: node.NewDelta().Insert(norm.NFC.String(text), nil)}
	if lang != "" {
		n.Attributes = node.Attrs(AttrLanguage, lang)
	}
	return n
}

func image(img *html.Node) *node.Node {
	n := node.New(node.TypeImage)
	n.Attributes = node.Attrs(AttrSrc, attr(img, "src"))
	if alt := attr(img, "alt"); alt != "" {
		n.Attributes = n.Attributes.Set(AttrAlt, alt)
	}
	return n
}

func textContent(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			if c.DataAtom == atom.Br {
				sb.WriteByte('\n')
				continue
			}
			textContent(c, sb)
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}
