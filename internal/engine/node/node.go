package node

import (
	"fmt"
	"strings"
)

// Common node types. Types are open-ended tags; these are the ones the
// builtin handlers and the HTML importer know about.
const (
	TypePage         = "page"
	TypeParagraph    = "paragraph"
	TypeHeading      = "heading"
	TypeQuote        = "quote"
	TypeBulletedList = "bulleted_list"
	TypeNumberedList = "numbered_list"
	TypeTodoList     = "todo_list"
	TypeToggleList   = "toggle_list"
	TypeCallout      = "callout"
	TypeCode         = "code"
	TypeDivider      = "divider"
	TypeImage        = "image"
	TypeColumns      = "simple_columns"
	TypeColumn       = "simple_column"
)

// Node is an element of the block tree. A node does not know its own path;
// paths are derived by walking from the root. Children are owned exclusively
// by their parent.
type Node struct {
	Type       string
	Attributes Attributes
	// Delta is the node's text content; nil for nodes without text.
	Delta    Delta
	Children []*Node
}

// New creates a node of the given type with optional children.
func New(typ string, children ...*Node) *Node {
	return &Node{Type: typ, Children: children}
}

// NewText creates a node holding unformatted text.
func NewText(typ, text string, children ...*Node) *Node {
	return &Node{Type: typ, Delta: Text(text), Children: children}
}

// Paragraph creates a paragraph holding text.
func Paragraph(text string, children ...*Node) *Node {
	return NewText(TypeParagraph, text, children...)
}

// WithAttributes sets attributes and returns the node for chaining.
func (n *Node) WithAttributes(attrs Attributes) *Node {
	n.Attributes = attrs.Clone()
	return n
}

// HasText returns true if the node carries text content.
func (n *Node) HasText() bool {
	return n.Delta != nil
}

// TextLength returns the content length in grapheme clusters.
func (n *Node) TextLength() int {
	if n == nil {
		return 0
	}
	return n.Delta.Length()
}

// PlainText returns the node's text without formatting.
func (n *Node) PlainText() string {
	return n.Delta.PlainText()
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.Children)
}

// Child returns the index-th child.
func (n *Node) Child(index int) (*Node, bool) {
	if index < 0 || index >= len(n.Children) {
		return nil, false
	}
	return n.Children[index], true
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:       n.Type,
		Attributes: n.Attributes.Clone(),
		Delta:      n.Delta.Clone(),
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Equal compares type, attributes, content and children recursively.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Type != other.Type || !n.Attributes.Equal(other.Attributes) || !n.Delta.Equal(other.Delta) {
		return false
	}
	if (n.Delta == nil) != (other.Delta == nil) {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// insertChildren places nodes at index. Callers validate the index.
func (n *Node) insertChildren(index int, nodes []*Node) {
	out := make([]*Node, 0, len(n.Children)+len(nodes))
	out = append(out, n.Children[:index]...)
	out = append(out, nodes...)
	out = append(out, n.Children[index:]...)
	n.Children = out
}

// removeChild detaches and returns the child at index. Callers validate the index.
func (n *Node) removeChild(index int) *Node {
	removed := n.Children[index]
	out := make([]*Node, 0, len(n.Children)-1)
	out = append(out, n.Children[:index]...)
	out = append(out, n.Children[index+1:]...)
	if len(out) == 0 {
		out = nil
	}
	n.Children = out
	return removed
}

// String renders the subtree as an indented outline, useful in tests and the CLI.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeOutline(&sb, 0)
	return sb.String()
}

func (n *Node) writeOutline(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Type)
	if len(n.Attributes) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(n.Attributes.GoString())
	}
	if n.Delta != nil {
		fmt.Fprintf(sb, " %q", n.PlainText())
	}
	sb.WriteByte('\n')
	for _, ch := range n.Children {
		ch.writeOutline(sb, depth+1)
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case Attributes:
		return x.GoString()
	default:
		return fmt.Sprint(v)
	}
}
