package htmlimport

import (
	"testing"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

func mustImport(t *testing.T, src string) []*node.Node {
	t.Helper()
	nodes, err := ImportString(src)
	if err != nil {
		t.Fatalf("ImportString(%q) error = %v", src, err)
	}
	return nodes
}

func types(nodes []*node.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Type
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

func TestImportBlocks(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		types []string
		texts []string
	}{
		{"paragraphs", "<p>one</p>\n  <p>two</p>", []string{"paragraph", "paragraph"}, []string{"one", "two"}},
		{"loose text", "hello <b>world</b>", []string{"paragraph"}, []string{"hello world"}},
		{"heading", "<h2>Title</h2><p>body</p>", []string{"heading", "paragraph"}, []string{"Title", "body"}},
		{"quote", "<blockquote>said</blockquote>", []string{"quote"}, []string{"said"}},
		{"quote paragraph", "<blockquote><p>said</p></blockquote>", []string{"quote"}, []string{"said"}},
		{"bullets", "<ul><li>a</li><li>b</li></ul>", []string{"bulleted_list", "bulleted_list"}, []string{"a", "b"}},
		{"numbers", "<ol><li>a</li></ol>", []string{"numbered_list"}, []string{"a"}},
		{"divider", "<p>a</p><hr><p>b</p>", []string{"paragraph", "divider", "paragraph"}, []string{"a", "", "b"}},
		{"whitespace", "<p>  lots   of\n\tspace  </p>", []string{"paragraph"}, []string{"lots of space"}},
		{"line break", "<p>a<br>b</p>", []string{"paragraph"}, []string{"a\nb"}},
		{"empty", "<p>   </p><div></div>", []string{}, nil},
		{"wrapper div", "<div><p>x</p><p>y</p></div>", []string{"paragraph", "paragraph"}, []string{"x", "y"}},
		{"script dropped", "<p>a</p><script>alert(1)</script>", []string{"paragraph"}, []string{"a"}},
		{"details", "<details><summary>More</summary><p>hidden</p></details>", []string{"toggle_list"}, []string{"More"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := mustImport(t, tt.src)
			if got := types(nodes); !equalStrings(got, tt.types) {
				t.Fatalf("types = %v, want %v", got, tt.types)
			}
			for i, want := range tt.texts {
				if got := nodes[i].PlainText(); got != want {
					t.Errorf("node %d text = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestImportHeadingLevel(t *testing.T) {
	nodes := mustImport(t, "<h3>x</h3>")
	if v, _ := nodes[0].Attributes.Get(AttrLevel); v != 3 {
		t.Errorf("level = %#v, want 3", v)
	}
}

func TestImportInlineMarks(t *testing.T) {
	nodes := mustImport(t, `<p>plain <strong>bold <em>both</em></strong> <a href="https://x.test">link</a> <code>c</code></p>`)
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	d := nodes[0].Delta
	want := node.NewDelta().
		Insert("plain ", nil).
		Insert("bold ", node.Attrs(AttrBold, true)).
		Insert("both", node.Attrs(AttrBold, true, AttrItalic, true)).
		Insert(" ", nil).
		Insert("link", node.Attrs(AttrHref, "https://x.test")).
		Insert(" ", nil).
		Insert("c", node.Attrs(AttrCode, true))
	if !d.Equal(want) {
		t.Errorf("delta =\n  %s\nwant\n  %s", d, want)
	}
}

func TestImportNestedList(t *testing.T) {
	nodes := mustImport(t, `<ul><li>parent<ul><li>child</li></ul></li><li>next</li></ul>`)
	if len(nodes) != 2 {
		t.Fatalf("got %d top-level nodes", len(nodes))
	}
	parent := nodes[0]
	if parent.PlainText() != "parent" || parent.ChildCount() != 1 {
		t.Fatalf("parent = %s", parent)
	}
	child, _ := parent.Child(0)
	if child.Type != node.TypeBulletedList || child.PlainText() != "child" {
		t.Errorf("child = %s", child)
	}
}

func TestImportTodo(t *testing.T) {
	nodes := mustImport(t, `<ul><li><input type="checkbox" checked> done</li><li><input type="checkbox"> open</li></ul>`)
	if got := types(nodes); !equalStrings(got, []string{"todo_list", "todo_list"}) {
		t.Fatalf("types = %v", got)
	}
	if !nodes[0].Attributes.Bool(AttrChecked) || nodes[1].Attributes.Bool(AttrChecked) {
		t.Errorf("checked = %v, %v", nodes[0].Attributes, nodes[1].Attributes)
	}
	if nodes[0].PlainText() != "done" {
		t.Errorf("text = %q", nodes[0].PlainText())
	}
}

func TestImportCode(t *testing.T) {
	nodes := mustImport(t, "<pre><code class=\"hl language-go\">func main() {\n\tx  := 1\n}\n</code></pre>")
	if len(nodes) != 1 || nodes[0].Type != node.TypeCode {
		t.Fatalf("nodes = %v", types(nodes))
	}
	if got := nodes[0].PlainText(); got != "func main() {\n\tx  := 1\n}" {
		t.Errorf("code text = %q", got)
	}
	if nodes[0].Attributes.String(AttrLanguage) != "go" {
		t.Errorf("language = %v", nodes[0].Attributes)
	}
}

func TestImportImageSplitsParagraph(t *testing.T) {
	nodes := mustImport(t, `<p>before<img src="a.png" alt="A">after</p>`)
	if got := types(nodes); !equalStrings(got, []string{"paragraph", "image", "paragraph"}) {
		t.Fatalf("types = %v", got)
	}
	img := nodes[1]
	if img.Attributes.String(AttrSrc) != "a.png" || img.Attributes.String(AttrAlt) != "A" {
		t.Errorf("image attributes = %v", img.Attributes)
	}
}

func TestImportNormalizesText(t *testing.T) {
	// "e" followed by a combining acute accent.
	nodes := mustImport(t, "<p>cafe\u0301</p>")
	if got := nodes[0].PlainText(); got != "caf\u00e9" {
		t.Errorf("text = %q, want NFC form", got)
	}
}

func TestImportedNodesInsertIntoDocument(t *testing.T) {
	nodes := mustImport(t, "<h1>T</h1><ul><li>a<ol><li>b</li></ol></li></ul>")
	doc := node.NewDocument()
	if err := doc.Insert(path.New(0), nodes...); err != nil {
		t.Fatal(err)
	}
	if doc.Len() != 3 {
		t.Errorf("document has %d nodes, want 3:\n%s", doc.Len(), doc)
	}
}
