package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/blockstorm/internal/engine/node"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeDoc(t *testing.T, dir string, children ...*node.Node) string {
	t.Helper()
	file := filepath.Join(dir, "notes.json")
	data, err := node.EncodeDocument(node.NewDocument(children...))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return file
}

func readDoc(t *testing.T, file string) *node.Document {
	t.Helper()
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := node.DecodeDocument(data)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestShow(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), node.Paragraph("A", node.Paragraph("A1")), node.Paragraph("B"))

	out, _, err := run(t, "", "--doc", doc, "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{`[0]        paragraph "A"`, `[0 0]        paragraph "A1"`, `[1]        paragraph "B"`} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, "", "--doc", doc, "show", "--layout")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "\n") != 3 || !strings.Contains(out, "24,24 576x24") {
		t.Errorf("show --layout output:\n%s", out)
	}

	out, _, err = run(t, "", "--doc", doc, "show", "--json")
	if err != nil {
		t.Fatal(err)
	}
	got, err := node.DecodeDocument([]byte(out))
	if err != nil {
		t.Fatalf("show --json output does not decode: %v", err)
	}
	if !got.Equal(readDoc(t, doc)) {
		t.Errorf("show --json = %s", got)
	}
}

func TestMove(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), node.Paragraph("A"), node.Paragraph("B"), node.Paragraph("C"))

	out, _, err := run(t, "", "--doc", doc, "move", "--from", "0", "--to", "2")
	if err != nil {
		t.Fatalf("move error = %v", err)
	}
	if !strings.HasPrefix(out, "r1 move") {
		t.Errorf("move output = %q", out)
	}
	want := node.NewDocument(node.Paragraph("B"), node.Paragraph("A"), node.Paragraph("C"))
	if got := readDoc(t, doc); !got.Equal(want) {
		t.Errorf("saved document = %s", got)
	}

	_, stderr, err := run(t, "", "--doc", doc, "move", "--from", "7", "--to", "0")
	if err == nil || stderr == "" {
		t.Errorf("move of a missing node: err = %v, stderr = %q", err, stderr)
	}
	if got := readDoc(t, doc); !got.Equal(want) {
		t.Errorf("failed move changed the file: %s", got)
	}

	if _, _, err := run(t, "", "--doc", doc, "move", "--from", "x", "--to", "0"); err == nil {
		t.Error("expected a path parse error")
	}
	if _, _, err := run(t, "", "move", "--from", "0", "--to", "1"); err == nil {
		t.Error("expected an error without --doc")
	}
}

func TestDrop(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), node.Paragraph("A"), node.Paragraph("B"))

	out, _, err := run(t, "", "--doc", doc, "drop", "--drag", "1", "--x", "10", "--y", "2", "--dry-run")
	if err != nil {
		t.Fatalf("drop --dry-run error = %v", err)
	}
	if !strings.HasPrefix(out, "before [0] -> insert at [0]") || !strings.Contains(out, "horizontal-bar") {
		t.Errorf("dry run output:\n%s", out)
	}
	if got := readDoc(t, doc); !got.Equal(node.NewDocument(node.Paragraph("A"), node.Paragraph("B"))) {
		t.Errorf("dry run changed the file: %s", got)
	}

	out, _, err = run(t, "", "--doc", doc, "drop", "--drag", "1", "--x", "10", "--y", "2")
	if err != nil {
		t.Fatalf("drop error = %v", err)
	}
	if !strings.Contains(out, "r1 ") {
		t.Errorf("drop output:\n%s", out)
	}
	if got := readDoc(t, doc); !got.Equal(node.NewDocument(node.Paragraph("B"), node.Paragraph("A"))) {
		t.Errorf("saved document = %s", got)
	}

	// Dropping a block onto itself is ignored.
	if _, _, err := run(t, "", "--doc", doc, "drop", "--drag", "0", "--x", "10", "--y", "2"); err == nil {
		t.Error("expected an error for a self drop")
	}
}

func TestImportHTML(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, node.Paragraph("A"))
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte("<h1>Title</h1><p>Body</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := run(t, "", "--doc", doc, "import-html", page, "--at", "0"); err != nil {
		t.Fatalf("import-html error = %v", err)
	}
	got := readDoc(t, doc)
	if got.Root.ChildCount() != 3 || got.Root.Children[0].Type != "heading" || got.Root.Children[2].PlainText() != "A" {
		t.Errorf("document after import = %s", got)
	}

	if _, _, err := run(t, "<ul><li>one</li></ul>", "--doc", doc, "import-html", "-"); err != nil {
		t.Fatalf("import-html from stdin error = %v", err)
	}
	got = readDoc(t, doc)
	if got.Root.ChildCount() != 4 || got.Root.Children[3].Type != "bulleted_list" {
		t.Errorf("document after stdin import = %s", got)
	}

	if _, _, err := run(t, "   ", "--doc", doc, "import-html", "-"); err == nil {
		t.Error("expected an error for empty input")
	}
}

func TestLogAndUndo(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, node.Paragraph("A"), node.Paragraph("B"))
	db := filepath.Join(dir, "changes.db")

	if _, _, err := run(t, "", "--doc", doc, "--store", db, "move", "--from", "1", "--to", "0"); err != nil {
		t.Fatal(err)
	}
	out, _, err := run(t, "", "--doc", doc, "--store", db, "log")
	if err != nil {
		t.Fatalf("log error = %v", err)
	}
	if !strings.HasPrefix(out, "r1 ") || !strings.Contains(out, "user-edit") || !strings.Contains(out, "move [1] -> [0]") {
		t.Errorf("log output:\n%s", out)
	}

	out, _, err = run(t, "", "--doc", doc, "--store", db, "undo")
	if err != nil {
		t.Fatalf("undo error = %v", err)
	}
	if !strings.HasPrefix(out, "r2 revert r1") {
		t.Errorf("undo output = %q", out)
	}
	if got := readDoc(t, doc); !got.Equal(node.NewDocument(node.Paragraph("A"), node.Paragraph("B"))) {
		t.Errorf("document after undo = %s", got)
	}

	if _, _, err := run(t, "", "--doc", doc, "log"); err == nil {
		t.Error("expected an error for log without a store")
	}
}
