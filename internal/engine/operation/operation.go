package operation

import (
	"fmt"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// Kind identifies an operation variant.
type Kind uint8

const (
	KindInsert Kind = iota
	KindDelete
	KindUpdateAttributes
	KindUpdateText
	KindMove
)

var kindNames = [...]string{
	KindInsert:           "insert",
	KindDelete:           "delete",
	KindUpdateAttributes: "update_attributes",
	KindUpdateText:       "update_text",
	KindMove:             "move",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind converts a wire name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// Operation is a primitive tree edit.
type Operation interface {
	// Kind returns the operation variant.
	Kind() Kind

	// Target returns the path the operation addresses before it is applied.
	Target() path.Path

	// Apply mutates doc and returns the resolved operation. On error doc
	// is left unchanged.
	Apply(doc *node.Document) (Operation, error)

	// Invert returns the operation that undoes a resolved operation.
	Invert() Operation

	// TransformPath maps p from the tree before the operation to the tree
	// after it. ok is false when p addressed a removed node.
	TransformPath(p path.Path) (path.Path, bool)

	String() string
}

func cloneNodes(nodes []*node.Node) []*node.Node {
	if nodes == nil {
		return nil
	}
	out := make([]*node.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func pathError(op string, p path.Path) error {
	return &node.PathError{Op: op, Path: p.Clone(), Err: node.ErrInvalidPath}
}

// Insert places Nodes so the first lands at Path.
type Insert struct {
	Path  path.Path
	Nodes []*node.Node
}

// NewInsert creates an insert operation. The nodes are copied on apply.
func NewInsert(p path.Path, nodes ...*node.Node) *Insert {
	return &Insert{Path: p.Clone(), Nodes: nodes}
}

func (op *Insert) Kind() Kind        { return KindInsert }
func (op *Insert) Target() path.Path { return op.Path }

// Apply inserts copies of the nodes.
func (op *Insert) Apply(doc *node.Document) (Operation, error) {
	if len(op.Nodes) == 0 {
		return nil, fmt.Errorf("insert %s: %w", op.Path, ErrEmptyInsert)
	}
	for _, n := range op.Nodes {
		if n == nil {
			return nil, fmt.Errorf("insert %s: nil node: %w", op.Path, node.ErrInvalidDocument)
		}
	}
	nodes := cloneNodes(op.Nodes)
	if err := doc.Insert(op.Path, nodes...); err != nil {
		return nil, err
	}
	return &Insert{Path: op.Path.Clone(), Nodes: cloneNodes(nodes)}, nil
}

// Invert returns a delete of the inserted nodes.
func (op *Insert) Invert() Operation {
	return &Delete{Path: op.Path.Clone(), Count: len(op.Nodes), Nodes: cloneNodes(op.Nodes)}
}

// TransformPath shifts following siblings by the number of inserted nodes.
func (op *Insert) TransformPath(p path.Path) (path.Path, bool) {
	return path.TransformInsert(p, op.Path, len(op.Nodes)), true
}

func (op *Insert) String() string {
	return fmt.Sprintf("insert %s (%d nodes)", op.Path, len(op.Nodes))
}

// Delete removes Count consecutive subtrees starting at Path. A Count of
// zero removes one.
type Delete struct {
	Path  path.Path
	Count int
	// Nodes holds the removed subtrees once resolved.
	Nodes []*node.Node
}

// NewDelete creates a delete of the single node at p.
func NewDelete(p path.Path) *Delete {
	return &Delete{Path: p.Clone(), Count: 1}
}

func (op *Delete) Kind() Kind        { return KindDelete }
func (op *Delete) Target() path.Path { return op.Path }

func (op *Delete) count() int {
	if op.Count <= 0 {
		return 1
	}
	return op.Count
}

// Apply removes the subtrees after checking all of them resolve.
func (op *Delete) Apply(doc *node.Document) (Operation, error) {
	if op.Path.IsRoot() {
		return nil, pathError("delete", op.Path)
	}
	n := op.count()
	last := op.Path.Clone()
	last[len(last)-1] += n - 1
	if !doc.Exists(op.Path) || !doc.Exists(last) {
		return nil, pathError("delete", op.Path)
	}
	removed := make([]*node.Node, 0, n)
	for i := 0; i < n; i++ {
		r, err := doc.Remove(op.Path)
		if err != nil {
			return nil, err
		}
		removed = append(removed, r)
	}
	return &Delete{Path: op.Path.Clone(), Count: n, Nodes: removed}, nil
}

// Invert re-inserts the captured subtrees.
func (op *Delete) Invert() Operation {
	return &Insert{Path: op.Path.Clone(), Nodes: cloneNodes(op.Nodes)}
}

// TransformPath shifts following siblings back. Paths inside a removed
// subtree report false.
func (op *Delete) TransformPath(p path.Path) (path.Path, bool) {
	out := p
	for i := 0; i < op.count(); i++ {
		var ok bool
		if out, ok = path.TransformDelete(out, op.Path); !ok {
			return nil, false
		}
	}
	return out.Clone(), true
}

func (op *Delete) String() string {
	if op.count() == 1 {
		return fmt.Sprintf("delete %s", op.Path)
	}
	return fmt.Sprintf("delete %s (%d nodes)", op.Path, op.count())
}

// UpdateAttributes merges Attributes into the node at Path. Keys with a nil
// value are removed.
type UpdateAttributes struct {
	Path       path.Path
	Attributes node.Attributes
	// Old holds the previous values once resolved, nil for absent keys.
	Old node.Attributes
}

// NewUpdateAttributes creates an attribute update.
func NewUpdateAttributes(p path.Path, attrs node.Attributes) *UpdateAttributes {
	return &UpdateAttributes{Path: p.Clone(), Attributes: attrs.Clone()}
}

func (op *UpdateAttributes) Kind() Kind        { return KindUpdateAttributes }
func (op *UpdateAttributes) Target() path.Path { return op.Path }

// Apply merges the diff and records the old values.
func (op *UpdateAttributes) Apply(doc *node.Document) (Operation, error) {
	n, err := doc.Resolve(op.Path)
	if err != nil {
		return nil, err
	}
	old := n.Attributes.Invert(op.Attributes)
	n.Attributes = n.Attributes.Apply(op.Attributes)
	return &UpdateAttributes{Path: op.Path.Clone(), Attributes: op.Attributes.Clone(), Old: old}, nil
}

// Invert restores the old values.
func (op *UpdateAttributes) Invert() Operation {
	return &UpdateAttributes{Path: op.Path.Clone(), Attributes: op.Old.Clone(), Old: op.Attributes.Clone()}
}

// TransformPath leaves paths unchanged.
func (op *UpdateAttributes) TransformPath(p path.Path) (path.Path, bool) {
	return p.Clone(), true
}

func (op *UpdateAttributes) String() string {
	return fmt.Sprintf("update_attributes %s %#v", op.Path, op.Attributes)
}

// UpdateText composes Delta into the content of the node at Path.
type UpdateText struct {
	Path  path.Path
	Delta node.Delta
	// Inverse holds the undoing delta once resolved.
	Inverse node.Delta
}

// NewUpdateText creates a content update.
func NewUpdateText(p path.Path, delta node.Delta) *UpdateText {
	return &UpdateText{Path: p.Clone(), Delta: delta.Clone()}
}

func (op *UpdateText) Kind() Kind        { return KindUpdateText }
func (op *UpdateText) Target() path.Path { return op.Path }

// Apply composes the delta. A delta reaching past the content fails.
func (op *UpdateText) Apply(doc *node.Document) (Operation, error) {
	n, err := doc.Resolve(op.Path)
	if err != nil {
		return nil, err
	}
	base := n.Delta
	inverse := op.Delta.Invert(base)
	if !op.Delta.IsEmpty() {
		next, err := base.Compose(op.Delta)
		if err != nil {
			return nil, fmt.Errorf("update_text %s: %w", op.Path, err)
		}
		inverse = op.Delta.Revert(base, next)
		n.Delta = next
	}
	return &UpdateText{
		Path:    op.Path.Clone(),
		Delta:   op.Delta.Clone(),
		Inverse: inverse,
	}, nil
}

// Invert applies the captured inverse delta.
func (op *UpdateText) Invert() Operation {
	return &UpdateText{Path: op.Path.Clone(), Delta: op.Inverse.Clone(), Inverse: op.Delta.Clone()}
}

// TransformPath leaves paths unchanged.
func (op *UpdateText) TransformPath(p path.Path) (path.Path, bool) {
	return p.Clone(), true
}

// TransformOffset maps a caret offset in the edited node through the delta.
func (op *UpdateText) TransformOffset(offset int) int {
	return op.Delta.TransformOffset(offset)
}

func (op *UpdateText) String() string {
	return fmt.Sprintf("update_text %s %s", op.Path, op.Delta)
}

// Move relocates the subtree at From. To is the insertion path expressed
// against the tree before the move.
type Move struct {
	From path.Path
	To   path.Path
	// Dest is the node's path after the move once resolved.
	Dest path.Path
}

// NewMove creates a move operation.
func NewMove(from, to path.Path) *Move {
	return &Move{From: from.Clone(), To: to.Clone()}
}

func (op *Move) Kind() Kind        { return KindMove }
func (op *Move) Target() path.Path { return op.From }

// Apply detaches the subtree and inserts it at the shifted destination.
func (op *Move) Apply(doc *node.Document) (Operation, error) {
	if op.From.IsRoot() {
		return nil, pathError("move", op.From)
	}
	if op.To.IsRoot() || !op.To.IsValid() {
		return nil, pathError("move", op.To)
	}
	if op.From.IsAncestorOf(op.To) {
		return nil, fmt.Errorf("move %s to %s: %w", op.From, op.To, ErrCyclicMove)
	}
	if !doc.Exists(op.From) {
		return nil, pathError("move", op.From)
	}
	parent, err := doc.Resolve(op.To.Parent())
	if err != nil || op.To.Last() > parent.ChildCount() {
		return nil, pathError("move", op.To)
	}

	dest, _ := path.Destination(op.From, op.To)
	resolved := &Move{From: op.From.Clone(), To: op.To.Clone(), Dest: dest}
	if dest.Equal(op.From) {
		return resolved, nil
	}
	moved, err := doc.Remove(op.From)
	if err != nil {
		return nil, err
	}
	if err := doc.Insert(dest, moved); err != nil {
		_ = doc.Insert(op.From, moved)
		return nil, err
	}
	return resolved, nil
}

// Invert moves the node back to where it came from.
func (op *Move) Invert() Operation {
	dest := op.Dest
	if dest == nil {
		dest, _ = path.Destination(op.From, op.To)
	}
	return &Move{From: dest.Clone(), To: path.InverseMoveTarget(op.From, dest), Dest: op.From.Clone()}
}

// TransformPath applies the delete-then-insert shift. Paths inside the
// moved subtree follow the node.
func (op *Move) TransformPath(p path.Path) (path.Path, bool) {
	return path.TransformMove(p, op.From, op.To)
}

func (op *Move) String() string {
	return fmt.Sprintf("move %s -> %s", op.From, op.To)
}

// Invert returns the operations undoing resolved, in reverse order.
func Invert(resolved []Operation) []Operation {
	out := make([]Operation, 0, len(resolved))
	for i := len(resolved) - 1; i >= 0; i-- {
		out = append(out, resolved[i].Invert())
	}
	return out
}
