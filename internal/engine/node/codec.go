package node

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// The JSON form of a node is
//
//	{"type":"paragraph","attributes":{...},"delta":[{"insert":"hi"}],"children":[...]}
//
// with attributes, delta and children omitted when absent. Attribute order
// is preserved. Integral numbers decode as int, other numbers as float64.

// Marshal encodes a node subtree as JSON.
func Marshal(n *Node) ([]byte, error) {
	raw, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// Unmarshal decodes a node subtree from JSON.
func Unmarshal(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("node json: %w", ErrInvalidDocument)
	}
	return decodeNode(gjson.ParseBytes(data))
}

// EncodeDocument encodes the document root and everything below it.
func EncodeDocument(d *Document) ([]byte, error) {
	if d == nil || d.Root == nil {
		return nil, fmt.Errorf("nil document: %w", ErrInvalidDocument)
	}
	return Marshal(d.Root)
}

// DecodeDocument decodes a document previously written by EncodeDocument.
func DecodeDocument(data []byte) (*Document, error) {
	root, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// EncodeNodes encodes a list of subtrees as a JSON array.
func EncodeNodes(nodes []*Node) (string, error) {
	out := "[]"
	for _, n := range nodes {
		raw, err := encodeNode(n)
		if err != nil {
			return "", err
		}
		if out, err = sjson.SetRaw(out, "-1", raw); err != nil {
			return "", err
		}
	}
	return out, nil
}

// DecodeNodes decodes a JSON array written by EncodeNodes.
func DecodeNodes(raw string) ([]*Node, error) {
	res := gjson.Parse(raw)
	if !res.IsArray() {
		return nil, fmt.Errorf("node list: %w", ErrInvalidDocument)
	}
	var nodes []*Node
	var err error
	res.ForEach(func(_, v gjson.Result) bool {
		var n *Node
		if n, err = decodeNode(v); err != nil {
			return false
		}
		nodes = append(nodes, n)
		return true
	})
	return nodes, err
}

func encodeNode(n *Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("nil node: %w", ErrInvalidDocument)
	}
	out, err := sjson.Set("{}", "type", n.Type)
	if err != nil {
		return "", err
	}
	if len(n.Attributes) > 0 {
		raw, err := EncodeAttributes(n.Attributes)
		if err != nil {
			return "", err
		}
		if out, err = sjson.SetRaw(out, "attributes", raw); err != nil {
			return "", err
		}
	}
	if n.Delta != nil {
		raw, err := EncodeDelta(n.Delta)
		if err != nil {
			return "", err
		}
		if out, err = sjson.SetRaw(out, "delta", raw); err != nil {
			return "", err
		}
	}
	if len(n.Children) > 0 {
		raw, err := EncodeNodes(n.Children)
		if err != nil {
			return "", err
		}
		if out, err = sjson.SetRaw(out, "children", raw); err != nil {
			return "", err
		}
	}
	return out, nil
}

func decodeNode(v gjson.Result) (*Node, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("node is %s: %w", v.Type, ErrInvalidDocument)
	}
	typ := v.Get("type")
	if typ.Type != gjson.String || typ.Str == "" {
		return nil, fmt.Errorf("node without type: %w", ErrInvalidDocument)
	}
	n := &Node{Type: typ.Str}
	if a := v.Get("attributes"); a.Exists() {
		attrs, err := decodeAttributes(a)
		if err != nil {
			return nil, err
		}
		n.Attributes = attrs
	}
	if d := v.Get("delta"); d.Exists() {
		delta, err := decodeDelta(d)
		if err != nil {
			return nil, err
		}
		n.Delta = delta
	}
	if c := v.Get("children"); c.Exists() {
		children, err := DecodeNodes(c.Raw)
		if err != nil {
			return nil, err
		}
		n.Children = children
	}
	return n, nil
}

// EncodeAttributes encodes attributes as a JSON object in insertion order.
func EncodeAttributes(a Attributes) (string, error) {
	out := "{}"
	for _, attr := range a {
		raw, err := encodeValue(attr.Value)
		if err != nil {
			return "", fmt.Errorf("attribute %q: %w", attr.Key, err)
		}
		if out, err = sjson.SetRaw(out, escapeKey(attr.Key), raw); err != nil {
			return "", err
		}
	}
	return out, nil
}

// DecodeAttributes decodes a JSON object into ordered attributes. A JSON
// null value is kept as a nil value, which Apply treats as removal.
func DecodeAttributes(raw string) (Attributes, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("attributes: %w", ErrInvalidDocument)
	}
	return decodeAttributes(gjson.Parse(raw))
}

func decodeAttributes(v gjson.Result) (Attributes, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("attributes are %s: %w", v.Type, ErrInvalidDocument)
	}
	a := Attributes{}
	v.ForEach(func(k, val gjson.Result) bool {
		a = append(a, Attribute{Key: k.Str, Value: decodeValue(val)})
		return true
	})
	return a, nil
}

// EncodeDelta encodes a delta as a JSON array of steps.
func EncodeDelta(d Delta) (string, error) {
	out := "[]"
	for _, op := range d {
		step := "{}"
		var err error
		switch {
		case op.IsInsert():
			step, err = sjson.Set(step, "insert", op.Insert)
		case op.IsRetain():
			step, err = sjson.Set(step, "retain", op.Retain)
		case op.IsDelete():
			step, err = sjson.Set(step, "delete", op.Delete)
		default:
			continue
		}
		if err != nil {
			return "", err
		}
		if op.Attributes != nil && !op.IsDelete() {
			raw, err := EncodeAttributes(op.Attributes)
			if err != nil {
				return "", err
			}
			if step, err = sjson.SetRaw(step, "attributes", raw); err != nil {
				return "", err
			}
		}
		if out, err = sjson.SetRaw(out, "-1", step); err != nil {
			return "", err
		}
	}
	return out, nil
}

// DecodeDelta decodes a JSON array written by EncodeDelta.
func DecodeDelta(raw string) (Delta, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("delta: %w", ErrInvalidDocument)
	}
	return decodeDelta(gjson.Parse(raw))
}

func decodeDelta(v gjson.Result) (Delta, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("delta is %s: %w", v.Type, ErrInvalidDocument)
	}
	d := NewDelta()
	var err error
	v.ForEach(func(_, step gjson.Result) bool {
		var attrs Attributes
		if a := step.Get("attributes"); a.Exists() {
			if attrs, err = decodeAttributes(a); err != nil {
				return false
			}
		}
		switch {
		case step.Get("insert").Type == gjson.String:
			d = append(d, TextOp{Insert: step.Get("insert").Str, Attributes: attrs})
		case step.Get("retain").Exists():
			d = append(d, TextOp{Retain: int(step.Get("retain").Int()), Attributes: attrs})
		case step.Get("delete").Exists():
			d = append(d, TextOp{Delete: int(step.Get("delete").Int())})
		default:
			err = fmt.Errorf("delta step %s: %w", step.Raw, ErrInvalidDocument)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func encodeValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case Attributes:
		return EncodeAttributes(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		a := make(Attributes, 0, len(x))
		for _, k := range keys {
			a = append(a, Attribute{Key: k, Value: x[k]})
		}
		return EncodeAttributes(a)
	case []any:
		out := "[]"
		for _, e := range x {
			raw, err := encodeValue(e)
			if err != nil {
				return "", err
			}
			if out, err = sjson.SetRaw(out, "-1", raw); err != nil {
				return "", err
			}
		}
		return out, nil
	default:
		out, err := sjson.Set("", "v", v)
		if err != nil {
			return "", err
		}
		return gjson.Get(out, "v").Raw, nil
	}
}

func decodeValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False, gjson.True:
		return v.Bool()
	case gjson.String:
		return v.Str
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if i, err := strconv.Atoi(v.Raw); err == nil {
				return i
			}
		}
		return v.Num
	}
	if v.IsArray() {
		out := []any{}
		v.ForEach(func(_, e gjson.Result) bool {
			out = append(out, decodeValue(e))
			return true
		})
		return out
	}
	a, _ := decodeAttributes(v)
	return a
}

// escapeKey escapes path syntax so a key is set literally.
func escapeKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@', '!', ':':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
