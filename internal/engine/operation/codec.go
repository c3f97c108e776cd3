package operation

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// Encode writes an operation, including any resolved state, as a JSON object:
//
//	{"op":"move","from":[0],"to":[2],"dest":[1]}
func Encode(op Operation) (string, error) {
	out, err := sjson.Set("{}", "op", op.Kind().String())
	if err != nil {
		return "", err
	}
	set := func(key string, v any) {
		if err == nil {
			out, err = sjson.Set(out, key, v)
		}
	}
	setRaw := func(key string, raw string, rerr error) {
		if err == nil {
			err = rerr
		}
		if err == nil {
			out, err = sjson.SetRaw(out, key, raw)
		}
	}

	switch o := op.(type) {
	case *Insert:
		set("path", []int(o.Path))
		raw, rerr := node.EncodeNodes(o.Nodes)
		setRaw("nodes", raw, rerr)
	case *Delete:
		set("path", []int(o.Path))
		set("count", o.count())
		if o.Nodes != nil {
			raw, rerr := node.EncodeNodes(o.Nodes)
			setRaw("nodes", raw, rerr)
		}
	case *UpdateAttributes:
		set("path", []int(o.Path))
		raw, rerr := node.EncodeAttributes(o.Attributes)
		setRaw("attributes", raw, rerr)
		if o.Old != nil {
			raw, rerr := node.EncodeAttributes(o.Old)
			setRaw("old", raw, rerr)
		}
	case *UpdateText:
		set("path", []int(o.Path))
		raw, rerr := node.EncodeDelta(o.Delta)
		setRaw("delta", raw, rerr)
		if o.Inverse != nil {
			raw, rerr := node.EncodeDelta(o.Inverse)
			setRaw("inverse", raw, rerr)
		}
	case *Move:
		set("from", []int(o.From))
		set("to", []int(o.To))
		if o.Dest != nil {
			set("dest", []int(o.Dest))
		}
	default:
		return "", fmt.Errorf("%T: %w", op, ErrUnknownKind)
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

// Decode reads an operation written by Encode.
func Decode(raw string) (Operation, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("operation: %w", node.ErrInvalidDocument)
	}
	v := gjson.Parse(raw)
	kind, err := ParseKind(v.Get("op").String())
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindInsert:
		nodes, err := node.DecodeNodes(v.Get("nodes").Raw)
		if err != nil {
			return nil, err
		}
		return &Insert{Path: decodePath(v.Get("path")), Nodes: nodes}, nil
	case KindDelete:
		op := &Delete{Path: decodePath(v.Get("path")), Count: int(v.Get("count").Int())}
		if n := v.Get("nodes"); n.Exists() {
			if op.Nodes, err = node.DecodeNodes(n.Raw); err != nil {
				return nil, err
			}
		}
		return op, nil
	case KindUpdateAttributes:
		op := &UpdateAttributes{Path: decodePath(v.Get("path"))}
		if op.Attributes, err = node.DecodeAttributes(v.Get("attributes").Raw); err != nil {
			return nil, err
		}
		if old := v.Get("old"); old.Exists() {
			if op.Old, err = node.DecodeAttributes(old.Raw); err != nil {
				return nil, err
			}
		}
		return op, nil
	case KindUpdateText:
		op := &UpdateText{Path: decodePath(v.Get("path"))}
		if op.Delta, err = node.DecodeDelta(v.Get("delta").Raw); err != nil {
			return nil, err
		}
		if inv := v.Get("inverse"); inv.Exists() {
			if op.Inverse, err = node.DecodeDelta(inv.Raw); err != nil {
				return nil, err
			}
		}
		return op, nil
	default:
		op := &Move{From: decodePath(v.Get("from")), To: decodePath(v.Get("to"))}
		if d := v.Get("dest"); d.Exists() {
			op.Dest = decodePath(d)
		}
		return op, nil
	}
}

// EncodeList writes operations as a JSON array.
func EncodeList(ops []Operation) (string, error) {
	out := "[]"
	for _, op := range ops {
		raw, err := Encode(op)
		if err != nil {
			return "", err
		}
		if out, err = sjson.SetRaw(out, "-1", raw); err != nil {
			return "", err
		}
	}
	return out, nil
}

// DecodeList reads a JSON array written by EncodeList.
func DecodeList(raw string) ([]Operation, error) {
	v := gjson.Parse(raw)
	if !v.IsArray() {
		return nil, fmt.Errorf("operation list: %w", node.ErrInvalidDocument)
	}
	var ops []Operation
	var err error
	v.ForEach(func(_, item gjson.Result) bool {
		var op Operation
		if op, err = Decode(item.Raw); err != nil {
			return false
		}
		ops = append(ops, op)
		return true
	})
	return ops, err
}

func decodePath(v gjson.Result) path.Path {
	p := path.Path{}
	for _, idx := range v.Array() {
		p = append(p, int(idx.Int()))
	}
	return p
}
