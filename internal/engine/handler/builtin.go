package handler

import (
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/operation"
	"github.com/dshills/blockstorm/internal/engine/transaction"
)

// Builtin attribute defaults.
const (
	AttrCollapsed = "collapsed"
	AttrIcon      = "icon"
	AttrChecked   = "checked"

	DefaultCalloutIcon = "📌"
)

// RegisterBuiltins installs the handlers for the builtin block types.
func RegisterBuiltins(r *Registry) {
	_ = r.Register(node.TypeToggleList, Defaults(node.TypeToggleList, node.Attrs(AttrCollapsed, false)))
	_ = r.Register(node.TypeCallout, Defaults(node.TypeCallout, node.Attrs(AttrIcon, DefaultCalloutIcon)))
	_ = r.Register(node.TypeTodoList, Defaults(node.TypeTodoList, node.Attrs(AttrChecked, false)))
}

// Defaults returns a handler that fills missing attributes on every node of
// typ inserted by the transaction, including nested ones.
func Defaults(typ string, defaults node.Attributes) Handler {
	return Func(func(_ Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
		changed := false
		ops := make([]operation.Operation, len(tx.Operations))
		for i, op := range tx.Operations {
			ops[i] = op
			ins, ok := op.(*operation.Insert)
			if !ok {
				continue
			}
			nodes := make([]*node.Node, len(ins.Nodes))
			for j, n := range ins.Nodes {
				nodes[j] = n.Clone()
				if fillDefaults(nodes[j], typ, defaults) {
					changed = true
				}
			}
			ops[i] = &operation.Insert{Path: ins.Path.Clone(), Nodes: nodes}
		}
		if !changed {
			return tx, nil
		}
		out := tx.Clone()
		out.ID = tx.ID
		out.Operations = ops
		return out, nil
	})
}

func fillDefaults(n *node.Node, typ string, defaults node.Attributes) bool {
	if n == nil {
		return false
	}
	changed := false
	if n.Type == typ {
		for _, d := range defaults {
			if !n.Attributes.Has(d.Key) {
				n.Attributes = n.Attributes.Set(d.Key, d.Value)
				changed = true
			}
		}
	}
	for _, ch := range n.Children {
		if fillDefaults(ch, typ, defaults) {
			changed = true
		}
	}
	return changed
}
