package lua

import (
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// Bridge converts between document values and Lua values.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGoValue converts a Lua value to an attribute value.
func (b *Bridge) ToGoValue(lv lua.LValue) any {
	return b.toGoValue(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return b.tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo returns []any for a sequence and map[string]any otherwise.
func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })
	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGoValue(t.RawGetInt(i), visited)
		}
		return arr
	}
	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = b.toGoValue(v, visited)
	})
	return m
}

// ToAttributes converts a Lua table to Attributes with keys in sorted
// order, so results do not depend on table iteration order.
func (b *Bridge) ToAttributes(t *lua.LTable) node.Attributes {
	if t == nil {
		return nil
	}
	var keys []string
	t.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			keys = append(keys, string(s))
		}
	})
	sort.Strings(keys)

	var attrs node.Attributes
	for _, k := range keys {
		attrs = attrs.Set(k, b.ToGoValue(t.RawGetString(k)))
	}
	return attrs
}

// ToLuaValue converts an attribute value to a Lua value.
func (b *Bridge) ToLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := b.L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, b.ToLuaValue(e))
		}
		return t
	case map[string]any:
		t := b.L.NewTable()
		for k, e := range val {
			t.RawSetString(k, b.ToLuaValue(e))
		}
		return t
	case node.Attributes:
		return b.AttributesTable(val)
	default:
		return lua.LNil
	}
}

// AttributesTable converts Attributes to a Lua table.
func (b *Bridge) AttributesTable(a node.Attributes) *lua.LTable {
	t := b.L.NewTable()
	for _, attr := range a {
		t.RawSetString(attr.Key, b.ToLuaValue(attr.Value))
	}
	return t
}

// PathTable converts a path to a sequence of zero-based indices.
func (b *Bridge) PathTable(p path.Path) *lua.LTable {
	t := b.L.NewTable()
	for i, idx := range p {
		t.RawSetInt(i+1, lua.LNumber(idx))
	}
	return t
}

// NodeTable converts a node to {type=, text=, attributes=, children=}.
func (b *Bridge) NodeTable(n *node.Node) *lua.LTable {
	t := b.L.NewTable()
	t.RawSetString("type", lua.LString(n.Type))
	if n.HasText() {
		t.RawSetString("text", lua.LString(n.PlainText()))
	}
	t.RawSetString("attributes", b.AttributesTable(n.Attributes))
	children := b.L.NewTable()
	for i, ch := range n.Children {
		children.RawSetInt(i+1, b.NodeTable(ch))
	}
	t.RawSetString("children", children)
	return t
}
