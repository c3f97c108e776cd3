package node

import (
	"reflect"
	"strings"
)

// Attribute is a single key/value pair. Values are JSON-like: string, bool,
// float64, int, nil, []any, map[string]any, or nested Attributes.
type Attribute struct {
	Key   string
	Value any
}

// Attributes is an ordered mapping of keys to values. Insertion order is
// preserved across Set and through the JSON codec.
type Attributes []Attribute

// Attrs builds Attributes from alternating key/value arguments.
// Odd trailing keys are ignored.
func Attrs(kv ...any) Attributes {
	var a Attributes
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		a = a.Set(k, kv[i+1])
	}
	return a
}

// Len returns the number of attributes.
func (a Attributes) Len() int {
	return len(a)
}

// index returns the position of key, or -1.
func (a Attributes) index(key string) int {
	for i := range a {
		if a[i].Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value for key.
func (a Attributes) Get(key string) (any, bool) {
	if i := a.index(key); i >= 0 {
		return a[i].Value, true
	}
	return nil, false
}

// Has returns true if key is present.
func (a Attributes) Has(key string) bool {
	return a.index(key) >= 0
}

// String returns the value for key if it is a string.
func (a Attributes) String(key string) string {
	v, _ := a.Get(key)
	s, _ := v.(string)
	return s
}

// Bool returns the value for key if it is a bool.
func (a Attributes) Bool(key string) bool {
	v, _ := a.Get(key)
	b, _ := v.(bool)
	return b
}

// Set returns a copy with key set to value. Existing keys keep their slot.
func (a Attributes) Set(key string, value any) Attributes {
	out := a.Clone()
	if i := out.index(key); i >= 0 {
		out[i].Value = value
		return out
	}
	return append(out, Attribute{Key: key, Value: value})
}

// Delete returns a copy without key.
func (a Attributes) Delete(key string) Attributes {
	i := a.index(key)
	if i < 0 {
		return a.Clone()
	}
	out := make(Attributes, 0, len(a)-1)
	out = append(out, a[:i]...)
	return append(out, a[i+1:].Clone()...)
}

// Keys returns keys in insertion order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a))
	for i := range a {
		keys[i] = a[i].Key
	}
	return keys
}

// Apply returns a copy with diff merged in. A nil value in diff removes the key.
func (a Attributes) Apply(diff Attributes) Attributes {
	out := a.Clone()
	for _, d := range diff {
		if d.Value == nil {
			out = out.Delete(d.Key)
			continue
		}
		out = out.Set(d.Key, d.Value)
	}
	return out
}

// Invert returns the diff that reverts Apply(diff) on a.
// Keys absent from a map to nil.
func (a Attributes) Invert(diff Attributes) Attributes {
	var inv Attributes
	for _, d := range diff {
		old, ok := a.Get(d.Key)
		if !ok {
			old = nil
		}
		inv = append(inv, Attribute{Key: d.Key, Value: cloneValue(old)})
	}
	return inv
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for i := range a {
		out[i] = Attribute{Key: a[i].Key, Value: cloneValue(a[i].Value)}
	}
	return out
}

// Equal compares keys and values, ignoring order.
func (a Attributes) Equal(other Attributes) bool {
	if len(a) != len(other) {
		return false
	}
	for _, attr := range a {
		v, ok := other.Get(attr.Key)
		if !ok || !reflect.DeepEqual(attr.Value, v) {
			return false
		}
	}
	return true
}

// GoString renders attributes as {k=v, ...} for debugging.
func (a Attributes) GoString() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(attr.Key)
		sb.WriteByte('=')
		sb.WriteString(formatValue(attr.Value))
	}
	sb.WriteByte('}')
	return sb.String()
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Attributes:
		return x.Clone()
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[k] = cloneValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i := range x {
			s[i] = cloneValue(x[i])
		}
		return s
	default:
		return v
	}
}
