package dynamic

import (
	"slices"

	"github.com/roach88/jqcty/internal/native"
)

// Value is a typed dynamic value. The zero Value is a null of type Dynamic.
// Values are immutable once constructed.
type Value struct {
	typ   Type
	null  bool
	prim  native.Value
	elems []Value
	attrs []AttrValue
}

// AttrValue is a named member of an object value.
type AttrValue struct {
	Name  string
	Value Value
}

// NullVal returns a null of type t.
func NullVal(t Type) Value {
	return Value{typ: t, null: true}
}

func BoolVal(b bool) Value {
	return Value{typ: Bool, prim: native.Bool(b)}
}

// NumberVal wraps a native number (Int, Float or Decimal). Any other native
// kind yields a null Number.
func NumberVal(n native.Value) Value {
	if n == nil || !n.Kind().IsNumber() {
		return NullVal(Number)
	}
	return Value{typ: Number, prim: n}
}

func StringVal(s string) Value {
	return Value{typ: String, prim: native.String(s)}
}

// ListVal builds a list whose type is derived from its elements: the shared
// element type when every element agrees, List(Dynamic) when they disagree or
// the list is empty.
func ListVal(elems ...Value) Value {
	elemType := Dynamic
	if len(elems) > 0 {
		elemType = elems[0].typ
		for _, e := range elems[1:] {
			if !e.typ.Equals(elemType) {
				elemType = Dynamic
				break
			}
		}
	}
	return newList(List(elemType), slices.Clone(elems))
}

// ObjectVal builds an object typed attribute by attribute, keeping order.
// A repeated name keeps its first position and the last value.
func ObjectVal(attrs ...AttrValue) Value {
	out := make([]AttrValue, 0, len(attrs))
	for _, a := range attrs {
		if i := slices.IndexFunc(out, func(o AttrValue) bool { return o.Name == a.Name }); i >= 0 {
			out[i].Value = a.Value
			continue
		}
		out = append(out, a)
	}

	types := make([]Attribute, len(out))
	for i, a := range out {
		types[i] = Attribute{Name: a.Name, Type: a.Value.typ}
	}
	return Value{typ: Object(types...), attrs: out}
}

func newList(t Type, elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{typ: t, elems: elems}
}

// Type returns the declared type of v.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether v is a null (of any type).
func (v Value) IsNull() bool {
	return v.null || (v.typ.kind == KindDynamic && v.prim == nil && v.elems == nil && v.attrs == nil)
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.prim.(native.Bool)
	return bool(b), ok && !v.null
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	s, ok := v.prim.(native.String)
	return string(s), ok && !v.null
}

// AsNumber returns the native number held by v.
func (v Value) AsNumber() (native.Value, bool) {
	if v.null || v.prim == nil || !v.prim.Kind().IsNumber() {
		return nil, false
	}
	return v.prim, true
}

// Len returns the number of list elements or object attributes.
func (v Value) Len() int {
	switch v.typ.kind {
	case KindList:
		return len(v.elems)
	case KindObject:
		return len(v.attrs)
	default:
		return 0
	}
}

// Index returns the i-th list element.
func (v Value) Index(i int) (Value, bool) {
	if v.typ.kind != KindList || i < 0 || i >= len(v.elems) {
		return Value{}, false
	}
	return v.elems[i], true
}

// Elements returns a copy of the list elements.
func (v Value) Elements() []Value {
	return slices.Clone(v.elems)
}

// Attribute returns the named object attribute.
func (v Value) Attribute(name string) (Value, bool) {
	for _, a := range v.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// Attributes returns a copy of the object attributes in order.
func (v Value) Attributes() []AttrValue {
	return slices.Clone(v.attrs)
}

// Equal reports whether v and other have equal types and equal contents.
// Numbers compare with native.Equal; attribute order is ignored.
func (v Value) Equal(other Value) bool {
	if !v.typ.Equals(other.typ) || v.IsNull() != other.IsNull() {
		return false
	}
	if v.IsNull() {
		return true
	}

	switch v.typ.kind {
	case KindList:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.attrs) != len(other.attrs) {
			return false
		}
		for _, a := range v.attrs {
			o, ok := other.Attribute(a.Name)
			if !ok || !a.Value.Equal(o) {
				return false
			}
		}
		return true
	default:
		return native.Equal(v.prim, other.prim)
	}
}

// GoString renders v as its type and canonical text, for test failures.
func (v Value) GoString() string {
	text, err := native.Encode(ToNative(v))
	if err != nil {
		return v.typ.String() + "(<unencodable>)"
	}
	return v.typ.String() + "(" + string(text) + ")"
}
