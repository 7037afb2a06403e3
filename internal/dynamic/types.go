package dynamic

import (
	"slices"
	"strings"
)

// TypeKind identifies the variant of a Type.
type TypeKind int

const (
	KindDynamic TypeKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

func (k TypeKind) String() string {
	switch k {
	case KindDynamic:
		return "dynamic"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Type describes the shape of a Value. The zero Type is Dynamic.
// Types are immutable; compare them with Equals.
type Type struct {
	kind  TypeKind
	elem  *Type
	attrs []Attribute
}

// Attribute is a named member of an object type.
type Attribute struct {
	Name string
	Type Type
}

// Primitive types.
var (
	Dynamic = Type{kind: KindDynamic}
	Null    = Type{kind: KindNull}
	Bool    = Type{kind: KindBool}
	Number  = Type{kind: KindNumber}
	String  = Type{kind: KindString}
)

// List returns the type of a list whose elements all have type elem.
func List(elem Type) Type {
	return Type{kind: KindList, elem: &elem}
}

// Object returns an object type with the given attributes, in order.
// A repeated name replaces the earlier attribute's type in place.
func Object(attrs ...Attribute) Type {
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if i := slices.IndexFunc(out, func(o Attribute) bool { return o.Name == a.Name }); i >= 0 {
			out[i].Type = a.Type
			continue
		}
		out = append(out, a)
	}
	return Type{kind: KindObject, attrs: out}
}

func (t Type) Kind() TypeKind { return t.kind }

// IsPrimitive reports whether t is Bool, Number or String.
func (t Type) IsPrimitive() bool {
	return t.kind == KindBool || t.kind == KindNumber || t.kind == KindString
}

// Elem returns the element type of a list type, or Dynamic for other kinds.
func (t Type) Elem() Type {
	if t.kind != KindList || t.elem == nil {
		return Dynamic
	}
	return *t.elem
}

// Attributes returns a copy of the attributes of an object type, in
// declaration order.
func (t Type) Attributes() []Attribute {
	return slices.Clone(t.attrs)
}

// AttributeType returns the type of the named attribute.
func (t Type) AttributeType(name string) (Type, bool) {
	for _, a := range t.attrs {
		if a.Name == name {
			return a.Type, true
		}
	}
	return Dynamic, false
}

// Equals reports deep structural equality. Object attribute order does not
// matter.
func (t Type) Equals(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KindList:
		return t.Elem().Equals(other.Elem())
	case KindObject:
		if len(t.attrs) != len(other.attrs) {
			return false
		}
		for _, a := range t.attrs {
			ot, ok := other.AttributeType(a.Name)
			if !ok || !a.Type.Equals(ot) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders t in a readable form, e.g. "list(string)" or
// "object({age=number,name=string})". Object attributes are sorted by name.
func (t Type) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t Type) writeTo(sb *strings.Builder) {
	switch t.kind {
	case KindList:
		sb.WriteString("list(")
		t.Elem().writeTo(sb)
		sb.WriteByte(')')
	case KindObject:
		sb.WriteString("object({")
		for i, a := range t.sortedAttributes() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(a.Name)
			sb.WriteByte('=')
			a.Type.writeTo(sb)
		}
		sb.WriteString("})")
	default:
		sb.WriteString(t.kind.String())
	}
}

func (t Type) sortedAttributes() []Attribute {
	attrs := slices.Clone(t.attrs)
	slices.SortFunc(attrs, func(a, b Attribute) int {
		return strings.Compare(a.Name, b.Name)
	})
	return attrs
}
