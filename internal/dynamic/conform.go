package dynamic

import (
	"fmt"
	"strings"

	"github.com/roach88/jqcty/internal/native"
)

// ConformError reports where a native value failed to match a declared type.
type ConformError struct {
	Path    string
	Message string
}

func (e *ConformError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Conform builds a typed value of declared type t from v.
//
// Dynamic accepts any value, which keeps the type FromNative derives. A native
// Null conforms to every type as a null of that type. Lists check each element
// against the element type; objects require exactly the declared attribute
// names, with absent attributes becoming typed nulls. No conversions between
// primitive kinds are attempted.
func Conform(v native.Value, t Type) (Value, error) {
	return conform(v, t, nil)
}

func conform(v native.Value, t Type, path []string) (Value, error) {
	if v == nil {
		v = native.Null{}
	}
	if v.Kind() == native.KindNull {
		return NullVal(t), nil
	}

	switch t.kind {
	case KindDynamic:
		return FromNative(v), nil
	case KindNull:
		return Value{}, mismatch(path, t, v)
	case KindBool:
		b, ok := v.(native.Bool)
		if !ok {
			return Value{}, mismatch(path, t, v)
		}
		return BoolVal(bool(b)), nil
	case KindNumber:
		if !v.Kind().IsNumber() {
			return Value{}, mismatch(path, t, v)
		}
		return NumberVal(v), nil
	case KindString:
		s, ok := v.(native.String)
		if !ok {
			return Value{}, mismatch(path, t, v)
		}
		return StringVal(string(s)), nil
	case KindList:
		list, ok := v.(native.List)
		if !ok {
			return Value{}, mismatch(path, t, v)
		}
		elemType := t.Elem()
		elems := make([]Value, len(list))
		for i, elem := range list {
			conformed, err := conform(elem, elemType, append(path, fmt.Sprintf("[%d]", i)))
			if err != nil {
				return Value{}, err
			}
			elems[i] = conformed
		}
		return newList(t, elems), nil
	case KindObject:
		m, ok := v.(native.Map)
		if !ok {
			return Value{}, mismatch(path, t, v)
		}
		return conformObject(m, t, path)
	default:
		return Value{}, &ConformError{Path: joinPath(path), Message: "unknown type " + t.String()}
	}
}

func conformObject(m native.Map, t Type, path []string) (Value, error) {
	for _, key := range m.Keys() {
		if _, ok := t.AttributeType(key); !ok {
			return Value{}, &ConformError{
				Path:    joinPath(path),
				Message: fmt.Sprintf("unsupported attribute %q", key),
			}
		}
	}

	attrs := make([]AttrValue, 0, len(t.attrs))
	for _, a := range t.attrs {
		elem, ok := m.Get(a.Name)
		if !ok {
			attrs = append(attrs, AttrValue{Name: a.Name, Value: NullVal(a.Type)})
			continue
		}
		conformed, err := conform(elem, a.Type, append(path, "."+a.Name))
		if err != nil {
			return Value{}, err
		}
		attrs = append(attrs, AttrValue{Name: a.Name, Value: conformed})
	}
	return Value{typ: t, attrs: attrs}, nil
}

func mismatch(path []string, t Type, v native.Value) error {
	return &ConformError{
		Path:    joinPath(path),
		Message: fmt.Sprintf("%s required, got %s", t, v.Kind()),
	}
}

func joinPath(path []string) string {
	return strings.TrimPrefix(strings.Join(path, ""), ".")
}
