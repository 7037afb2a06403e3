package dynamic

import (
	"fmt"

	"github.com/roach88/jqcty/internal/native"
)

// FromNative derives a typed value from a native value. It is total:
//
//   - Null becomes a null of type Null; Bool, String and the numeric kinds
//     map to Bool, String and Number one-to-one.
//   - A List becomes List(T) when every element normalizes to the same type
//     T, and List(Dynamic) when the list is empty or the element types
//     disagree. Elements always keep their own types.
//   - A Map becomes an Object with exactly its keys, in the same order.
func FromNative(v native.Value) Value {
	switch val := v.(type) {
	case nil, native.Null:
		return NullVal(Null)
	case native.Bool:
		return BoolVal(bool(val))
	case native.Int, native.Float, native.Decimal:
		return Value{typ: Number, prim: val}
	case native.String:
		return StringVal(string(val))
	case native.List:
		elems := make([]Value, len(val))
		for i, elem := range val {
			elems[i] = FromNative(elem)
		}
		return ListVal(elems...)
	case native.Map:
		entries := val.Entries()
		attrs := make([]AttrValue, len(entries))
		for i, e := range entries {
			attrs[i] = AttrValue{Name: e.Key, Value: FromNative(e.Value)}
		}
		return ObjectVal(attrs...)
	default:
		// native.Value is sealed; reaching here means a new variant was added
		// without updating this switch.
		panic(fmt.Sprintf("dynamic: unhandled native value %T", v))
	}
}
