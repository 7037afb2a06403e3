package dynamic

import "github.com/roach88/jqcty/internal/native"

// ToNative converts a typed value back to a native value. It is the
// structural inverse of FromNative: ToNative(FromNative(v)) equals v.
// Nulls of any type become native.Null.
func ToNative(v Value) native.Value {
	if v.IsNull() {
		return native.Null{}
	}

	switch v.typ.kind {
	case KindList:
		out := native.NewList()
		for _, e := range v.elems {
			out = append(out, ToNative(e))
		}
		return out
	case KindObject:
		entries := make([]native.Entry, len(v.attrs))
		for i, a := range v.attrs {
			entries[i] = native.E(a.Name, ToNative(a.Value))
		}
		return native.NewMap(entries...)
	default:
		if v.prim == nil {
			return native.Null{}
		}
		return v.prim
	}
}
