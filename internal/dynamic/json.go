package dynamic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/jqcty/internal/native"
)

// MarshalJSON encodes t the way cty does: primitive types as strings
// ("string", "number", "bool", "dynamic", "null"), lists as
// ["list", <elem>] and objects as ["object", {<name>: <type>}].
func (t Type) MarshalJSON() ([]byte, error) {
	return native.Encode(t.toNative())
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (t *Type) UnmarshalJSON(data []byte) error {
	v, err := native.Decode(data)
	if err != nil {
		return fmt.Errorf("type: %w", err)
	}
	parsed, err := typeFromNative(v)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Type) toNative() native.Value {
	switch t.kind {
	case KindList:
		return native.NewList(native.String("list"), t.Elem().toNative())
	case KindObject:
		attrs := t.sortedAttributes()
		entries := make([]native.Entry, len(attrs))
		for i, a := range attrs {
			entries[i] = native.E(a.Name, a.Type.toNative())
		}
		return native.NewList(native.String("object"), native.NewMap(entries...))
	default:
		return native.String(t.kind.String())
	}
}

func typeFromNative(v native.Value) (Type, error) {
	switch val := v.(type) {
	case native.String:
		switch string(val) {
		case "dynamic":
			return Dynamic, nil
		case "null":
			return Null, nil
		case "bool":
			return Bool, nil
		case "number":
			return Number, nil
		case "string":
			return String, nil
		}
		return Dynamic, fmt.Errorf("type: unknown primitive type %q", string(val))
	case native.List:
		if len(val) != 2 {
			return Dynamic, fmt.Errorf("type: expected [kind, argument], got %d elements", len(val))
		}
		kind, _ := val[0].(native.String)
		switch kind {
		case "list":
			elem, err := typeFromNative(val[1])
			if err != nil {
				return Dynamic, err
			}
			return List(elem), nil
		case "object":
			m, ok := val[1].(native.Map)
			if !ok {
				return Dynamic, fmt.Errorf("type: object attributes must be a JSON object")
			}
			attrs := make([]Attribute, 0, m.Len())
			for _, e := range m.Entries() {
				at, err := typeFromNative(e.Value)
				if err != nil {
					return Dynamic, fmt.Errorf("attribute %q: %w", e.Key, err)
				}
				attrs = append(attrs, Attribute{Name: e.Key, Type: at})
			}
			return Object(attrs...), nil
		}
		return Dynamic, fmt.Errorf("type: unknown type constructor %q", string(kind))
	default:
		return Dynamic, fmt.Errorf("type: unexpected %s", v.Kind())
	}
}

type jsonValue struct {
	Type  Type            `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes v as {"type": <type>, "value": <canonical text>}.
func (v Value) MarshalJSON() ([]byte, error) {
	value, err := native.Encode(ToNative(v))
	if err != nil {
		return nil, err
	}
	typ, err := v.typ.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	buf.WriteString(`,"value":`)
	buf.Write(value)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the form written by MarshalJSON, conforming the value
// to the recorded type.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw jsonValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("typed value: %w", err)
	}
	if len(raw.Value) == 0 {
		raw.Value = json.RawMessage("null")
	}

	nv, err := native.Decode(raw.Value)
	if err != nil {
		return fmt.Errorf("typed value: %w", err)
	}
	conformed, err := Conform(nv, raw.Type)
	if err != nil {
		return fmt.Errorf("typed value: %w", err)
	}
	*v = conformed
	return nil
}
