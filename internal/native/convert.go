package native

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// FromAny converts a plain Go value into a Value.
//
// Supported inputs: nil, Value, bool, string, signed and unsigned integers,
// float32/float64, json.Number, *big.Int, *apd.Decimal, []any and
// map[string]any. Keys of a map[string]any have no order, so they are sorted
// for a deterministic result.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint64(uint64(val)), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint64(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		return decodeNumber(val)
	case *big.Int:
		if val.IsInt64() {
			return Int(val.Int64()), nil
		}
		return NewDecimal(val.String())
	case *apd.Decimal:
		return DecimalFromAPD(val), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = converted
		}
		return list, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		entries := make([]Entry, 0, len(val))
		for _, k := range keys {
			converted, err := FromAny(val[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			entries = append(entries, Entry{Key: k, Value: converted})
		}
		return NewMap(entries...), nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func fromUint64(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return MustDecimal(strconv.FormatUint(u, 10))
}

// ToAny converts a Value into plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any. A Decimal becomes int64 when integral
// and in range, float64 otherwise.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Decimal:
		if val.IsIntegral() {
			if i, err := val.value().Int64(); err == nil {
				return i
			}
		}
		f, _ := val.value().Float64()
		return f
	case String:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Map:
		out := make(map[string]any, val.Len())
		for _, e := range val.entries {
			out[e.Key] = ToAny(e.Value)
		}
		return out
	default:
		return nil
	}
}
