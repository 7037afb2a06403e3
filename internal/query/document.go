package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// decodeDocument parses canonical text into the plain Go values evaluators
// consume. Integer literals become int, or *big.Int beyond the int range;
// other numbers become float64.
func decodeDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return convertNumbers(v)
}

func convertNumbers(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		return convertNumber(val)
	case []any:
		for i, elem := range val {
			converted, err := convertNumbers(elem)
			if err != nil {
				return nil, err
			}
			val[i] = converted
		}
		return val, nil
	case map[string]any:
		for k, elem := range val {
			converted, err := convertNumbers(elem)
			if err != nil {
				return nil, err
			}
			val[k] = converted
		}
		return val, nil
	default:
		return v, nil
	}
}

func convertNumber(n json.Number) (any, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		if bi, ok := new(big.Int).SetString(s, 10); ok {
			return bi, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("number %s: %w", s, err)
	}
	return f, nil
}

// encodeDocument writes one evaluator result as JSON text. NaN becomes null
// and infinities become the largest finite float64, as jq prints them.
func encodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(finite(v)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func finite(v any) any {
	switch val := v.(type) {
	case float64:
		switch {
		case math.IsNaN(val):
			return nil
		case math.IsInf(val, 1):
			return math.MaxFloat64
		case math.IsInf(val, -1):
			return -math.MaxFloat64
		}
		return val
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = finite(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = finite(elem)
		}
		return out
	default:
		return v
	}
}
