package native

import (
	"bytes"
	"slices"
	"unicode/utf16"
)

// MarshalCanonical produces canonical JSON for hashing: object keys are
// sorted by UTF-16 code units as RFC 8785 requires, so maps that differ only
// in key order produce identical bytes. Numbers and strings follow Encode.
//
// Use Encode for output that callers read; use MarshalCanonical only for
// content-addressed identity.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SortedKeys returns the keys of m in RFC 8785 canonical order.
func (m Map) SortedKeys() []string {
	return sortedKeys(m.Keys())
}

func sortedKeys(keys []string) []string {
	out := slices.Clone(keys)
	slices.SortFunc(out, compareKeysRFC8785)
	return out
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
// Go's string comparison uses UTF-8 bytes, which orders supplementary-plane
// characters differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
