package native

import (
	"github.com/cockroachdb/apd/v3"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDecimal
	KindString
	KindList
	KindMap
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindDecimal: "decimal",
	KindString:  "string",
	KindList:    "list",
	KindMap:     "map",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsNumber reports whether the kind is one of the numeric variants.
func (k Kind) IsNumber() bool {
	return k == KindInt || k == KindFloat || k == KindDecimal
}

// Value is a sealed interface representing a loosely-typed runtime value.
// Only Null, Bool, Int, Float, Decimal, String, List and Map implement it.
type Value interface {
	Kind() Kind

	// Equal reports value equality. Maps compare regardless of key order.
	// A Decimal equals any number of the same mathematical value; Int and
	// Float never equal each other.
	Equal(other Value) bool

	nativeValue() // Sealed
}

// Null represents the absence of a value.
type Null struct{}

func (Null) nativeValue() {}

func (Null) Kind() Kind { return KindNull }

func (Null) Equal(other Value) bool {
	_, ok := other.(Null)
	return ok
}

// Bool represents a boolean.
type Bool bool

func (Bool) nativeValue() {}

func (Bool) Kind() Kind { return KindBool }

func (b Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && o == b
}

// Int represents an integer that fits in int64. Larger integers decode to
// Decimal.
type Int int64

func (Int) nativeValue() {}

func (Int) Kind() Kind { return KindInt }

func (i Int) Equal(other Value) bool {
	switch o := other.(type) {
	case Int:
		return o == i
	case Decimal:
		return o.cmp(apd.New(int64(i), 0)) == 0
	default:
		return false
	}
}

// Float represents an IEEE-754 double.
type Float float64

func (Float) nativeValue() {}

func (Float) Kind() Kind { return KindFloat }

func (f Float) Equal(other Value) bool {
	switch o := other.(type) {
	case Float:
		return o == f
	case Decimal:
		return o.equalFloat(float64(f))
	default:
		return false
	}
}

// String represents UTF-8 text.
type String string

func (String) nativeValue() {}

func (String) Kind() Kind { return KindString }

func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && o == s
}

// List represents an ordered sequence of values.
type List []Value

func (List) nativeValue() {}

func (List) Kind() Kind { return KindList }

func (l List) Equal(other Value) bool {
	o, ok := other.(List)
	if !ok || len(o) != len(l) {
		return false
	}
	for i := range l {
		if !equalValues(l[i], o[i]) {
			return false
		}
	}
	return true
}

// NewList creates a List from values. The result is never nil, so an empty
// sequence encodes as [] rather than null.
func NewList(vals ...Value) List {
	if vals == nil {
		return List{}
	}
	return List(vals)
}

// Entry is a key-value pair for Map construction.
type Entry struct {
	Key   string
	Value Value
}

// E is a shorthand for Entry.
// Example: NewMap(E("name", String("cart")), E("count", Int(5)))
func E(key string, value Value) Entry {
	return Entry{Key: key, Value: value}
}

// Map represents a mapping from unique text keys to values.
// Insertion order is kept for encoding but carries no meaning for equality.
type Map struct {
	entries []Entry
	index   map[string]int
}

func (Map) nativeValue() {}

func (Map) Kind() Kind { return KindMap }

// NewMap creates a Map from entries. A repeated key keeps the position of its
// first occurrence and the value of its last.
func NewMap(entries ...Entry) Map {
	m := Map{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := m.index[e.Key]; ok {
			m.entries[i].Value = e.Value
			continue
		}
		m.index[e.Key] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return m
}

// Len returns the number of keys.
func (m Map) Len() int {
	return len(m.entries)
}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in insertion order.
func (m Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m Map) Equal(other Value) bool {
	o, ok := other.(Map)
	if !ok || o.Len() != m.Len() {
		return false
	}
	for _, e := range m.entries {
		ov, ok := o.Get(e.Key)
		if !ok || !equalValues(e.Value, ov) {
			return false
		}
	}
	return true
}

// equalValues compares two possibly-nil values.
func equalValues(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Equal reports whether a and b hold equal values. Nil is only equal to nil.
func Equal(a, b Value) bool {
	return equalValues(a, b)
}
