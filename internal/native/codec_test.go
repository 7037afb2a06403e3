package native

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"int", Int(42), "42"},
		{"negative int", Int(-7), "-7"},
		{"max int64", Int(math.MaxInt64), "9223372036854775807"},
		{"float", Float(199.98), "199.98"},
		{"integral float keeps kind", Float(2), "2.0"},
		{"negative zero float", Float(math.Copysign(0, -1)), "-0.0"},
		{"small float", Float(0.000001), "0.000001"},
		{"tiny float", Float(1e-7), "1e-7"},
		{"huge float", Float(1e21), "1e+21"},
		{"decimal integral", MustDecimal("100"), "100"},
		{"decimal integral with zeros", MustDecimal("10.000"), "10"},
		{"decimal integral exponent", MustDecimal("1E+3"), "1000"},
		{"decimal beyond int64", MustDecimal("123456789012345678901234567890"), "123456789012345678901234567890"},
		{"decimal fraction", MustDecimal("99.99"), "99.99"},
		{"decimal negative fraction", MustDecimal("-0.5"), "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeRejectsNonFinite(t *testing.T) {
	for _, v := range []Value{
		Float(math.NaN()),
		Float(math.Inf(1)),
		MustDecimal("Infinity"),
		List{Float(math.Inf(-1))},
		nil,
	} {
		_, err := Encode(v)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnencodable)
	}
}

func TestEncodeStrings(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain", "hello", `"hello"`},
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"non-ascii verbatim", "héllo 世界", `"héllo 世界"`},
		{"line separator verbatim", "a b", "\"a b\""},
		{"quote and backslash", `say "hi" \ bye`, `"say \"hi\" \\ bye"`},
		{"control characters", "a\nb\tc\x01", `"a\nb\tc\u0001"`},
		{"invalid utf8", "a\xffb", "\"a�b\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(String(tt.value))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeStructures(t *testing.T) {
	v := NewMap(
		E("name", String("cart")),
		E("items", List{
			NewMap(E("id", Int(1)), E("price", MustDecimal("9.50"))),
			Null{},
			Bool(true),
		}),
		E("empty", List{}),
		E("nested", NewMap()),
	)

	got, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"cart","items":[{"id":1,"price":9.5},null,true],"empty":[],"nested":{}}`, string(got))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"null", "null", Null{}},
		{"true", "true", Bool(true)},
		{"int", "42", Int(42)},
		{"float", "199.98", Float(199.98)},
		{"exponent is float", "1e3", Float(1000)},
		{"integral float literal", "2.0", Float(2)},
		{"big integer", "123456789012345678901234567890", MustDecimal("123456789012345678901234567890")},
		{"string", `"héllo"`, String("héllo")},
		{"escaped string", `"aA\n"`, String("aA\n")},
		{"empty list", "[]", List{}},
		{"list", `[1, "a", null]`, List{Int(1), String("a"), Null{}}},
		{"whitespace", "  {\n \"a\" : 1 }\n", NewMap(E("a", Int(1)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeString(tt.input)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "want %#v, got %#v", tt.want, got)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}
}

func TestDecodeKeepsKeyOrder(t *testing.T) {
	got, err := DecodeString(`{"zebra":1,"apple":{"y":2,"x":3},"mango":4}`)
	require.NoError(t, err)

	m := got.(Map)
	assert.Equal(t, []string{"zebra", "apple", "mango"}, m.Keys())

	inner, _ := m.Get("apple")
	assert.Equal(t, []string{"y", "x"}, inner.(Map).Keys())

	assert.Equal(t, `{"zebra":1,"apple":{"y":2,"x":3},"mango":4}`, string(MustEncode(got)))
}

func TestDecodeDuplicateKeys(t *testing.T) {
	got, err := DecodeString(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":2}`, string(MustEncode(got)))
}

func TestDecodeMalformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"{",
		`{"a" 1}`,
		"[1,]",
		"nul",
		`{"a":1} {"b":2}`,
		"1 2",
		"1e999",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := DecodeString(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	values := []Value{
		Null{},
		Bool(false),
		Int(math.MinInt64),
		Float(3.14159),
		Float(-2),
		Float(1e-9),
		String("unicode ✓  "),
		List{},
		NewMap(),
		NewMap(
			E("users", List{
				NewMap(E("name", String("Alice")), E("age", Int(30))),
				NewMap(E("name", String("Bob")), E("score", Float(9.5))),
			}),
			E("meta", NewMap(E("total", Int(2)), E("ok", Bool(true)))),
		),
	}

	for _, v := range values {
		encoded, err := Encode(v)
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)

		assert.True(t, Equal(v, decoded), "round trip of %s", encoded)
		assert.Equal(t, v.Kind(), decoded.Kind())
	}
}

func TestCodecRoundTripDecimalChangesKindOnly(t *testing.T) {
	tests := []struct {
		decimal  string
		wantKind Kind
	}{
		{"99.99", KindFloat},
		{"2.00", KindInt},
		{"-0.125", KindFloat},
		{"98765432109876543210", KindDecimal},
	}

	for _, tt := range tests {
		t.Run(tt.decimal, func(t *testing.T) {
			d := MustDecimal(tt.decimal)

			decoded, err := Decode(MustEncode(d))
			require.NoError(t, err)

			assert.True(t, Equal(d, decoded))
			assert.Equal(t, tt.wantKind, decoded.Kind())
		})
	}
}
