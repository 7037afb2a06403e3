package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jqcty/internal/native"
)

func TestConformPrimitives(t *testing.T) {
	v, err := Conform(native.String("query"), String)
	require.NoError(t, err)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "query", s)

	v, err = Conform(native.MustDecimal("1.5"), Number)
	require.NoError(t, err)
	assert.True(t, Number.Equals(v.Type()))

	v, err = Conform(native.Bool(true), Bool)
	require.NoError(t, err)
	b, _ := v.AsBool()
	assert.True(t, b)
}

func TestConformNullTakesDeclaredType(t *testing.T) {
	v, err := Conform(native.Null{}, String)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.True(t, String.Equals(v.Type()))

	_, ok := v.AsString()
	assert.False(t, ok)
}

func TestConformDynamicAcceptsAnything(t *testing.T) {
	input := native.NewMap(native.E("items", native.List{native.Int(1), native.String("x")}))

	v, err := Conform(input, Dynamic)
	require.NoError(t, err)
	assert.True(t, v.Equal(FromNative(input)))
}

func TestConformMismatch(t *testing.T) {
	tests := []struct {
		name  string
		input native.Value
		typ   Type
		want  string
	}{
		{"number for string", native.Int(1), String, "string required, got int"},
		{"string for bool", native.String("true"), Bool, "bool required, got string"},
		{"map for list", native.NewMap(), List(String), "list(string) required, got map"},
		{"value for null", native.Int(0), Null, "null required, got int"},
		{
			"bad element",
			native.List{native.String("a"), native.Int(2)},
			List(String),
			"[1]: string required, got int",
		},
		{
			"bad nested attribute",
			native.NewMap(native.E("cfg", native.NewMap(native.E("port", native.String("80"))))),
			Object(Attribute{"cfg", Object(Attribute{"port", Number})}),
			"cfg.port: number required, got string",
		},
		{
			"unknown attribute",
			native.NewMap(native.E("query", native.String(".")), native.E("extra", native.Int(1))),
			Object(Attribute{"query", String}),
			`unsupported attribute "extra"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Conform(tt.input, tt.typ)
			require.Error(t, err)

			var ce *ConformError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestConformListOfDynamicKeepsElementTypes(t *testing.T) {
	v, err := Conform(native.List{native.Int(1), native.String("a")}, List(Dynamic))
	require.NoError(t, err)

	assert.True(t, List(Dynamic).Equals(v.Type()))
	elems := v.Elements()
	require.Len(t, elems, 2)
	assert.True(t, Number.Equals(elems[0].Type()))
	assert.True(t, String.Equals(elems[1].Type()))
}

func TestConformObjectMissingAttributeIsNull(t *testing.T) {
	typ := Object(
		Attribute{"json_input", String},
		Attribute{"query", String},
		Attribute{"result", String},
	)

	v, err := Conform(native.NewMap(
		native.E("query", native.String(".a")),
		native.E("json_input", native.String(`{"a":1}`)),
	), typ)
	require.NoError(t, err)

	result, ok := v.Attribute("result")
	require.True(t, ok)
	assert.True(t, result.IsNull())
	assert.True(t, typ.Equals(v.Type()))

	// attributes follow declaration order
	assert.Equal(t, `{"json_input":"{\"a\":1}","query":".a","result":null}`, string(native.MustEncode(ToNative(v))))
}
