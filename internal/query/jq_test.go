package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(docs [][]byte) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = string(d)
	}
	return out
}

func TestJQEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		program string
		input   string
		want    []string
	}{
		{"identity", ".", `{"a":1}`, []string{`{"a":1}`}},
		{"stream", ".[]", `[1,"two",null]`, []string{`1`, `"two"`, `null`}},
		{"empty", "empty", `null`, nil},
		{"sorted keys", "{b: 1, a: 2}", `null`, []string{`{"a":2,"b":1}`}},
		{"big integer", ".", `123456789012345678901234567890`, []string{`123456789012345678901234567890`}},
		{"float", ". / 4", `1`, []string{`0.25`}},
		{"no html escaping", `"<&>"`, `null`, []string{`"<&>"`}},
		{"nan in list", "[nan]", `null`, []string{`[null]`}},
	}

	jq := NewJQ()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jq.Evaluate(context.Background(), tt.program, []byte(tt.input))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, texts(got))
		})
	}
}

func TestJQEvaluateErrors(t *testing.T) {
	jq := NewJQ()

	_, err := jq.Evaluate(context.Background(), ".[}", []byte(`{}`))
	assert.Error(t, err)

	_, err = jq.Evaluate(context.Background(), "undefined_function(1)", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined_function")

	_, err = jq.Evaluate(context.Background(), ".", []byte(`{oops`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode input")
}

func TestJSONPathEvaluate(t *testing.T) {
	input := []byte(`{"users":[{"name":"Alice","age":30},{"name":"Bob","age":25}]}`)
	jp := NewJSONPath()

	got, err := jp.Evaluate(context.Background(), "$.users[*].name", input)
	require.NoError(t, err)
	assert.Equal(t, []string{`"Alice"`, `"Bob"`}, texts(got))

	got, err = jp.Evaluate(context.Background(), "$.users[?@.age > 26].age", input)
	require.NoError(t, err)
	assert.Equal(t, []string{`30`}, texts(got))

	got, err = jp.Evaluate(context.Background(), "$.missing", input)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = jp.Evaluate(context.Background(), "$[", input)
	assert.Error(t, err)
}

func TestJSONPathThroughProcessor(t *testing.T) {
	p, err := New().ForLanguage(LanguageJSONPath)
	require.NoError(t, err)
	input := mustDecode(t, `{"users":[{"name":"Alice"},{"name":"Bob"}]}`)

	assert.Equal(t, `"Alice"`, execText(t, p, "$.users[0].name", `{"users":[{"name":"Alice"},{"name":"Bob"}]}`))

	out, err := p.ExecuteText(context.Background(), "$.users[*].name", input)
	require.NoError(t, err)
	assert.Equal(t, `["Alice","Bob"]`, string(out))

	_, err = p.Execute(context.Background(), "$[", input)
	require.Error(t, err)
	assert.True(t, IsEvaluationFailure(err))
	assert.Contains(t, err.Error(), "jsonpath query failed: ")
}

func TestJSONPathCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJSONPath().Evaluate(ctx, "$", []byte(`{}`))
	assert.ErrorIs(t, err, context.Canceled)
}
