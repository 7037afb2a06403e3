package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/jqcty/internal/query"
)

func runYAML(t *testing.T, yaml string) *Result {
	t.Helper()
	s, err := ParseScenario([]byte(yaml))
	require.NoError(t, err)

	result, err := Run(context.Background(), query.New(), s)
	require.NoError(t, err)
	return result
}

func TestRun_GoldenScenarios(t *testing.T) {
	for _, name := range []string{"users", "cart"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, query.New(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(s.Steps))
		})
	}
}

func TestRun_TraceSeqIsMonotonic(t *testing.T) {
	result := runYAML(t, `
name: seq
description: one seq per step
input: {a: 1}
steps:
  - program: .a
  - program: .a + 1
  - program: .a + 2
`)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	for i, event := range result.Trace {
		assert.Equal(t, int64(i+1), event.Seq)
		assert.Equal(t, i, event.Step)
	}
}

func TestRun_ValueMismatchReportsMergePatch(t *testing.T) {
	result := runYAML(t, `
name: mismatch
description: value mismatch
input: {user: {name: Alice, age: 30}}
steps:
  - program: .user
    expect:
      value: {name: Alice, age: 31}
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "value assertion failed")
	assert.Contains(t, result.Errors[0], `Diff (merge patch): {"age":30}`)
}

func TestRun_ValueComparisonKeepsNumberKind(t *testing.T) {
	result := runYAML(t, `
name: kinds
description: int and float differ
input: {n: 2}
steps:
  - program: .n
    expect:
      value: 2.0
`)
	assert.False(t, result.Pass)
}

func TestRun_ValueComparisonIgnoresKeyOrder(t *testing.T) {
	result := runYAML(t, `
name: order
description: maps compare by content
input: {b: 1, a: [x, null]}
steps:
  - program: .
    channel: native
    expect:
      value: {a: [x, null], b: 1}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_NullIsNotEmptyObject(t *testing.T) {
	result := runYAML(t, `
name: null
description: null result
input: {}
steps:
  - program: .missing
    expect:
      value: {}
`)
	assert.False(t, result.Pass)
}

func TestRun_ErrorExpectations(t *testing.T) {
	result := runYAML(t, `
name: errors
description: error kinds
input: {n: .nan}
steps:
  - program: .
    expect:
      error: MALFORMED_INPUT
  - program: "   "
    expect:
      error: INVALID_PROGRAM
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, string(query.MalformedInput), result.Trace[0].ErrorKind)

	result = runYAML(t, `
name: eval
description: evaluation failure
input: null
steps:
  - program: error("boom")
    expect:
      error: EVALUATION_FAILURE
      error_contains: boom
  - program: .[
    expect:
      error: EVALUATION_FAILURE
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnexpectedOutcomes(t *testing.T) {
	result := runYAML(t, `
name: unexpected
description: failures in both directions
input: {a: 1}
steps:
  - program: error("boom")
  - program: .a
    expect:
      error: EVALUATION_FAILURE
  - program: error("boom")
    expect:
      error: INVALID_PROGRAM
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "success assertion failed")
	assert.Contains(t, result.Errors[1], "Actual: success: 1")
	assert.Contains(t, result.Errors[2], "Expected: INVALID_PROGRAM")
}

func TestRun_TextAndTypeExpectations(t *testing.T) {
	result := runYAML(t, `
name: text
description: exact text and types
input: {price: 2.5, tags: [a, b], empty: []}
steps:
  - program: .price
    expect:
      text: "2.5"
      type: number
  - program: .tags
    channel: typed
    expect:
      type: list(string)
      check: len(result) == 2 && type == "list(string)"
  - program: .empty
    channel: typed
    expect:
      type: list(dynamic)
  - program: .tags
    expect:
      text: '["b","a"]'
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[3]: text assertion failed")
}

func TestRun_CheckExpression(t *testing.T) {
	result := runYAML(t, `
name: check
description: expr checks
input: {users: [{name: Alice, age: 30}, {name: Bob, age: 25}]}
steps:
  - program: '[.users[] | select(.age > 26) | .name]'
    expect:
      check: result == ["Alice"]
  - program: .users | length
    expect:
      check: result > 5
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[1]: check assertion failed")
}

func TestRun_InvalidCheckIsReported(t *testing.T) {
	result := runYAML(t, `
name: badcheck
description: check that does not compile
input: 1
steps:
  - program: .
    expect:
      check: result +
`)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "steps[0].expect.check")
}

func TestRun_UnknownLanguage(t *testing.T) {
	s, err := ParseScenario([]byte("name: s\ndescription: d\nlanguage: xpath\nsteps:\n  - program: .\n"))
	require.NoError(t, err)

	_, err = Run(context.Background(), query.New(), s)
	require.Error(t, err)
	assert.True(t, query.IsInvalidProgram(err))
}

func TestRun_CanceledContext(t *testing.T) {
	s, err := ParseScenario([]byte("name: s\ndescription: d\nsteps:\n  - program: .\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, query.New(), s)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_LogsSteps(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s, err := ParseScenario([]byte("name: logged\ndescription: d\nsteps:\n  - program: .\n  - program: .\n"))
	require.NoError(t, err)

	_, err = Run(context.Background(), query.New(), s, WithLogger(zap.New(core)))
	require.NoError(t, err)

	entries := logs.FilterMessage("step completed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "logged", entries[0].ContextMap()["scenario"])
}
