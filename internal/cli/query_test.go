package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersJSON = `{"users":[{"name":"Alice","age":30},{"name":"Bob","age":25}]}`

func TestQueryCommandMissingArgs(t *testing.T) {
	cmd := NewQueryCommand(testOptions("text"))
	_, err := runCommand(t, cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestQueryTextChannel(t *testing.T) {
	input := writeFile(t, t.TempDir(), "users.json", usersJSON)

	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, ".users[].name", input)

	require.NoError(t, err)
	assert.Equal(t, "[\"Alice\",\"Bob\"]\n", out)
}

func TestQuerySingleResultUnwraps(t *testing.T) {
	input := writeFile(t, t.TempDir(), "users.json", usersJSON)

	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, ".users[0].name", input)

	require.NoError(t, err)
	assert.Equal(t, "\"Alice\"\n", out)
}

func TestQueryReadsStdin(t *testing.T) {
	cmd := NewQueryCommand(testOptions("text"))
	cmd.SetIn(strings.NewReader(`{"price":19.99,"qty":2}`))

	out, err := runCommand(t, cmd, ".price * .qty")

	require.NoError(t, err)
	assert.Equal(t, "39.98\n", out)
}

func TestQueryMultipleInputsKeepOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"v":1}`)
	b := writeFile(t, dir, "b.yaml", "v: 2.5\n")
	c := writeFile(t, dir, "c.cue", "v: \"three\"\n")

	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, ".v", a, b, c, "--concurrency", "2")

	require.NoError(t, err)
	assert.Equal(t, a+": 1\n"+b+": 2.5\n"+c+": \"three\"\n", out)
}

func TestQueryTypedChannel(t *testing.T) {
	input := writeFile(t, t.TempDir(), "users.json", usersJSON)

	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, ".users[0]", input, "--channel", "typed")

	require.NoError(t, err)
	assert.Equal(t, "object({age=number,name=string}) {\"age\":30,\"name\":\"Alice\"}\n", out)
}

func TestQueryNativeChannelJSON(t *testing.T) {
	input := writeFile(t, t.TempDir(), "users.json", usersJSON)

	cmd := NewQueryCommand(testOptions("json"))
	out, err := runCommand(t, cmd, "[.users[].age]", input, "--channel", "native")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, input, resp.Data[0].Input)
	assert.Equal(t, "list", resp.Data[0].Kind)
	assert.JSONEq(t, `[30,25]`, string(resp.Data[0].Result))
}

func TestQueryJSONPath(t *testing.T) {
	input := writeFile(t, t.TempDir(), "users.json", usersJSON)

	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, "$.users[*].name", input, "--language", "jsonpath")

	require.NoError(t, err)
	assert.Equal(t, "[\"Alice\",\"Bob\"]\n", out)
}

func TestQueryEvaluationFailure(t *testing.T) {
	input := writeFile(t, t.TempDir(), "in.json", `{"a":"x"}`)

	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, ".a + 1", input)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [EVALUATION_FAILURE]: jq query failed:")
}

func TestQueryEmptyProgram(t *testing.T) {
	input := writeFile(t, t.TempDir(), "in.json", `{}`)

	cmd := NewQueryCommand(testOptions("json"))
	out, err := runCommand(t, cmd, "   ", input)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string        `json:"status"`
		Data   []QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Data[0].Error)
	assert.Equal(t, "INVALID_PROGRAM", resp.Data[0].Error.Code)
	assert.Equal(t, "The 'query' argument must be a non-empty string.", resp.Data[0].Error.Message)
}

func TestQueryUnreadableInputIsCommandError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"a":1}`)
	missing := filepath.Join(dir, "missing.json")

	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, ".a", good, missing)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, good+": 1\n")
	assert.Contains(t, out, "Error [INPUT_ERROR]: "+missing+": ")
}

func TestQueryMalformedInput(t *testing.T) {
	input := writeFile(t, t.TempDir(), "bad.json", `{"a":`)

	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, ".a", input)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "malformed JSON input")
}

func TestQueryStdinOnlyOnce(t *testing.T) {
	cmd := NewQueryCommand(testOptions("text"))
	_, err := runCommand(t, cmd, ".", "-", "-")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "standard input can only be read once")
}

func TestQueryInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"channel", []string{"--channel", "binary"}, "channel must be text, native or typed"},
		{"input format", []string{"--input-format", "toml"}, "unknown input format"},
		{"concurrency", []string{"--concurrency", "0"}, "concurrency must be at least 1"},
		{"language", []string{"--language", "xpath"}, `unknown query language "xpath"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewQueryCommand(testOptions("text"))
			cmd.SetIn(strings.NewReader(`{}`))
			_, err := runCommand(t, cmd, append([]string{"."}, tt.args...)...)

			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestQueryCacheRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "users.json", usersJSON)
	cache := filepath.Join(dir, "cache.db")

	for i := 0; i < 2; i++ {
		cmd := NewQueryCommand(testOptions("text"))
		out, err := runCommand(t, cmd, ".users | length", input, "--cache", cache)
		require.NoError(t, err)
		assert.Equal(t, "2\n", out)
	}

	// A typed query through the cache decodes the stored text.
	cmd := NewQueryCommand(testOptions("text"))
	out, err := runCommand(t, cmd, ".users | length", input, "--cache", cache, "--channel", "typed")
	require.NoError(t, err)
	assert.Equal(t, "number 2\n", out)

	history := NewHistoryCommand(testOptions("json"))
	out, err = runCommand(t, history, "--cache", cache)
	require.NoError(t, err)

	var resp struct {
		Data HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, HistorySummary{Runs: 3, CacheHits: 2, Failures: 0, Results: 1}, resp.Data.Summary)
	require.Len(t, resp.Data.Runs, 3)
	assert.False(t, resp.Data.Runs[0].CacheHit)
	assert.True(t, resp.Data.Runs[1].CacheHit)
	assert.Less(t, resp.Data.Runs[0].Seq, resp.Data.Runs[1].Seq)
	assert.Equal(t, ".users | length", resp.Data.Runs[0].Program)
}

func TestQueryCancelledContext(t *testing.T) {
	input := writeFile(t, t.TempDir(), "in.json", `{"a":1}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := &bytes.Buffer{}
	cmd := NewQueryCommand(testOptions("text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{".a", input})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}
