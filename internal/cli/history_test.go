package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRequiresCache(t *testing.T) {
	cmd := NewHistoryCommand(testOptions("text"))
	_, err := runCommand(t, cmd)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no cache configured")
}

func TestHistoryMissingCache(t *testing.T) {
	cmd := NewHistoryCommand(testOptions("text"))
	_, err := runCommand(t, cmd, "--cache", filepath.Join(t.TempDir(), "missing.db"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "cache not found")
}

func TestHistoryText(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.json", `{"a":"x"}`)
	cache := filepath.Join(dir, "cache.db")

	_, err := runCommand(t, NewQueryCommand(testOptions("text")), ".a", input, "--cache", cache)
	require.NoError(t, err)
	_, err = runCommand(t, NewQueryCommand(testOptions("text")), ".a + 1", input, "--cache", cache)
	require.Error(t, err)

	out, err := runCommand(t, NewHistoryCommand(testOptions("text")), "--cache", cache)
	require.NoError(t, err)

	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "miss")
	assert.Contains(t, out, "EVALUATION_FAILURE")
	assert.Contains(t, out, "2 runs, 0 cache hits, 1 failures, 1 cached results")
}

func TestHistoryLimit(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.json", `{"a":1}`)
	cache := filepath.Join(dir, "cache.db")

	for _, program := range []string{".a", ".a + 1", ".a + 2"} {
		_, err := runCommand(t, NewQueryCommand(testOptions("text")), program, input, "--cache", cache)
		require.NoError(t, err)
	}

	out, err := runCommand(t, NewHistoryCommand(testOptions("text")), "--cache", cache, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, ".a + 2")
	assert.NotContains(t, out, ".a + 1")
	assert.Contains(t, out, "1 runs, 0 cache hits, 0 failures, 3 cached results")
}
