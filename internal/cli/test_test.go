package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jqcty/internal/harness"
)

const passingScenario = `name: passing
description: names of all users
input:
  users:
    - name: Alice
    - name: Bob
steps:
  - program: .users[].name
    expect:
      value: [Alice, Bob]
  - program: .users
    channel: typed
    expect:
      type: list(object({name=string}))
`

const failingScenario = `name: failing
description: expects the wrong count
input:
  items: [1, 2, 3]
steps:
  - program: .items | length
    expect:
      value: 4
`

func TestTestCommandMissingArgs(t *testing.T) {
	cmd := NewTestCommand(testOptions("text"))
	_, err := runCommand(t, cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	cmd := NewTestCommand(testOptions("text"))
	_, err := runCommand(t, cmd, "/nonexistent/scenarios")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	dir := t.TempDir()

	t.Run("text", func(t *testing.T) {
		cmd := NewTestCommand(testOptions("text"))
		out, err := runCommand(t, cmd, dir)

		require.NoError(t, err)
		assert.Contains(t, out, "No scenarios found.")
	})

	t.Run("json", func(t *testing.T) {
		cmd := NewTestCommand(testOptions("json"))
		out, err := runCommand(t, cmd, dir)
		require.NoError(t, err)

		var resp struct {
			Status string              `json:"status"`
			Data   harness.SuiteResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 0, resp.Data.Total)
	})
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "passing.yaml", passingScenario)

	cmd := NewTestCommand(testOptions("text"))
	out, err := runCommand(t, cmd, dir)

	require.NoError(t, err)
	assert.Contains(t, out, "passing")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "passing.yaml", passingScenario)
	writeFile(t, dir, "failing.yaml", failingScenario)

	cmd := NewTestCommand(testOptions("text"))
	out, err := runCommand(t, cmd, dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "failing")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
	assert.NotContains(t, out, "All scenarios passed")
}

func TestTestCommandJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "passing.yaml", passingScenario)
	writeFile(t, dir, "failing.yaml", failingScenario)

	cmd := NewTestCommand(testOptions("json"))
	out, err := runCommand(t, cmd, dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string              `json:"status"`
		Data   harness.SuiteResult `json:"data"`
		Error  *CLIError           `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Total)

	// Files are walked in lexical order.
	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "failing", resp.Data.Scenarios[0].Name)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
	assert.Equal(t, "passing", resp.Data.Scenarios[1].Name)
	assert.Equal(t, "missing", resp.Data.Scenarios[1].Golden)
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "passing.yaml", passingScenario)
	writeFile(t, dir, "failing.yaml", failingScenario)

	cmd := NewTestCommand(testOptions("text"))
	out, err := runCommand(t, cmd, dir, "--filter", "pass*")

	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandUpdateGolden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "passing.yaml", passingScenario)

	cmd := NewTestCommand(testOptions("text"))
	out, err := runCommand(t, cmd, dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	golden := filepath.Join(dir, "golden", "passing.golden")
	_, err = os.Stat(golden)
	require.NoError(t, err)

	// A second run compares against the written file.
	cmd = NewTestCommand(testOptions("json"))
	out, err = runCommand(t, cmd, dir)
	require.NoError(t, err)

	var resp struct {
		Data harness.SuiteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)
}
