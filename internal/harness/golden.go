package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/query"
)

// Snapshot renders the trace of a scenario run as canonical JSON.
// Empty fields are omitted so goldens stay small.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	trace := make(native.List, len(result.Trace))
	for i, event := range result.Trace {
		entries := []native.Entry{
			native.E("step", native.Int(int64(event.Step))),
			native.E("seq", native.Int(event.Seq)),
			native.E("program", native.String(event.Program)),
			native.E("channel", native.String(event.Channel)),
		}
		if event.Text != "" {
			entries = append(entries, native.E("text", native.String(event.Text)))
		}
		if event.Result != nil {
			entries = append(entries, native.E("result", event.Result))
		}
		if event.Type != "" {
			entries = append(entries, native.E("type", native.String(event.Type)))
		}
		if event.ErrorKind != "" {
			entries = append(entries, native.E("error_kind", native.String(event.ErrorKind)))
		}
		if event.Error != "" {
			entries = append(entries, native.E("error", native.String(event.Error)))
		}
		trace[i] = native.NewMap(entries...)
	}

	snapshot := []native.Entry{
		native.E("scenario_name", native.String(scenario.Name)),
		native.E("trace", trace),
	}
	if scenario.Language != "" {
		snapshot = append(snapshot, native.E("language", native.String(scenario.Language)))
	}

	data, err := native.MarshalCanonical(native.NewMap(snapshot...))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trace: %w", err)
	}
	return data, nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the run result so callers can also check Pass.
func RunWithGolden(t *testing.T, proc *query.Processor, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), proc, scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}

// GoldenPath returns the path to the golden file for a scenario file:
// golden/<base>.golden next to it.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the current trace as the scenario file's golden file.
func UpdateGolden(scenarioFile string, scenario *Scenario, result *Result) error {
	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	goldenPath := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the trace matches the scenario file's golden
// file. It returns os.ErrNotExist (wrapped) when there is no golden file.
func CompareGolden(scenarioFile string, scenario *Scenario, result *Result) (bool, error) {
	goldenData, err := os.ReadFile(GoldenPath(scenarioFile))
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}

	current, err := Snapshot(scenario, result)
	if err != nil {
		return false, err
	}

	return bytes.Equal(bytes.TrimRight(goldenData, "\n"), current), nil
}
