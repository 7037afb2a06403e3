package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/source"
)

// Result channels.
const (
	ChannelText   = "text"
	ChannelNative = "native"
	ChannelTyped  = "typed"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Language selects the query language. Defaults to the processor's.
	Language string `yaml:"language,omitempty"`

	// Input is the inline input document. Mapping order is kept.
	Input yaml.Node `yaml:"input,omitempty"`

	// InputFile names a JSON, YAML or CUE input document, relative to the
	// scenario file. Mutually exclusive with Input.
	InputFile string `yaml:"input_file,omitempty"`

	// Steps run in order against the same input.
	Steps []Step `yaml:"steps"`

	// dir is the directory the scenario was loaded from.
	dir string
}

// Step runs one program and checks its outcome.
type Step struct {
	// Program is the query text.
	Program string `yaml:"program"`

	// Channel selects how the result is delivered. Defaults to text.
	Channel string `yaml:"channel,omitempty"`

	// Expect validates the outcome. A nil Expect only requires success.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Value is the expected result as inline YAML.
	Value *yaml.Node `yaml:"value,omitempty"`

	// Text is the exact expected canonical JSON text.
	Text *string `yaml:"text,omitempty"`

	// Type is the expected dynamic type, e.g. "list(string)".
	Type string `yaml:"type,omitempty"`

	// Error is the expected error kind, e.g. "EVALUATION_FAILURE".
	Error string `yaml:"error,omitempty"`

	// ErrorContains is a substring of the expected error message.
	ErrorContains string `yaml:"error_contains,omitempty"`

	// Check is an expr-lang boolean over result, text and type.
	Check string `yaml:"check,omitempty"`
}

// expectsError reports whether the step should fail.
func (e *Expect) expectsError() bool {
	return e != nil && (e.Error != "" || e.ErrorContains != "")
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.dir = filepath.Dir(path)

	if scenario.InputFile != "" {
		if _, err := os.Stat(scenario.inputPath()); os.IsNotExist(err) {
			return nil, &InputNotFoundError{
				Scenario:     scenario.Name,
				InputFile:    scenario.InputFile,
				ResolvedPath: scenario.inputPath(),
			}
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. A relative input_file resolves
// against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	for i := range scenario.Steps {
		if scenario.Steps[i].Channel == "" {
			scenario.Steps[i].Channel = ChannelText
		}
	}

	return &scenario, nil
}

// ResolveInput returns the scenario's input document: the inline input, the
// input file, or null when neither is given.
func (s *Scenario) ResolveInput() (native.Value, error) {
	if s.InputFile != "" {
		path := s.inputPath()
		return source.ReadFile(path, source.FormatFromPath(path))
	}
	if s.Input.Kind == 0 {
		return native.Null{}, nil
	}
	return source.FromYAMLNode(&s.Input)
}

func (s *Scenario) inputPath() string {
	if filepath.IsAbs(s.InputFile) || s.dir == "" {
		return s.InputFile
	}
	return filepath.Join(s.dir, s.InputFile)
}

// InputNotFoundError is returned when a scenario's input_file doesn't exist.
type InputNotFoundError struct {
	Scenario     string
	InputFile    string
	ResolvedPath string
}

// Error implements the error interface.
func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf(
		"scenario %q references input file %q which does not exist (resolved to: %s)",
		e.Scenario,
		e.InputFile,
		e.ResolvedPath,
	)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.InputFile != "" && s.Input.Kind != 0 {
		return fmt.Errorf("input and input_file are mutually exclusive")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Program == "" {
			return fmt.Errorf("steps[%d]: program is required", i)
		}
		switch step.Channel {
		case "", ChannelText, ChannelNative, ChannelTyped:
		default:
			return fmt.Errorf("steps[%d]: unknown channel %q", i, step.Channel)
		}
		if err := validateExpect(i, step.Expect); err != nil {
			return err
		}
	}

	return nil
}

// validateExpect rejects expectations that can never hold together.
func validateExpect(index int, e *Expect) error {
	if e == nil {
		return nil
	}
	if e.expectsError() && (e.Value != nil || e.Text != nil || e.Type != "" || e.Check != "") {
		return fmt.Errorf("steps[%d].expect: error expectations cannot be combined with value, text, type or check", index)
	}
	return nil
}
