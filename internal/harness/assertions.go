package harness

import (
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/expr-lang/expr"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/source"
)

// Assertion types reported in AssertionError.Type.
const (
	AssertSuccess       = "success"
	AssertValue         = "value"
	AssertText          = "text"
	AssertType          = "type"
	AssertError         = "error"
	AssertErrorContains = "error_contains"
	AssertCheck         = "check"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Step     int    // Step index
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Diff     string // Merge patch from expected to actual, when available
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "steps[%d]: %s assertion failed\n", e.Step, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	if e.Diff != "" {
		fmt.Fprintf(&buf, "\n  Diff (merge patch): %s", e.Diff)
	}

	return buf.String()
}

// outcome is what a step produced, in every representation an expectation
// may need.
type outcome struct {
	event  TraceEvent
	result native.Value
	text   string
	typ    string
}

// checkExpect evaluates a step's expectations against its outcome.
// Returns one error per failed expectation.
func checkExpect(step int, expect *Expect, out outcome) []error {
	var errs []error

	if out.event.Failed() {
		if !expect.expectsError() {
			return []error{&AssertionError{
				Step:     step,
				Type:     AssertSuccess,
				Expected: "success",
				Actual:   out.event.Error,
			}}
		}
		if expect.Error != "" && expect.Error != out.event.ErrorKind {
			errs = append(errs, &AssertionError{
				Step:     step,
				Type:     AssertError,
				Expected: expect.Error,
				Actual:   fmt.Sprintf("%s (%s)", out.event.ErrorKind, out.event.Error),
			})
		}
		if expect.ErrorContains != "" && !strings.Contains(out.event.Error, expect.ErrorContains) {
			errs = append(errs, &AssertionError{
				Step:     step,
				Type:     AssertErrorContains,
				Expected: fmt.Sprintf("error containing %q", expect.ErrorContains),
				Actual:   out.event.Error,
			})
		}
		return errs
	}

	if expect == nil {
		return nil
	}

	if expect.expectsError() {
		return []error{&AssertionError{
			Step:     step,
			Type:     AssertError,
			Expected: describeExpectedError(expect),
			Actual:   "success: " + out.text,
		}}
	}

	if expect.Value != nil {
		if err := assertValue(step, expect, out); err != nil {
			errs = append(errs, err)
		}
	}

	if expect.Text != nil && *expect.Text != out.text {
		errs = append(errs, &AssertionError{
			Step:     step,
			Type:     AssertText,
			Expected: *expect.Text,
			Actual:   out.text,
		})
	}

	if expect.Type != "" && expect.Type != out.typ {
		errs = append(errs, &AssertionError{
			Step:     step,
			Type:     AssertType,
			Expected: expect.Type,
			Actual:   out.typ,
		})
	}

	if expect.Check != "" {
		if err := assertCheck(step, expect.Check, out); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func describeExpectedError(expect *Expect) string {
	switch {
	case expect.Error != "" && expect.ErrorContains != "":
		return fmt.Sprintf("%s error containing %q", expect.Error, expect.ErrorContains)
	case expect.Error != "":
		return expect.Error + " error"
	default:
		return fmt.Sprintf("error containing %q", expect.ErrorContains)
	}
}

// assertValue compares the expected YAML value with the result.
func assertValue(step int, expect *Expect, out outcome) error {
	want, err := source.FromYAMLNode(expect.Value)
	if err != nil {
		return fmt.Errorf("steps[%d].expect.value: %w", step, err)
	}
	wantJSON, err := native.Encode(want)
	if err != nil {
		return fmt.Errorf("steps[%d].expect.value: %w", step, err)
	}

	equal, err := canonicalEqual(want, out.result)
	if err != nil {
		return fmt.Errorf("steps[%d].expect.value: %w", step, err)
	}
	if equal {
		return nil
	}

	return &AssertionError{
		Step:     step,
		Type:     AssertValue,
		Expected: string(wantJSON),
		Actual:   out.text,
		Diff:     mergePatch(wantJSON, []byte(out.text)),
	}
}

// canonicalEqual compares two documents structurally: object key order is
// ignored and the number kind is kept, so 1 and 1.0 differ.
func canonicalEqual(a, b native.Value) (bool, error) {
	aJSON, err := native.MarshalCanonical(a)
	if err != nil {
		return false, err
	}
	bJSON, err := native.MarshalCanonical(b)
	if err != nil {
		return false, err
	}
	return string(aJSON) == string(bJSON), nil
}

// mergePatch renders the merge patch turning want into got, or "" when the
// two documents are not both objects or both arrays of objects.
func mergePatch(want, got []byte) string {
	patch, err := jsonpatch.CreateMergePatch(want, got)
	if err != nil {
		return ""
	}
	return string(patch)
}

// assertCheck evaluates an expr-lang boolean expression.
func assertCheck(step int, check string, out outcome) error {
	env := map[string]any{
		"result": native.ToAny(out.result),
		"text":   out.text,
		"type":   out.typ,
	}

	prg, err := expr.Compile(check, expr.Env(env), expr.AsBool())
	if err != nil {
		return fmt.Errorf("steps[%d].expect.check: %w", step, err)
	}

	res, err := expr.Run(prg, env)
	if err != nil {
		return &AssertionError{
			Step:     step,
			Type:     AssertCheck,
			Expected: check,
			Actual:   fmt.Sprintf("evaluation error: %v", err),
		}
	}

	if ok, _ := res.(bool); !ok {
		return &AssertionError{
			Step:     step,
			Type:     AssertCheck,
			Expected: check,
			Actual:   "false for result " + out.text,
		}
	}
	return nil
}

// typeOf returns the dynamic type string of a native result.
func typeOf(v native.Value) string {
	return dynamic.FromNative(v).Type().String()
}
