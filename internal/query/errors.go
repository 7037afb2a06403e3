package query

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes execution errors.
type ErrorKind string

const (
	// MalformedInput indicates the input was not valid JSON or could not be
	// encoded as JSON.
	MalformedInput ErrorKind = "MALFORMED_INPUT"

	// InvalidProgram indicates an empty program or an unknown query language.
	InvalidProgram ErrorKind = "INVALID_PROGRAM"

	// EvaluationFailure indicates the evaluator rejected or failed to run the
	// program, including syntax errors and cancellation.
	EvaluationFailure ErrorKind = "EVALUATION_FAILURE"
)

// ExecutionError is the single error type surfaced by a Processor.
//
// Message carries the upstream cause's message verbatim; Cause keeps the
// original error for errors.Is/As.
type ExecutionError struct {
	// Kind identifies which part of the call was at fault.
	Kind ErrorKind

	// Language is the query language of the failed call.
	Language string

	// Message is the human-readable description.
	Message string

	// Cause is the wrapped upstream error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Kind == EvaluationFailure {
		lang := e.Language
		if lang == "" {
			lang = "jq"
		}
		return fmt.Sprintf("%s query failed: %s", lang, e.Message)
	}
	return e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// IsMalformedInput reports whether err is a MalformedInput execution error.
// Uses errors.As to handle wrapped errors.
func IsMalformedInput(err error) bool {
	return hasKind(err, MalformedInput)
}

// IsInvalidProgram reports whether err is an InvalidProgram execution error.
func IsInvalidProgram(err error) bool {
	return hasKind(err, InvalidProgram)
}

// IsEvaluationFailure reports whether err is an EvaluationFailure execution
// error.
func IsEvaluationFailure(err error) bool {
	return hasKind(err, EvaluationFailure)
}

// KindOf returns the kind of the execution error in err's chain, or "" when
// there is none.
func KindOf(err error) ErrorKind {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

func hasKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func newMalformedInput(language string, cause error, format string, args ...any) *ExecutionError {
	return &ExecutionError{
		Kind:     MalformedInput,
		Language: language,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
	}
}

// EmptyProgramMessage is reported when the program is empty or not a string.
const EmptyProgramMessage = "The 'query' argument must be a non-empty string."

// NewInvalidProgram returns an InvalidProgram error for language.
func NewInvalidProgram(language, message string) *ExecutionError {
	return &ExecutionError{
		Kind:     InvalidProgram,
		Language: language,
		Message:  message,
	}
}

func newEvaluationFailure(language string, cause error) *ExecutionError {
	return &ExecutionError{
		Kind:     EvaluationFailure,
		Language: language,
		Message:  cause.Error(),
		Cause:    cause,
	}
}
