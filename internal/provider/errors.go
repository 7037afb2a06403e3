package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no component has the requested name.
	ErrNotFound = errors.New("component not found")

	// ErrAlreadyRegistered is returned when a component name is taken.
	ErrAlreadyRegistered = errors.New("component already registered")

	// ErrInvalidArguments is wrapped when arguments or configuration do not
	// match the declared schema.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ComponentKind distinguishes functions from data sources.
type ComponentKind string

const (
	KindFunction   ComponentKind = "function"
	KindDataSource ComponentKind = "data_source"
)

// Error reports a failed component call. Message is shown to callers as-is;
// Cause keeps the underlying error (a query.ExecutionError, a schema
// mismatch wrapping ErrInvalidArguments, ...).
type Error struct {
	Kind      ComponentKind
	Component string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind ComponentKind, name string, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:      kind,
		Component: name,
		Message:   fmt.Sprintf(format, args...),
		Cause:     cause,
	}
}

func invalidArguments(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArguments, fmt.Sprintf(format, args...))
}
