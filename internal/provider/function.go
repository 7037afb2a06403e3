package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
)

// FunctionImpl receives arguments already conformed to the declared
// parameter types, in order.
type FunctionImpl func(ctx context.Context, args []dynamic.Value) (dynamic.Value, error)

// Function is a named component called with positional arguments.
type Function struct {
	Name        string
	Summary     string
	Description string
	Parameters  []Parameter
	Return      dynamic.Type
	Impl        FunctionImpl
}

// Validate checks that f can be registered.
func (f *Function) Validate() error {
	if f.Name == "" {
		return errors.New("function name is required")
	}
	if f.Impl == nil {
		return errors.New("function implementation is required")
	}
	return nil
}

// Call checks args against the parameters, runs the implementation and
// checks the result against the return type.
//
// Errors from the implementation that are not already *Error are wrapped in
// one carrying the same message.
func (f *Function) Call(ctx context.Context, args []native.Value) (dynamic.Value, error) {
	if len(args) != len(f.Parameters) {
		err := invalidArguments("expected %d arguments, got %d", len(f.Parameters), len(args))
		return dynamic.Value{}, newError(KindFunction, f.Name, err, "%s: %v", f.Name, err)
	}

	typed := make([]dynamic.Value, len(args))
	for i, p := range f.Parameters {
		if p.Check != nil {
			if err := p.Check(args[i]); err != nil {
				return dynamic.Value{}, newError(KindFunction, f.Name, err, "%s", err.Error())
			}
		}
		v, err := dynamic.Conform(args[i], p.Type)
		if err != nil {
			wrapped := invalidArguments("argument %q: %v", p.Name, err)
			return dynamic.Value{}, newError(KindFunction, f.Name, wrapped, "%s: %v", f.Name, wrapped)
		}
		typed[i] = v
	}

	result, err := f.Impl(ctx, typed)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			return dynamic.Value{}, err
		}
		return dynamic.Value{}, newError(KindFunction, f.Name, err, "%s", err.Error())
	}

	if f.Return.Kind() != dynamic.KindDynamic {
		result, err = dynamic.Conform(dynamic.ToNative(result), f.Return)
		if err != nil {
			return dynamic.Value{}, newError(KindFunction, f.Name, err, "%s: result: %v", f.Name, err)
		}
	}
	return result, nil
}

// String renders the signature of f, e.g. "jq(input_data dynamic, query string) string".
func (f *Function) String() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Name + " " + p.Type.String()
	}
	return f.Name + "(" + strings.Join(params, ", ") + ") " + f.Return.String()
}
