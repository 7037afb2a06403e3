package provider

import (
	"context"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/query"
)

// Component names registered by NewDefaultRegistry.
const (
	NameJQ    = "jq"
	NameJQCty = "jq_cty"
)

func jqParameters(proc *query.Processor) []Parameter {
	return []Parameter{
		{Name: "input_data", Description: "The data structure to process.", Type: dynamic.Dynamic},
		{Name: "query", Description: "The jq query string to apply.", Type: dynamic.String, Check: queryCheck(proc)},
	}
}

// queryCheck rejects a query of any kind other than string as an invalid
// program. Null passes and is rejected as empty by the processor.
func queryCheck(proc *query.Processor) func(native.Value) error {
	return func(v native.Value) error {
		switch v.(type) {
		case nil, native.Null, native.String:
			return nil
		default:
			return query.NewInvalidProgram(proc.Language(), query.EmptyProgramMessage)
		}
	}
}

// NewDefaultRegistry returns a registry with the jq and jq_cty functions and
// data sources, all executing through proc.
func NewDefaultRegistry(proc *query.Processor) (*Registry, error) {
	r := NewRegistry()

	functions := []*Function{
		{
			Name:        NameJQ,
			Summary:     "Processes a data structure with a jq query.",
			Description: "Applies a jq query to the given input data. Returns a valid JSON string.",
			Parameters:  jqParameters(proc),
			Return:      dynamic.String,
			Impl:        jqTextFunction(proc),
		},
		{
			Name:        NameJQCty,
			Summary:     "Processes a data structure and returns a typed value.",
			Description: "Applies a jq query to the given input data. Returns the result as a typed value (list, object, etc.) directly.",
			Parameters:  jqParameters(proc),
			Return:      dynamic.Dynamic,
			Impl:        jqTypedFunction(proc),
		},
	}
	for _, f := range functions {
		if err := r.RegisterFunction(f); err != nil {
			return nil, err
		}
	}

	dataSources := []*DataSource{
		{
			Name:        NameJQ,
			Description: "Applies a jq query to a JSON document and exposes the result as JSON text.",
			Schema:      jqSchema(dynamic.String),
			Read:        jqTextDataSource(proc),
		},
		{
			Name:        NameJQCty,
			Description: "Applies a jq query to a JSON document and exposes the result as a typed value.",
			Schema:      jqSchema(dynamic.Dynamic),
			Read:        jqTypedDataSource(proc),
		},
	}
	for _, d := range dataSources {
		if err := r.RegisterDataSource(d); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func jqSchema(result dynamic.Type) Schema {
	return Schema{Attributes: []Attribute{
		{Name: "json_input", Description: "The JSON document to query.", Type: dynamic.String, Required: true},
		{Name: "query", Description: "The jq query string to apply.", Type: dynamic.String, Required: true},
		{Name: "result", Description: "The query result.", Type: result, Computed: true},
	}}
}

func jqTextFunction(proc *query.Processor) FunctionImpl {
	return func(ctx context.Context, args []dynamic.Value) (dynamic.Value, error) {
		program, _ := args[1].AsString()
		text, err := proc.ExecuteText(ctx, program, dynamic.ToNative(args[0]))
		if err != nil {
			return dynamic.Value{}, err
		}
		return dynamic.StringVal(string(text)), nil
	}
}

func jqTypedFunction(proc *query.Processor) FunctionImpl {
	return func(ctx context.Context, args []dynamic.Value) (dynamic.Value, error) {
		program, _ := args[1].AsString()
		return proc.ExecuteDynamic(ctx, program, dynamic.ToNative(args[0]))
	}
}

func jqTextDataSource(proc *query.Processor) ReadFunc {
	return func(ctx context.Context, config dynamic.Value) (dynamic.Value, error) {
		return readJQ(ctx, proc, NameJQ, config, func(ctx context.Context, program string, input native.Value) (dynamic.Value, error) {
			text, err := proc.ExecuteText(ctx, program, input)
			if err != nil {
				return dynamic.Value{}, err
			}
			return dynamic.StringVal(string(text)), nil
		})
	}
}

func jqTypedDataSource(proc *query.Processor) ReadFunc {
	return func(ctx context.Context, config dynamic.Value) (dynamic.Value, error) {
		return readJQ(ctx, proc, NameJQCty, config, proc.ExecuteDynamic)
	}
}

func readJQ(
	ctx context.Context,
	proc *query.Processor,
	name string,
	config dynamic.Value,
	execute func(context.Context, string, native.Value) (dynamic.Value, error),
) (dynamic.Value, error) {
	jsonInput := stringAttribute(config, "json_input")
	program := stringAttribute(config, "query")

	input, err := proc.DecodeInput(jsonInput)
	if err != nil {
		return dynamic.Value{}, newError(KindDataSource, name, err, "%s", err.Error())
	}

	result, err := execute(ctx, program, input)
	if err != nil {
		return dynamic.Value{}, newError(KindDataSource, name, err, "Error processing jq query: %v", err)
	}

	return dynamic.ObjectVal(
		dynamic.AttrValue{Name: "json_input", Value: dynamic.StringVal(jsonInput)},
		dynamic.AttrValue{Name: "query", Value: dynamic.StringVal(program)},
		dynamic.AttrValue{Name: "result", Value: result},
	), nil
}

func stringAttribute(v dynamic.Value, name string) string {
	attr, _ := v.Attribute(name)
	s, _ := attr.AsString()
	return s
}
