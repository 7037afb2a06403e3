package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Args []string
}

// CallResult is the JSON payload of a successful call.
type CallResult struct {
	Function string          `json:"function"`
	Type     string          `json:"type"`
	Result   json.RawMessage `json:"result"`
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <function>",
		Short: "Call a registered function",
		Long: `Call a registered function with positional arguments.

Each --arg is one argument, given as JSON. Run "jqcty components" to list
functions and their parameters.

Examples:
  jqcty call jq --arg '{"users":[{"name":"Alice"}]}' --arg '".users[].name"'
  jqcty call jq_cty --arg '{"a":[1,2]}' --arg '".a"' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return callFunction(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "function argument as JSON (repeatable)")

	return cmd
}

func callFunction(opts *CallOptions, name string, cmd *cobra.Command) error {
	if err := opts.resolve(cmd); err != nil {
		return err
	}
	f := opts.formatter(cmd)

	args := make([]native.Value, len(opts.Args))
	for i, raw := range opts.Args {
		v, err := native.DecodeString(raw)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --arg %d", i+1), err)
		}
		args[i] = v
	}

	proc, err := opts.processor()
	if err != nil {
		return err
	}
	reg, err := opts.registry(proc)
	if err != nil {
		return err
	}

	result, err := reg.CallFunction(cmd.Context(), name, args)
	if err != nil {
		return f.Failure(ExitFailure, err)
	}
	return writeTyped(f, name, result, func(typ string, text json.RawMessage) any {
		return CallResult{Function: name, Type: typ, Result: text}
	})
}

// writeTyped prints a component result: the payload built by wrap in JSON
// mode, otherwise the value as JSON with strings printed raw.
func writeTyped(f *OutputFormatter, name string, v dynamic.Value, wrap func(typ string, text json.RawMessage) any) error {
	text, err := native.Encode(dynamic.ToNative(v))
	if err != nil {
		return f.Failure(ExitFailure, fmt.Errorf("%s: %w", name, err))
	}
	if f.Format == "json" {
		return f.Success(wrap(v.Type().String(), text))
	}
	if s, ok := v.AsString(); ok {
		return f.Success(s)
	}
	return f.Success(string(text))
}
