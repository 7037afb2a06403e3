package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/jqcty/internal/native"
)

// ReadResult is the JSON payload of a successful read.
type ReadResult struct {
	DataSource string          `json:"data_source"`
	Type       string          `json:"type"`
	State      json.RawMessage `json:"state"`
}

// NewReadCommand creates the read command.
func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <data-source> <config-json>",
		Short: "Read a registered data source",
		Long: `Read a registered data source and print its state.

The configuration is a JSON object holding the data source's configurable
attributes. The printed state adds the computed attributes.

Examples:
  jqcty read jq '{"json_input":"{\"a\":1}","query":".a"}'
  jqcty read jq_cty '{"json_input":"[1,2,3]","query":"map(.*2)"}' --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return readDataSource(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func readDataSource(opts *RootOptions, name, rawConfig string, cmd *cobra.Command) error {
	if err := opts.resolve(cmd); err != nil {
		return err
	}
	f := opts.formatter(cmd)

	cfg, err := native.DecodeString(rawConfig)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration JSON", err)
	}

	proc, err := opts.processor()
	if err != nil {
		return err
	}
	reg, err := opts.registry(proc)
	if err != nil {
		return err
	}

	state, err := reg.ReadDataSource(cmd.Context(), name, cfg)
	if err != nil {
		return f.Failure(ExitFailure, err)
	}
	return writeTyped(f, name, state, func(typ string, text json.RawMessage) any {
		return ReadResult{DataSource: name, Type: typ, State: text}
	})
}
