package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/jqcty/internal/provider"
)

// ComponentInfo describes one registered component.
type ComponentInfo struct {
	Kind        provider.ComponentKind `json:"kind"`
	Name        string                 `json:"name"`
	Signature   string                 `json:"signature"`
	Description string                 `json:"description,omitempty"`
}

// NewComponentsCommand creates the components command.
func NewComponentsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "components",
		Short:         "List registered functions and data sources",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listComponents(rootOpts, cmd)
		},
	}
}

func listComponents(opts *RootOptions, cmd *cobra.Command) error {
	if err := opts.resolve(cmd); err != nil {
		return err
	}
	f := opts.formatter(cmd)

	proc, err := opts.processor()
	if err != nil {
		return err
	}
	reg, err := opts.registry(proc)
	if err != nil {
		return err
	}

	infos := describeComponents(reg)
	if opts.Format == "json" {
		return f.Success(infos)
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSIGNATURE")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\n", info.Kind, info.Signature)
	}
	return tw.Flush()
}

// describeComponents lists functions then data sources, each sorted by name.
func describeComponents(reg *provider.Registry) []ComponentInfo {
	var infos []ComponentInfo
	for _, fn := range reg.Functions() {
		infos = append(infos, ComponentInfo{
			Kind:        provider.KindFunction,
			Name:        fn.Name,
			Signature:   fn.String(),
			Description: fn.Description,
		})
	}
	for _, ds := range reg.DataSources() {
		infos = append(infos, ComponentInfo{
			Kind:        provider.KindDataSource,
			Name:        ds.Name,
			Signature:   dataSourceSignature(ds),
			Description: ds.Description,
		})
	}
	return infos
}

// dataSourceSignature renders e.g. "jq{json_input string, query string} -> {result string}".
func dataSourceSignature(ds *provider.DataSource) string {
	var config, computed []string
	for _, a := range ds.Schema.Attributes {
		field := a.Name + " " + a.Type.String()
		if a.Computed {
			computed = append(computed, field)
		} else {
			config = append(config, field)
		}
	}
	return fmt.Sprintf("%s{%s} -> {%s}", ds.Name, strings.Join(config, ", "), strings.Join(computed, ", "))
}
