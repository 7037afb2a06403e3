package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/jqcty/internal/config"
	"github.com/roach88/jqcty/internal/provider"
	"github.com/roach88/jqcty/internal/query"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config and Logger are resolved once per invocation. Tests may set
	// Logger up front to silence output.
	Config *config.Config
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the jqcty CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "jqcty",
		Short: "jqcty - jq queries with typed results",
		Long: `Run jq and JSONPath programs over JSON, YAML and CUE documents.

Results are delivered as JSON text, as native values, or as typed values
whose shape is derived from the result itself.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./"+config.DefaultFile+" when present)")

	// Add subcommands
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewReadCommand(opts))
	cmd.AddCommand(NewComponentsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// resolve validates the format flag, loads configuration layered under the
// flags of cmd and builds the logger. Later calls are no-ops.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	if o.Config == nil {
		cfg, err := config.Load(o.ConfigFile, cmd.Flags())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load configuration", err)
		}
		o.Config = cfg
	}

	if o.Logger == nil {
		logger, err := newLogger(o.Config.LogLevel, o.Verbose)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to initialize logger", err)
		}
		o.Logger = logger
	}
	return nil
}

// processor builds a query processor for the configured language.
func (o *RootOptions) processor() (*query.Processor, error) {
	proc, err := query.New(query.WithLogger(o.Logger)).ForLanguage(o.Config.Language)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid language", err)
	}
	return proc, nil
}

// registry builds the default component registry over proc.
func (o *RootOptions) registry(proc *query.Processor) (*provider.Registry, error) {
	reg, err := provider.NewDefaultRegistry(proc)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build registry", err)
	}
	return reg, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// newLogger builds a production logger writing to stderr. Verbose forces
// debug level.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
