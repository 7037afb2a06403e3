package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/jqcty/internal/config"
	"github.com/roach88/jqcty/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string
	Timeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the component registry over HTTP",
		Long: `Serve the registered functions, data sources and the query processor
over HTTP until interrupted.

Routes:
  GET  /healthz
  GET  /v1/components
  POST /v1/functions/{name}      {"arguments": [...]}
  POST /v1/data-sources/{name}   {"config": {...}}
  POST /v1/query                 {"program", "input", "language", "channel"}

Examples:
  jqcty serve
  jqcty serve --addr :9090 --timeout 5s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", config.DefaultServerAddr, "listen address")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", config.DefaultServerTimeout, "per-request timeout")

	return cmd
}

func serve(opts *ServeOptions, cmd *cobra.Command) error {
	if err := opts.resolve(cmd); err != nil {
		return err
	}

	proc, err := opts.processor()
	if err != nil {
		return err
	}
	reg, err := opts.registry(proc)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Registry:  reg,
		Processor: proc,
		Logger:    opts.Logger,
		Timeout:   opts.Config.Server.Timeout,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create server", err)
	}

	opts.Logger.Info("serving", zap.String("addr", opts.Config.Server.Addr), zap.String("language", proc.Language()))
	if err := srv.Serve(cmd.Context(), opts.Config.Server.Addr); err != nil {
		return WrapExitError(ExitFailure, "server stopped", err)
	}
	return nil
}
