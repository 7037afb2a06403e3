package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/jqcty/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	CachePath string
	Limit     int
	Key       string
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Runs    []store.Run    `json:"runs"`
	Summary HistorySummary `json:"summary"`
}

// HistorySummary counts the listed runs.
type HistorySummary struct {
	Runs      int `json:"runs"`
	CacheHits int `json:"cache_hits"`
	Failures  int `json:"failures"`
	Results   int `json:"results"` // cached results in the store
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded query runs",
		Long: `List the runs recorded in a result cache, oldest first.

Examples:
  jqcty history --cache results.db
  jqcty history --cache results.db --limit 20
  jqcty history --cache results.db --key 3f2a... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "SQLite result cache")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the newest N runs (0 for all)")
	cmd.Flags().StringVar(&opts.Key, "key", "", "only runs for this result key")

	return cmd
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	if err := opts.resolve(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	path := opts.Config.CachePath
	if path == "" {
		return NewExitError(ExitCommandError, "no cache configured: pass --cache or set cache_path")
	}
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "cache not found", err)
	}

	s, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open cache", err)
	}
	defer s.Close()

	var runs []store.Run
	if opts.Key != "" {
		runs, err = s.ReadRunsForKey(ctx, opts.Key)
	} else {
		runs, err = s.ReadRuns(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	results, err := s.CountResults(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count results", err)
	}

	summary := HistorySummary{Runs: len(runs), Results: results}
	for _, r := range runs {
		if r.CacheHit {
			summary.CacheHits++
		}
		if r.Failed() {
			summary.Failures++
		}
	}

	if opts.Format == "json" {
		return f.Success(HistoryResult{Runs: runs, Summary: summary})
	}
	return outputHistoryText(f.Writer, runs, summary)
}

func outputHistoryText(w io.Writer, runs []store.Run, summary HistorySummary) error {
	if len(runs) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tLANGUAGE\tSTATUS\tPROGRAM")
		for _, r := range runs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Seq, r.Language, runStatus(r), r.Program)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	p := message.NewPrinter(language.English)
	_, err := p.Fprintf(w, "%d runs, %d cache hits, %d failures, %d cached results\n",
		summary.Runs, summary.CacheHits, summary.Failures, summary.Results)
	return err
}

func runStatus(r store.Run) string {
	switch {
	case r.Failed():
		return r.ErrorKind
	case r.CacheHit:
		return "hit"
	default:
		return "miss"
	}
}
