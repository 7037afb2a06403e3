package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/harness"
	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/query"
	"github.com/roach88/jqcty/internal/source"
	"github.com/roach88/jqcty/internal/store"
)

// QueryOptions holds flags for the query command. Values are layered into
// the resolved config; read them from RootOptions.Config.
type QueryOptions struct {
	*RootOptions
	Channel     string
	Language    string
	InputFormat string
	CachePath   string
	Concurrency int
}

// QueryResult is the outcome for one input.
type QueryResult struct {
	Input  string          `json:"input"`
	Result json.RawMessage `json:"result,omitempty"`
	Kind   string          `json:"kind,omitempty"` // native channel
	Type   string          `json:"type,omitempty"` // typed channel
	Error  *CLIError       `json:"error,omitempty"`

	readFailed bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <program> [input...]",
		Short: "Run a query over input documents",
		Long: `Run a jq (or JSONPath) program over each input document.

Inputs are JSON, YAML or CUE files; the format follows the extension unless
--input-format is set. With no inputs, or with "-", standard input is read
as JSON. Inputs are evaluated concurrently and printed in order.

Channels:
  text    - the result as JSON text (default)
  native  - the result value with its kind
  typed   - the result as a typed value with a derived type

A program emitting exactly one value yields that value; zero or several
values yield a list.

Exit codes:
  0 - All inputs succeeded
  1 - One or more queries failed
  2 - Command error (unreadable input, invalid flags, etc.)

Examples:
  jqcty query '.users[].name' users.json
  jqcty query '.items | length' a.yaml b.yaml --channel typed
  echo '{"a":1}' | jqcty query '.a'
  jqcty query '$.store.book[*].author' store.json --language jsonpath
  jqcty query '.total' cart.json --cache results.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "text", "result channel (text|native|typed)")
	cmd.Flags().StringVar(&opts.Language, "language", query.LanguageJQ, "query language (jq|jsonpath)")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "auto", "input format (auto|json|yaml|cue)")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "SQLite result cache")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "inputs evaluated in parallel")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, program string, inputs []string, cmd *cobra.Command) error {
	if err := opts.resolve(cmd); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	f := opts.formatter(cmd)

	format, err := source.ParseFormat(cfg.InputFormat)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid input format", err)
	}

	if len(inputs) == 0 {
		inputs = []string{source.Stdin}
	}
	stdinCount := 0
	for _, in := range inputs {
		if in == source.Stdin {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return NewExitError(ExitCommandError, "standard input can only be read once")
	}

	proc, err := opts.processor()
	if err != nil {
		return err
	}

	runner := &queryRunner{proc: proc, channel: cfg.Channel, format: format, stdin: cmd.InOrStdin()}
	if cfg.CachePath != "" {
		s, err := store.Open(cfg.CachePath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open cache", err)
		}
		defer s.Close()

		memo, err := store.NewMemo(ctx, s, proc, store.WithMemoLogger(opts.Logger))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open cache", err)
		}
		runner.memo = memo
	}

	results := make([]QueryResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(cfg.Concurrency)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = runner.run(ctx, program, input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "query interrupted", err)
	}

	code := ExitSuccess
	for _, r := range results {
		switch {
		case r.readFailed:
			code = ExitCommandError
		case r.Error != nil && code == ExitSuccess:
			code = ExitFailure
		}
	}
	opts.Logger.Debug("query finished",
		zap.String("program", program),
		zap.Int("inputs", len(inputs)),
		zap.Int("exit_code", code),
	)

	if opts.Format == "json" {
		status := "ok"
		if code != ExitSuccess {
			status = "error"
		}
		if err := f.writeJSON(CLIResponse{Status: status, Data: results}); err != nil {
			return err
		}
	} else {
		writeQueryText(f, results, len(inputs) > 1)
	}

	if code != ExitSuccess {
		return &ExitError{Code: code, Message: "query failed", Reported: true}
	}
	return nil
}

// writeQueryText prints one line per input. Lines are prefixed by the input
// name when there are several inputs.
func writeQueryText(f *OutputFormatter, results []QueryResult, prefixed bool) {
	for _, r := range results {
		prefix := ""
		if prefixed {
			prefix = r.Input + ": "
		}
		if r.Error != nil {
			_ = f.Error(r.Error.Code, prefix+r.Error.Message, nil)
			continue
		}
		switch {
		case r.Type != "":
			fmt.Fprintf(f.Writer, "%s%s %s\n", prefix, r.Type, r.Result)
		default:
			fmt.Fprintf(f.Writer, "%s%s\n", prefix, r.Result)
		}
	}
}

// queryRunner evaluates one program over inputs on a single channel,
// through the memo when a cache is configured.
type queryRunner struct {
	proc    *query.Processor
	memo    *store.Memo
	channel string
	format  source.Format
	stdin   io.Reader
}

func (r *queryRunner) run(ctx context.Context, program, input string) QueryResult {
	res := QueryResult{Input: input}

	doc, err := r.read(input)
	if err != nil {
		res.readFailed = true
		res.Error = &CLIError{Code: CodeInputError, Message: err.Error()}
		return res
	}

	switch r.channel {
	case harness.ChannelText:
		text, err := r.text(ctx, program, doc)
		if err != nil {
			res.Error = newCLIError(err)
			return res
		}
		res.Result = text
	case harness.ChannelNative:
		v, err := r.value(ctx, program, doc)
		if err == nil {
			res.Result, err = native.Encode(v)
		}
		if err != nil {
			res.Error = newCLIError(err)
			return res
		}
		res.Kind = v.Kind().String()
	case harness.ChannelTyped:
		v, err := r.value(ctx, program, doc)
		if err != nil {
			res.Error = newCLIError(err)
			return res
		}
		typed := dynamic.FromNative(v)
		text, err := native.Encode(dynamic.ToNative(typed))
		if err != nil {
			res.Error = newCLIError(err)
			return res
		}
		res.Result = text
		res.Type = typed.Type().String()
	default:
		res.Error = &CLIError{Code: CodeInvalidArguments, Message: fmt.Sprintf("unknown channel %q", r.channel)}
	}
	return res
}

func (r *queryRunner) read(input string) (native.Value, error) {
	if input == source.Stdin {
		return source.ReadReader(r.stdin, r.format)
	}
	return source.ReadFile(input, r.format)
}

func (r *queryRunner) text(ctx context.Context, program string, doc native.Value) ([]byte, error) {
	if r.memo != nil {
		return r.memo.ExecuteText(ctx, program, doc)
	}
	return r.proc.ExecuteText(ctx, program, doc)
}

// value executes on the native channel. Cached results are decoded from
// their stored text.
func (r *queryRunner) value(ctx context.Context, program string, doc native.Value) (native.Value, error) {
	if r.memo == nil {
		return r.proc.Execute(ctx, program, doc)
	}
	text, err := r.memo.ExecuteText(ctx, program, doc)
	if err != nil {
		return nil, err
	}
	return native.Decode(text)
}

func newCLIError(err error) *CLIError {
	return &CLIError{Code: ErrorCode(err), Message: strings.TrimSpace(err.Error())}
}
