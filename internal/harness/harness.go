package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/query"
	"github.com/roach88/jqcty/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenario steps against one processor with a deterministic clock.
type Harness struct {
	proc   *query.Processor
	clock  *testutil.DeterministicClock
	logger *zap.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger for step outcomes.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Select the scenario's language on proc
// 2. Resolve the input document
// 3. Run each step on its channel and record the outcome in the trace
// 4. Check each step's expectations
//
// An error is returned only when the scenario cannot run at all; failed
// expectations are reported in Result.Errors.
func Run(ctx context.Context, proc *query.Processor, scenario *Scenario, opts ...Option) (*Result, error) {
	if scenario.Language != "" {
		p, err := proc.ForLanguage(scenario.Language)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		proc = p
	}

	input, err := scenario.ResolveInput()
	if err != nil {
		return nil, fmt.Errorf("scenario %q: failed to resolve input: %w", scenario.Name, err)
	}

	h := &Harness{
		proc:   proc,
		clock:  testutil.NewDeterministicClock(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		out := h.executeStep(ctx, i, step, input)
		result.AddTrace(out.event)

		for _, err := range checkExpect(i, step.Expect, out) {
			result.AddError(err.Error())
		}

		h.logger.Debug("step completed",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i),
			zap.String("channel", step.Channel),
			zap.Bool("failed", out.event.Failed()),
		)
	}

	return result, nil
}

// executeStep runs one step on its channel.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, input native.Value) outcome {
	event := TraceEvent{
		Step:    index,
		Program: step.Program,
		Channel: step.Channel,
		Seq:     h.clock.Next(),
	}

	var (
		out outcome
		err error
	)
	switch step.Channel {
	case ChannelNative:
		var v native.Value
		v, err = h.proc.Execute(ctx, step.Program, input)
		if err == nil {
			out, err = nativeOutcome(v)
			event.Result = v
		}
	case ChannelTyped:
		var v dynamic.Value
		v, err = h.proc.ExecuteDynamic(ctx, step.Program, input)
		if err == nil {
			out, err = nativeOutcome(dynamic.ToNative(v))
			out.typ = v.Type().String()
			event.Result = out.result
			event.Type = out.typ
		}
	default:
		var text []byte
		text, err = h.proc.ExecuteText(ctx, step.Program, input)
		if err == nil {
			var v native.Value
			v, err = native.Decode(text)
			if err == nil {
				out, err = nativeOutcome(v)
				out.text = string(text)
				event.Text = out.text
			}
		}
	}

	if err != nil {
		event.Error = err.Error()
		event.ErrorKind = string(query.KindOf(err))
		return outcome{event: event}
	}

	out.event = event
	return out
}

func nativeOutcome(v native.Value) (outcome, error) {
	text, err := native.Encode(v)
	if err != nil {
		return outcome{}, err
	}
	return outcome{result: v, text: string(text), typ: typeOf(v)}, nil
}
