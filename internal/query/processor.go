package query

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
)

// Processor executes query programs and normalizes their results.
//
// A Processor holds no mutable state and is safe for concurrent use.
type Processor struct {
	evaluators map[string]Evaluator
	language   string
	logger     *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEvaluators replaces the evaluator table. The map is copied.
func WithEvaluators(evaluators map[string]Evaluator) Option {
	return func(p *Processor) {
		p.evaluators = make(map[string]Evaluator, len(evaluators))
		for name, ev := range evaluators {
			p.evaluators[name] = ev
		}
	}
}

// WithLanguage selects the evaluator used by Execute. The default is jq.
func WithLanguage(language string) Option {
	return func(p *Processor) {
		p.language = language
	}
}

// New creates a Processor. Without options it runs jq programs through gojq.
func New(opts ...Option) *Processor {
	p := &Processor{
		evaluators: DefaultEvaluators(),
		language:   LanguageJQ,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns the query language this Processor executes.
func (p *Processor) Language() string {
	return p.language
}

// Languages returns the names of all registered evaluators, sorted.
func (p *Processor) Languages() []string {
	names := make([]string, 0, len(p.evaluators))
	for name := range p.evaluators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ForLanguage returns a Processor sharing p's evaluators and logger but
// executing programs in language. An empty language keeps p's.
func (p *Processor) ForLanguage(language string) (*Processor, error) {
	if language == "" || language == p.language {
		return p, nil
	}
	if _, ok := p.evaluators[language]; !ok {
		return nil, NewInvalidProgram(language, fmt.Sprintf(
			"unknown query language %q (available: %s)", language, strings.Join(p.Languages(), ", ")))
	}
	clone := *p
	clone.language = language
	return &clone, nil
}

// Results runs program over input and returns every emitted value in order,
// without unwrapping.
func (p *Processor) Results(ctx context.Context, program string, input native.Value) ([]native.Value, error) {
	if strings.TrimSpace(program) == "" {
		return nil, NewInvalidProgram(p.language, EmptyProgramMessage)
	}

	evaluator, ok := p.evaluators[p.language]
	if !ok {
		return nil, NewInvalidProgram(p.language, fmt.Sprintf("unknown query language %q", p.language))
	}

	text, err := native.Encode(input)
	if err != nil {
		return nil, newMalformedInput(p.language, err, "cannot encode input: %v", err)
	}

	logger := p.logger.With(zap.String("language", p.language), zap.String("program", program))
	start := time.Now()

	documents, err := evaluator.Evaluate(ctx, program, text)
	if err != nil {
		logger.Error("query failed", zap.Error(err))
		return nil, newEvaluationFailure(p.language, err)
	}

	results := make([]native.Value, len(documents))
	for i, doc := range documents {
		v, err := native.Decode(doc)
		if err != nil {
			logger.Error("evaluator emitted invalid JSON", zap.Int("index", i), zap.Error(err))
			return nil, newEvaluationFailure(p.language, fmt.Errorf("result %d: %w", i, err))
		}
		results[i] = v
	}

	logger.Debug("query executed",
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// Execute runs program over input and returns the unwrapped result.
func (p *Processor) Execute(ctx context.Context, program string, input native.Value) (native.Value, error) {
	results, err := p.Results(ctx, program, input)
	if err != nil {
		return nil, err
	}
	return Unwrap(results), nil
}

// ExecuteText is Execute delivered as canonical JSON text. The output is
// always a valid JSON document.
func (p *Processor) ExecuteText(ctx context.Context, program string, input native.Value) ([]byte, error) {
	result, err := p.Execute(ctx, program, input)
	if err != nil {
		return nil, err
	}
	text, err := native.Encode(result)
	if err != nil {
		return nil, newEvaluationFailure(p.language, err)
	}
	return text, nil
}

// ExecuteDynamic is Execute delivered as a typed dynamic value.
func (p *Processor) ExecuteDynamic(ctx context.Context, program string, input native.Value) (dynamic.Value, error) {
	result, err := p.Execute(ctx, program, input)
	if err != nil {
		return dynamic.Value{}, err
	}
	return dynamic.FromNative(result), nil
}

// ExecuteJSON decodes jsonInput and executes program over it.
func (p *Processor) ExecuteJSON(ctx context.Context, program, jsonInput string) (native.Value, error) {
	input, err := p.DecodeInput(jsonInput)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, program, input)
}

// DecodeInput parses JSON text supplied as query input. Failures are
// MalformedInput errors quoting the decoder's message.
func (p *Processor) DecodeInput(jsonInput string) (native.Value, error) {
	input, err := native.DecodeString(jsonInput)
	if err != nil {
		return nil, newMalformedInput(p.language, err, "Invalid JSON in 'json_input': %v", err)
	}
	return input, nil
}
