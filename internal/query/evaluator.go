package query

import "context"

// Evaluator runs a program over one JSON document and returns every JSON
// document it emits, in emission order.
//
// Implementations must be side-effect free and safe for concurrent use.
// Returning an error means no results; partial output is discarded.
type Evaluator interface {
	Evaluate(ctx context.Context, program string, input []byte) ([][]byte, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, program string, input []byte) ([][]byte, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, program string, input []byte) ([][]byte, error) {
	return f(ctx, program, input)
}

// Language names accepted by DefaultEvaluators.
const (
	LanguageJQ       = "jq"
	LanguageJSONPath = "jsonpath"
)

// DefaultEvaluators returns a fresh evaluator table with jq and JSONPath.
func DefaultEvaluators() map[string]Evaluator {
	return map[string]Evaluator{
		LanguageJQ:       NewJQ(),
		LanguageJSONPath: NewJSONPath(),
	}
}
