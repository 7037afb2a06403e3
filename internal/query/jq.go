package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
)

// JQ evaluates jq programs with gojq.
//
// Objects are emitted with sorted keys since gojq does not keep insertion
// order. The context is checked between evaluation steps.
type JQ struct{}

// NewJQ returns a jq evaluator.
func NewJQ() *JQ {
	return &JQ{}
}

// Evaluate runs program over input. A halt without a value ends the output
// stream normally; halt_error and every other runtime error fail the call.
func (*JQ) Evaluate(ctx context.Context, program string, input []byte) ([][]byte, error) {
	parsed, err := gojq.Parse(program)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, err
	}

	data, err := decodeDocument(input)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	var out [][]byte
	iter := code.RunWithContext(ctx, data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil && halt.ExitCode() == 0 {
				break
			}
			return nil, err
		}

		text, err := encodeDocument(v)
		if err != nil {
			return nil, fmt.Errorf("encode result %d: %w", len(out), err)
		}
		out = append(out, text)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
