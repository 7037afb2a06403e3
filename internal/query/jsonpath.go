package query

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/theory/jsonpath"
)

// JSONPath evaluates RFC 9535 JSONPath expressions with theory/jsonpath.
// Every selected node is one result. Numbers pass through float64, so
// integers beyond 2^53 lose precision.
type JSONPath struct{}

// NewJSONPath returns a JSONPath evaluator.
func NewJSONPath() *JSONPath {
	return &JSONPath{}
}

func (*JSONPath) Evaluate(ctx context.Context, program string, input []byte) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := jsonpath.Parse(program)
	if err != nil {
		return nil, err
	}

	var data any
	if err := json.Unmarshal(input, &data); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	nodes := path.Select(data)
	out := make([][]byte, 0, len(nodes))
	for i, node := range nodes {
		text, err := encodeDocument(node)
		if err != nil {
			return nil, fmt.Errorf("encode result %d: %w", i, err)
		}
		out = append(out, text)
	}
	return out, nil
}
