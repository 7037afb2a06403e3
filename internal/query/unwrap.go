package query

import (
	"slices"

	"github.com/roach88/jqcty/internal/native"
)

// Unwrap collapses an ordered result sequence into one value: exactly one
// result is returned as-is, zero or several results become a list holding
// the whole sequence in order. Zero results give an empty list, never null.
//
// A single result that is itself a list is indistinguishable from several
// results; callers that need the difference should use Processor.Results.
func Unwrap(results []native.Value) native.Value {
	if len(results) == 1 {
		return results[0]
	}
	return native.NewList(slices.Clone(results)...)
}
