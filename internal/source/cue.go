package source

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/jqcty/internal/native"
)

// decodeCUE evaluates a CUE document, requires it to be concrete and
// converts it through its JSON form. Field order follows the source.
func decodeCUE(data []byte, filename string) (native.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	text, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return native.Decode(text)
}

// formatCUEError reports the first error of a CUE error list, prefixed with
// its position when one is known.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("cue: %w", err)
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		pos := positions[0]
		return fmt.Errorf("cue: %s:%d:%d: %w", pos.Filename(), pos.Line(), pos.Column(), first)
	}
	return fmt.Errorf("cue: %w", first)
}
