package native

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Decimal represents an arbitrary-precision decimal number.
// The zero value is 0. The wrapped apd.Decimal is never modified.
type Decimal struct {
	d *apd.Decimal
}

func (Decimal) nativeValue() {}

func (Decimal) Kind() Kind { return KindDecimal }

// NewDecimal parses s (e.g. "99.99", "1E+30") into a Decimal.
func NewDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return Decimal{d: d}, nil
}

// MustDecimal is like NewDecimal but panics on error.
// Use only in tests or with literal input.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DecimalFromAPD copies d into a Decimal.
func DecimalFromAPD(d *apd.Decimal) Decimal {
	return Decimal{d: new(apd.Decimal).Set(d)}
}

// APD returns a copy of the underlying decimal.
func (d Decimal) APD() *apd.Decimal {
	return new(apd.Decimal).Set(d.value())
}

func (d Decimal) String() string {
	return d.value().String()
}

// IsFinite reports whether d is neither infinite nor NaN.
func (d Decimal) IsFinite() bool {
	return d.value().Form == apd.Finite
}

// IsIntegral reports whether d is finite and has no fractional part.
func (d Decimal) IsIntegral() bool {
	if !d.IsFinite() {
		return false
	}
	var integ, frac apd.Decimal
	d.value().Modf(&integ, &frac)
	return frac.IsZero()
}

// integerText returns the digits of an integral decimal without exponent or
// fractional zeros, e.g. "10.00" -> "10" and "1E+3" -> "1000".
func (d Decimal) integerText() string {
	var integ, frac apd.Decimal
	d.value().Modf(&integ, &frac)
	if i, err := integ.Int64(); err == nil {
		return fmt.Sprintf("%d", i)
	}
	var reduced apd.Decimal
	reduced.Reduce(&integ)
	return reduced.Text('f')
}

func (d Decimal) Equal(other Value) bool {
	switch o := other.(type) {
	case Decimal:
		return d.cmp(o.value()) == 0
	case Int:
		return d.cmp(apd.New(int64(o), 0)) == 0
	case Float:
		return d.equalFloat(float64(o))
	default:
		return false
	}
}

func (d Decimal) value() *apd.Decimal {
	if d.d == nil {
		return new(apd.Decimal)
	}
	return d.d
}

func (d Decimal) cmp(x *apd.Decimal) int {
	if !d.IsFinite() || x.Form != apd.Finite {
		return -2
	}
	return d.value().Cmp(x)
}

func (d Decimal) equalFloat(f float64) bool {
	x, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		return false
	}
	return d.cmp(x) == 0
}
