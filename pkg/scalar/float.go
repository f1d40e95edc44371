package scalar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Float is an IEEE 754 binary64 Scalar.
type Float float64

func (f Float) Add(g Float) Float { return f + g }
func (f Float) Sub(g Float) Float { return f - g }
func (f Float) Mul(g Float) Float { return f * g }
func (f Float) Div(g Float) Float { return f / g }
func (f Float) Neg() Float        { return -f }
func (f Float) Recip() Float      { return 1 / f }
func (f Float) IsZero() bool      { return f == 0 }

func (f Float) Abs() Float {
	if f < 0 {
		return -f
	}
	return f
}

// Cmp returns -1, 0 or +1. NaN compares equal to everything.
func (f Float) Cmp(g Float) int {
	switch {
	case f < g:
		return -1
	case f > g:
		return 1
	default:
		return 0
	}
}

func (Float) Epsilon() Float        { return Float(math.Nextafter(1, 2) - 1) }
func (Float) FromInt(i int64) Float { return Float(i) }
func (f Float) Float64() float64    { return float64(f) }
func (f Float) String() string      { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

func (Float) Parse(s string) (Float, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return Float(v), nil
}
