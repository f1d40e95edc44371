// Package scalar defines the arithmetic the solver is written against and
// ships two implementations: Float (IEEE binary64) and Decimal (a 14 digit
// decimal floating point number in the style of pocket calculators).
//
// Precision and rounding are properties of the chosen implementation; the
// solver issues no rounding or formatting decisions of its own.
package scalar

import (
	"errors"

	"golang.org/x/exp/constraints"
)

// ErrSyntax is returned by Parse for text that is not a number.
var ErrSyntax = errors.New("scalar: invalid syntax")

// Scalar is implemented by value types used as circuit quantities.
//
// The zero value of an implementation must represent 0. Constructors
// (Epsilon, FromInt, Parse) are methods so they can be called on the zero
// value. Implementations stored in arena memory must not hold Go pointers.
type Scalar[S any] interface {
	Add(S) S
	Sub(S) S
	Mul(S) S
	Div(S) S
	Neg() S
	Abs() S
	Recip() S
	// Cmp returns -1, 0 or +1.
	Cmp(S) int
	IsZero() bool

	Epsilon() S
	FromInt(int64) S
	Parse(string) (S, error)

	Float64() float64
	String() string
}

// Zero returns the additive identity of S.
func Zero[S Scalar[S]]() S {
	var z S
	return z
}

// One returns the multiplicative identity of S.
func One[S Scalar[S]]() S {
	var z S
	return z.FromInt(1)
}

// Epsilon returns the machine epsilon of S.
func Epsilon[S Scalar[S]]() S {
	var z S
	return z.Epsilon()
}

// FromInt converts any integer to S.
func FromInt[S Scalar[S], I constraints.Integer](i I) S {
	var z S
	return z.FromInt(int64(i))
}

// Parse converts text to S.
func Parse[S Scalar[S]](s string) (S, error) {
	var z S
	return z.Parse(s)
}

// Less reports whether a < b.
func Less[S Scalar[S]](a, b S) bool {
	return a.Cmp(b) < 0
}

// Approx reports whether |a-b| < tol.
func Approx[S Scalar[S]](a, b, tol S) bool {
	return a.Sub(b).Abs().Cmp(tol) < 0
}

// MachineEpsilon halves one until adding it to one no longer changes one,
// and returns the last value that did.
func MachineEpsilon[S Scalar[S]]() S {
	one := One[S]()
	two := FromInt[S](2)
	eps := one
	for one.Cmp(eps.Add(one)) < 0 {
		eps = eps.Div(two)
	}
	return eps.Mul(two)
}
