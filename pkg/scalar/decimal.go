package scalar

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"sync"
)

// Digits is the number of significant decimal digits a Decimal keeps.
const Digits = 14

const (
	maxDecimalExp = 999
	minDecimalExp = -999
)

// Decimal is a decimal floating point number with Digits significant
// digits, rounded half away from zero after every operation. Decimal
// fractions such as 0.1 or 1/1000 are exact.
//
// Division by zero and exponent overflow yield NaN, which propagates
// through every operation. Underflow flushes to zero.
type Decimal struct {
	mant int64 // 0, or 10^(Digits-1) <= |mant| < 10^Digits
	exp  int16 // value = mant * 10^exp
	nan  bool
}

var decimalEps struct {
	once sync.Once
	v    Decimal
}

var bigPow10 [2*Digits + 8]*big.Int

func init() {
	p := big.NewInt(1)
	for i := range bigPow10 {
		bigPow10[i] = new(big.Int).Set(p)
		p.Mul(p, big.NewInt(10))
	}
}

func pow10(n int) *big.Int {
	if n < len(bigPow10) {
		return bigPow10[n]
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// NaN returns the Decimal not-a-number.
func NaN() Decimal { return Decimal{nan: true} }

// IsNaN reports whether d is not a number.
func (d Decimal) IsNaN() bool { return d.nan }

// newDecimal rounds x*10^exp to Digits significant digits.
func newDecimal(x *big.Int, exp int) Decimal {
	if x.Sign() == 0 {
		return Decimal{}
	}
	neg := x.Sign() < 0
	ax := new(big.Int).Abs(x)
	n := len(ax.Text(10))
	switch {
	case n > Digits:
		shift := n - Digits
		q, r := new(big.Int).QuoRem(ax, pow10(shift), new(big.Int))
		if r.Lsh(r, 1).Cmp(pow10(shift)) >= 0 {
			q.Add(q, bigPow10[0])
		}
		ax = q
		exp += shift
		if ax.Cmp(pow10(Digits)) >= 0 {
			ax.Quo(ax, bigPow10[1])
			exp++
		}
	case n < Digits:
		ax.Mul(ax, pow10(Digits-n))
		exp -= Digits - n
	}
	if exp > maxDecimalExp {
		return NaN()
	}
	if exp < minDecimalExp {
		return Decimal{}
	}
	m := ax.Int64()
	if neg {
		m = -m
	}
	return Decimal{mant: m, exp: int16(exp)}
}

func (d Decimal) Add(e Decimal) Decimal {
	switch {
	case d.nan || e.nan:
		return NaN()
	case d.mant == 0:
		return e
	case e.mant == 0:
		return d
	}
	hi, lo := d, e
	if hi.exp < lo.exp {
		hi, lo = lo, hi
	}
	diff := int(hi.exp) - int(lo.exp)
	if diff > Digits+1 {
		// lo is below half a unit in the last place of hi
		return hi
	}
	x := new(big.Int).Mul(big.NewInt(hi.mant), pow10(diff))
	x.Add(x, big.NewInt(lo.mant))
	return newDecimal(x, int(lo.exp))
}

func (d Decimal) Sub(e Decimal) Decimal { return d.Add(e.Neg()) }

func (d Decimal) Mul(e Decimal) Decimal {
	switch {
	case d.nan || e.nan:
		return NaN()
	case d.mant == 0 || e.mant == 0:
		return Decimal{}
	}
	x := new(big.Int).Mul(big.NewInt(d.mant), big.NewInt(e.mant))
	return newDecimal(x, int(d.exp)+int(e.exp))
}

func (d Decimal) Div(e Decimal) Decimal {
	switch {
	case d.nan || e.nan || e.mant == 0:
		return NaN()
	case d.mant == 0:
		return Decimal{}
	}
	const extra = Digits + 2
	num := new(big.Int).Mul(big.NewInt(absInt64(d.mant)), pow10(extra))
	q, r := new(big.Int).QuoRem(num, big.NewInt(absInt64(e.mant)), new(big.Int))
	exp := int(d.exp) - int(e.exp) - extra
	if r.Sign() != 0 {
		// sticky digit so that the final rounding sees an inexact tail
		q.Mul(q, bigPow10[1])
		q.Add(q, bigPow10[0])
		exp--
	}
	if (d.mant < 0) != (e.mant < 0) {
		q.Neg(q)
	}
	return newDecimal(q, exp)
}

func (d Decimal) Neg() Decimal {
	d.mant = -d.mant
	return d
}

func (d Decimal) Abs() Decimal {
	d.mant = absInt64(d.mant)
	return d
}

func (d Decimal) Recip() Decimal { return Decimal{}.FromInt(1).Div(d) }
func (d Decimal) IsZero() bool   { return !d.nan && d.mant == 0 }

// Cmp returns -1, 0 or +1. NaN orders below every number.
func (d Decimal) Cmp(e Decimal) int {
	if d.nan || e.nan {
		switch {
		case d.nan && e.nan:
			return 0
		case d.nan:
			return -1
		default:
			return 1
		}
	}
	ds, es := sign(d.mant), sign(e.mant)
	if ds != es {
		return cmpInt(ds, es)
	}
	if ds == 0 {
		return 0
	}
	if d.exp != e.exp {
		return ds * cmpInt(int(d.exp), int(e.exp))
	}
	return ds * cmpInt64(absInt64(d.mant), absInt64(e.mant))
}

func (Decimal) Epsilon() Decimal {
	decimalEps.once.Do(func() {
		decimalEps.v = MachineEpsilon[Decimal]()
	})
	return decimalEps.v
}

func (Decimal) FromInt(i int64) Decimal {
	return newDecimal(big.NewInt(i), 0)
}

// Parse reads [+-]digits[.digits][(e|E)[+-]digits].
func (Decimal) Parse(s string) (Decimal, error) {
	src := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, fmt.Errorf("%w: empty", ErrSyntax)
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	mant := new(big.Int)
	exp := 0
	sawDigit, sawDot := false, false
	i := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if sawDot {
				return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, src)
			}
			sawDot = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		mant.Mul(mant, bigPow10[1])
		mant.Add(mant, big.NewInt(int64(c-'0')))
		if sawDot {
			exp--
		}
		sawDigit = true
	}
	if !sawDigit {
		return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, src)
	}
	if i < len(s) {
		if s[i] != 'e' && s[i] != 'E' {
			return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, src)
		}
		e, err := strconv.Atoi(s[i+1:])
		if err != nil || e > 100*maxDecimalExp || e < 100*minDecimalExp {
			return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, src)
		}
		exp += e
	}
	if neg {
		mant.Neg(mant)
	}
	return newDecimal(mant, exp), nil
}

func (d Decimal) Float64() float64 {
	switch {
	case d.nan:
		return math.NaN()
	case d.exp < 0:
		return float64(d.mant) / math.Pow10(-int(d.exp))
	default:
		return float64(d.mant) * math.Pow10(int(d.exp))
	}
}

// String formats d with the shortest digit string that represents it,
// switching to exponent notation outside [1e-5, 1e21).
func (d Decimal) String() string {
	if d.nan {
		return "NaN"
	}
	if d.mant == 0 {
		return "0"
	}
	digits := strings.TrimRight(strconv.FormatInt(absInt64(d.mant), 10), "0")
	point := Digits + int(d.exp) // decimal point position relative to the first digit

	var sb strings.Builder
	if d.mant < 0 {
		sb.WriteByte('-')
	}
	switch {
	case point > 21 || point < -4:
		sb.WriteByte(digits[0])
		if len(digits) > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		e := point - 1
		sb.WriteByte('e')
		if e < 0 {
			sb.WriteByte('-')
			e = -e
		} else {
			sb.WriteByte('+')
		}
		if e < 10 {
			sb.WriteByte('0')
		}
		sb.WriteString(strconv.Itoa(e))
	case point <= 0:
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", -point))
		sb.WriteString(digits)
	case point >= len(digits):
		sb.WriteString(digits)
		sb.WriteString(strings.Repeat("0", point-len(digits)))
	default:
		sb.WriteString(digits[:point])
		sb.WriteByte('.')
		sb.WriteString(digits[point:])
	}
	return sb.String()
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
