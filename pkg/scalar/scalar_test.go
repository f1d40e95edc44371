package scalar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) Decimal {
	t.Helper()
	d, err := Parse[Decimal](s)
	require.NoError(t, err)
	return d
}

func TestFloat_Epsilon(t *testing.T) {
	assert.Equal(t, MachineEpsilon[Float](), Float(0).Epsilon())
	assert.Equal(t, Float(math.Nextafter(1, 2)-1), Epsilon[Float]())
}

func TestFloat_Parse(t *testing.T) {
	f, err := Parse[Float](" 2.5e3 ")
	require.NoError(t, err)
	assert.Equal(t, Float(2500), f)

	_, err = Parse[Float]("volts")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestFloat_Cmp(t *testing.T) {
	assert.Equal(t, -1, Float(1).Cmp(2))
	assert.Equal(t, 1, Float(2).Cmp(1))
	assert.Equal(t, 0, Float(2).Cmp(2))
	assert.True(t, Less[Float](-1, 0))
}

func TestDecimal_Division(t *testing.T) {
	one, two, three := FromInt[Decimal](1), FromInt[Decimal](2), FromInt[Decimal](3)

	assert.Equal(t, "0.33333333333333", one.Div(three).String())
	assert.Equal(t, "0.66666666666667", two.Div(three).String())
	assert.Equal(t, "3.3333333333333", FromInt[Decimal](10).Div(three).String())
	assert.Equal(t, "-0.66666666666667", two.Neg().Div(three).String())
	assert.Equal(t, "0.001", one.Div(FromInt[Decimal](1000)).String())
}

func TestDecimal_DecimalFractionsAreExact(t *testing.T) {
	sum := dec(t, "0.1").Add(dec(t, "0.2"))
	assert.Equal(t, 0, sum.Cmp(dec(t, "0.3")))
	assert.Equal(t, "0.3", sum.String())

	g := dec(t, "1e-3")
	assert.Equal(t, "0.001", g.String())
	assert.Equal(t, "1000", g.Recip().String())
}

func TestDecimal_DivideByZero(t *testing.T) {
	q := FromInt[Decimal](1).Div(Zero[Decimal]())
	assert.True(t, q.IsNaN())
	assert.False(t, q.IsZero())
	assert.True(t, q.Add(FromInt[Decimal](1)).IsNaN(), "NaN must propagate")
	assert.Equal(t, "NaN", q.String())
	assert.True(t, math.IsNaN(q.Float64()))
	assert.Equal(t, -1, q.Cmp(FromInt[Decimal](-5)))
}

func TestDecimal_ParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5", "5"},
		{"-5", "-5"},
		{"+0.5", "0.5"},
		{".25", "0.25"},
		{"1000", "1000"},
		{"1.5e3", "1500"},
		{"1e25", "1e+25"},
		{"1e-7", "1e-07"},
		{"2.5E-6", "2.5e-06"},
		{"0.00001", "0.00001"},
		{"123456789012345678", "123456789012350000"},
		{"0", "0"},
		{"-0.000", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, dec(t, tt.in).String())
		})
	}

	for _, bad := range []string{"", "-", "1.2.3", "abc", "1e", "1x"} {
		_, err := Parse[Decimal](bad)
		assert.ErrorIs(t, err, ErrSyntax, bad)
	}
}

func TestDecimal_Rounding(t *testing.T) {
	// 14 significant digits, half away from zero.
	assert.Equal(t, "1.0000000000001", dec(t, "1.00000000000005").String())
	assert.Equal(t, "-1.0000000000001", dec(t, "-1.00000000000005").String())
	assert.Equal(t, "1", dec(t, "1.00000000000004").String())
	assert.Equal(t, "10", dec(t, "9.999999999999999").String())

	big := dec(t, "1e20")
	assert.Equal(t, 0, big.Add(FromInt[Decimal](1)).Cmp(big), "tiny addend is absorbed")
}

func TestDecimal_Cmp(t *testing.T) {
	assert.Equal(t, -1, dec(t, "-2").Cmp(dec(t, "1")))
	assert.Equal(t, 1, dec(t, "0.2").Cmp(dec(t, "0.1")))
	assert.Equal(t, -1, dec(t, "-20").Cmp(dec(t, "-3")))
	assert.Equal(t, 0, Zero[Decimal]().Cmp(dec(t, "-0")))
	assert.Equal(t, 1, dec(t, "1e-9").Cmp(Zero[Decimal]()))
}

func TestDecimal_Epsilon(t *testing.T) {
	one := One[Decimal]()
	eps := Epsilon[Decimal]()

	assert.Equal(t, 1, one.Add(eps).Cmp(one), "one plus epsilon must exceed one")
	half := eps.Div(FromInt[Decimal](2))
	assert.Equal(t, 0, one.Add(half).Cmp(one))
	assert.InDelta(t, 5.68e-14, eps.Float64(), 0.01e-14)
	assert.Equal(t, eps, Decimal{}.Epsilon(), "epsilon is cached")
}

func TestDecimal_Float64(t *testing.T) {
	assert.InDelta(t, 3.3333333333333, dec(t, "3.3333333333333").Float64(), 1e-15)
	assert.Equal(t, 1500.0, dec(t, "1.5e3").Float64())
	assert.Equal(t, 0.0, Zero[Decimal]().Float64())
}

func TestApprox(t *testing.T) {
	assert.True(t, Approx[Float](1, 1.0000001, 1e-6))
	assert.False(t, Approx[Float](1, 1.1, 1e-6))
	assert.True(t, Approx(dec(t, "0.3"), dec(t, "0.1").Add(dec(t, "0.2")), Epsilon[Decimal]()))
}
