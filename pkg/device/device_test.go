package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edp1096/dcsolve/pkg/arena"
	"github.com/edp1096/dcsolve/pkg/matrix"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

func TestKind(t *testing.T) {
	for k := Wire; k < numKinds; k++ {
		got, ok := KindFromLetter(k.Letter())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	k, ok := KindFromLetter('r')
	assert.True(t, ok)
	assert.Equal(t, Resistor, k)
	assert.Equal(t, "Resistor", k.String())

	_, ok = KindFromLetter('Q')
	assert.False(t, ok)
	assert.Equal(t, "Kind(9)", Kind(9).String())
	assert.Equal(t, byte('?'), Kind(9).Letter())
}

func TestDevice_RecordIsArenaSafe(t *testing.T) {
	assert.NoError(t, arena.CheckType[Device[scalar.Float]]())
	assert.NoError(t, arena.CheckType[Device[scalar.Decimal]]())
}

func newSystem(n int) *matrix.Dense[scalar.Float] {
	return matrix.NewDense(n, make([]scalar.Float, n*n), make([]scalar.Float, n))
}

func TestDevice_StampResistor(t *testing.T) {
	m := newSystem(2)
	a := &Device[scalar.Float]{Kind: Resistor, Value: 1000, Owner: 1, Target: 2}
	b := &Device[scalar.Float]{Kind: Resistor, Value: 1000, Owner: 2, Target: 1, Reverse: true}

	a.Stamp(m, 0, 1)
	b.Stamp(m, 1, 0)
	assert.Equal(t, []scalar.Float{0.001, -0.001, -0.001, 0.001}, m.G, "each term stamped once")

	g := &Device[scalar.Float]{Kind: Resistor, Value: 500, Owner: 2, Target: 0}
	g.Stamp(m, 1, matrix.NoIndex)
	assert.Equal(t, []scalar.Float{0.001, -0.001, -0.001, 0.003}, m.G)
}

func TestDevice_StampCurrentSource(t *testing.T) {
	m := newSystem(2)
	a := &Device[scalar.Float]{Kind: CurrentSource, Value: 2, Owner: 1, Target: 2}
	b := &Device[scalar.Float]{Kind: CurrentSource, Value: 2, Owner: 2, Target: 1, Reverse: true}

	a.Stamp(m, 0, 1)
	b.Stamp(m, 1, 0)
	assert.Equal(t, []scalar.Float{-2, 2}, m.RHS)
	assert.Equal(t, []scalar.Float{0, 0, 0, 0}, m.G)

	assert.Equal(t, scalar.Float(2), a.BranchCurrent(0, 0))
	assert.Equal(t, scalar.Float(-2), b.BranchCurrent(0, 0))
}

func TestDevice_NoStamp(t *testing.T) {
	for _, k := range []Kind{Wire, Capacitor, Inductor, VoltageSource} {
		m := newSystem(1)
		d := &Device[scalar.Float]{Kind: k, Value: 3, Owner: 1}
		d.Stamp(m, 0, matrix.NoIndex)
		assert.Equal(t, []scalar.Float{0}, m.G, k.String())
		assert.Equal(t, []scalar.Float{0}, m.RHS, k.String())
		assert.Zero(t, d.BranchCurrent(5, 0), k.String())
	}
}

func TestDevice_VoltageSource(t *testing.T) {
	m := newSystem(2)
	m.AddElement(1, 0, 4)
	m.AddElement(1, 1, 4)
	m.AddRHS(1, 9)

	v := &Device[scalar.Float]{Kind: VoltageSource, Value: 5, Owner: 2, Target: 0, Reverse: true}
	assert.True(t, v.Grounded())
	v.Constrain(m, 1)
	assert.Equal(t, []scalar.Float{0, 1}, m.Row(1))
	assert.Equal(t, scalar.Float(5), m.RHS[1])

	floating := &Device[scalar.Float]{Kind: VoltageSource, Owner: 1, Target: 2}
	assert.False(t, floating.Grounded())
	r := &Device[scalar.Float]{Kind: Resistor, Owner: 1, Target: 0}
	assert.False(t, r.Grounded())
}

func TestDevice_ResistorCurrent(t *testing.T) {
	r := &Device[scalar.Float]{Kind: Resistor, Value: 1000, Owner: 1, Target: 2}
	assert.InDelta(t, 0.005, float64(r.BranchCurrent(5, 0)), 1e-15)
	assert.InDelta(t, -0.005, float64(r.BranchCurrent(0, 5)), 1e-15)
}

func TestDevice_String(t *testing.T) {
	d := &Device[scalar.Float]{Kind: Resistor, Value: 2000, Owner: 0, Target: 2, Reverse: true}
	assert.Equal(t, "R 2 0 2000", d.String())
}
