package device

import "github.com/edp1096/dcsolve/pkg/matrix"

// stampResistor writes g = 1/R into the owner's row only. The twin record
// writes the mirrored terms into its own row.
func (d *Device[S]) stampResistor(m matrix.DeviceMatrix[S], self, other int) {
	g := d.Value.Recip()
	m.AddElement(self, self, g)
	if other != matrix.NoIndex {
		m.AddElement(self, other, g.Neg())
	}
}

func (d *Device[S]) resistorCurrent(vOwner, vTarget S) S {
	return vOwner.Sub(vTarget).Div(d.Value)
}
