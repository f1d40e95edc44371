package device

import "github.com/edp1096/dcsolve/pkg/matrix"

// A current source of value I drives I out of its first terminal and into
// its second through the external circuit.
func (d *Device[S]) stampCurrentSource(m matrix.DeviceMatrix[S], self int) {
	if d.Reverse {
		m.AddRHS(self, d.Value)
	} else {
		m.AddRHS(self, d.Value.Neg())
	}
}

func (d *Device[S]) sourceCurrent() S {
	if d.Reverse {
		return d.Value.Neg()
	}
	return d.Value
}
