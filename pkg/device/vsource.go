package device

import (
	"github.com/edp1096/dcsolve/internal/consts"
	"github.com/edp1096/dcsolve/pkg/matrix"
)

// Grounded reports whether d is a voltage source with one terminal on
// ground. Only grounded sources are solved.
func (d *Device[S]) Grounded() bool {
	return d.Kind == VoltageSource && (d.Target == consts.Ground || d.Owner == consts.Ground)
}

// Constrain replaces the owner's row with V(owner) = Value. The non-ground
// terminal of a grounded source sits at +Value whichever terminal came first.
func (d *Device[S]) Constrain(m matrix.DeviceMatrix[S], self int) {
	m.ReplaceRow(self, d.Value)
}
