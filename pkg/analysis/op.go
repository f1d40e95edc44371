package analysis

import (
	"fmt"

	"github.com/edp1096/dcsolve/pkg/scalar"
)

type OperatingPoint[S scalar.Scalar[S]] struct{ BaseAnalysis[S] }

func NewOP[S scalar.Scalar[S]](opts ...Option) *OperatingPoint[S] {
	return &OperatingPoint[S]{
		BaseAnalysis: *NewBaseAnalysis[S](opts...),
	}
}

func (op *OperatingPoint[S]) Execute() error {
	ckt := op.Circuit
	if ckt == nil {
		return ErrNotSetup
	}
	if err := ckt.Solve(); err != nil {
		return fmt.Errorf("operating point: %w", err)
	}

	ps := op.outputs()
	values := make([]S, len(ps))
	if err := read(ckt, ps, values); err != nil {
		return fmt.Errorf("operating point: %w", err)
	}
	for i, p := range ps {
		op.results[p.key] = []S{values[i]}
	}
	return nil
}
