package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/dcsolve/pkg/circuit"
	"github.com/edp1096/dcsolve/pkg/matrix"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

// Verification compares the dense solution of a circuit with the sparse
// LU solution of the same system.
type Verification struct {
	Dense   map[int]float64 // node -> voltage from Solve
	Sparse  map[int]float64 // node -> voltage from the sparse backend
	MaxDiff float64         // largest difference relative to max(1, |sparse|)
	Node    int             // node with MaxDiff, 0 when there are no rows
}

// Verify solves ckt and its assembled system with the sparse backend and
// fails with ErrMismatch when a node differs by more than tol relative to
// max(1, |V|).
func Verify[S scalar.Scalar[S]](ckt *circuit.Circuit[S], tol float64) (Verification, error) {
	v := Verification{Dense: map[int]float64{}, Sparse: map[int]float64{}}
	if err := ckt.Solve(); err != nil {
		return v, err
	}
	sys, idx, err := ckt.System()
	if err != nil {
		return v, err
	}
	x, err := matrix.SolveSparse(sys)
	if err != nil {
		return v, fmt.Errorf("verify: %w", err)
	}

	for i := range idx.N {
		node := int(idx.IndexToNode[i])
		dense := ckt.Voltage[node].Float64()
		v.Dense[node] = dense
		v.Sparse[node] = x[i]

		diff := math.Abs(dense-x[i]) / math.Max(1, math.Abs(x[i]))
		if math.IsNaN(diff) {
			diff = math.Inf(1)
		}
		if diff > v.MaxDiff || v.Node == 0 {
			v.MaxDiff, v.Node = diff, node
		}
	}
	if v.MaxDiff > tol {
		return v, fmt.Errorf("%w: node %d dense %g sparse %g", ErrMismatch, v.Node, v.Dense[v.Node], v.Sparse[v.Node])
	}
	return v, nil
}
