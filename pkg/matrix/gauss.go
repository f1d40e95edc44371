package matrix

import "github.com/edp1096/dcsolve/pkg/scalar"

// Gauss solves the system in place by Gaussian elimination with partial
// pivoting; on return RHS holds x.
//
// A pivot column whose largest candidate magnitude is below the scalar
// epsilon is not eliminated and is counted in skipped, as is a final
// diagonal below epsilon. Back substitution still divides by whatever
// diagonal remains, so a skipped column can leave Inf or NaN in x.
func (m *Dense[S]) Gauss() (skipped int) {
	n := m.N
	eps := scalar.Epsilon[S]()

	for k := 0; k < n-1; k++ {
		pivot, best := k, m.At(k, k).Abs()
		for i := k + 1; i < n; i++ {
			if v := m.At(i, k).Abs(); v.Cmp(best) > 0 {
				pivot, best = i, v
			}
		}
		if best.Cmp(eps) < 0 {
			skipped++
			continue
		}
		if pivot != k {
			m.swapRows(k, pivot)
		}

		rowK := m.Row(k)
		for i := k + 1; i < n; i++ {
			rowI := m.Row(i)
			if rowI[k].IsZero() {
				continue
			}
			factor := rowI[k].Div(rowK[k])
			for j := k + 1; j < n; j++ {
				rowI[j] = rowI[j].Sub(factor.Mul(rowK[j]))
			}
			m.RHS[i] = m.RHS[i].Sub(factor.Mul(m.RHS[k]))
		}
	}
	if n > 0 && m.At(n-1, n-1).Abs().Cmp(eps) < 0 {
		skipped++
	}

	for i := n - 1; i >= 0; i-- {
		row := m.Row(i)
		sum := m.RHS[i]
		for j := i + 1; j < n; j++ {
			sum = sum.Sub(row[j].Mul(m.RHS[j]))
		}
		m.RHS[i] = sum.Div(row[i])
	}
	return skipped
}
