package matrix

import (
	"fmt"
	"io"
	"strings"

	"github.com/edp1096/dcsolve/pkg/scalar"
)

// Dense is an n x n row-major system G·x = RHS over caller-owned storage.
type Dense[S scalar.Scalar[S]] struct {
	N   int
	G   []S // len N*N
	RHS []S // len N
}

// NewDense wraps g and rhs. It panics when their lengths do not match n.
func NewDense[S scalar.Scalar[S]](n int, g, rhs []S) *Dense[S] {
	if len(g) != n*n || len(rhs) != n {
		panic(fmt.Sprintf("matrix: dense storage %d/%d does not fit n=%d", len(g), len(rhs), n))
	}
	return &Dense[S]{N: n, G: g, RHS: rhs}
}

func (m *Dense[S]) At(i, j int) S     { return m.G[i*m.N+j] }
func (m *Dense[S]) Set(i, j int, v S) { m.G[i*m.N+j] = v }
func (m *Dense[S]) Row(i int) []S     { return m.G[i*m.N : (i+1)*m.N] }
func (m *Dense[S]) AddRHS(i int, v S) { m.RHS[i] = m.RHS[i].Add(v) }

func (m *Dense[S]) swapRows(a, b int) {
	ra, rb := m.Row(a), m.Row(b)
	for j := range ra {
		ra[j], rb[j] = rb[j], ra[j]
	}
	m.RHS[a], m.RHS[b] = m.RHS[b], m.RHS[a]
}

func (m *Dense[S]) AddElement(i, j int, v S) {
	k := i*m.N + j
	m.G[k] = m.G[k].Add(v)
}

func (m *Dense[S]) ReplaceRow(i int, v S) {
	row := m.Row(i)
	var zero S
	for j := range row {
		row[j] = zero
	}
	row[i] = scalar.One[S]()
	m.RHS[i] = v
}

// Float64 copies the system into a heap-allocated binary64 Dense.
func (m *Dense[S]) Float64() *Dense[scalar.Float] {
	out := &Dense[scalar.Float]{
		N:   m.N,
		G:   make([]scalar.Float, len(m.G)),
		RHS: make([]scalar.Float, len(m.RHS)),
	}
	for k, v := range m.G {
		out.G[k] = scalar.Float(v.Float64())
	}
	for k, v := range m.RHS {
		out.RHS[k] = scalar.Float(v.Float64())
	}
	return out
}

// Fprint writes the system one equation per line.
func (m *Dense[S]) Fprint(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "System (%dx%d):\n", m.N, m.N)
	for i := range m.N {
		for j := range m.N {
			v := m.At(i, j)
			if v.IsZero() {
				continue
			}
			fmt.Fprintf(&sb, "  %s*x%d", v, j+1)
		}
		fmt.Fprintf(&sb, " = %s\n", m.RHS[i])
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
