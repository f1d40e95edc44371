package matrix

import (
	"errors"
	"fmt"
	"io"

	"github.com/edp1096/sparse"

	"github.com/edp1096/dcsolve/pkg/scalar"
)

// ErrSingular is returned by the sparse backend when factorization finds
// a zero pivot.
var ErrSingular = errors.New("matrix: singular system")

// SparseMatrix is a binary64 system backed by a Markowitz-ordered sparse LU
// factorization. It implements DeviceMatrix[float64] with 0-based indices.
type SparseMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	elements [][]*sparse.Element // 0-based, resolved once before ordering
	values   []float64           // row-major copy of the stamped system
	rhs      []float64           // 1-based
	solution []float64
}

func NewSparseMatrix(size int) (*SparseMatrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Complex:        false,
		Expandable:     true,
		Translate:      false,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	m := &SparseMatrix{
		Size:   size,
		matrix: mat,
		values: make([]float64, size*size),
		rhs:    make([]float64, size+1),
	}
	m.setupElements()
	return m, nil
}

// setupElements creates every element up front. Factor reorders the
// matrix, after which GetElement no longer accepts external indices.
func (m *SparseMatrix) setupElements() {
	m.elements = make([][]*sparse.Element, m.Size)
	for i := range m.Size {
		m.elements[i] = make([]*sparse.Element, m.Size)
		for j := range m.Size {
			m.elements[i][j] = m.matrix.GetElement(int64(i+1), int64(j+1))
		}
	}
}

func (m *SparseMatrix) inBounds(i int) bool { return i >= 0 && i < m.Size }

func (m *SparseMatrix) AddElement(i, j int, value float64) {
	if !m.inBounds(i) || !m.inBounds(j) {
		panic(fmt.Sprintf("matrix: index out of bounds (i=%d, j=%d, size=%d)", i, j, m.Size))
	}
	m.elements[i][j].Real += value
	m.values[i*m.Size+j] += value
}

func (m *SparseMatrix) AddRHS(i int, value float64) {
	if !m.inBounds(i) {
		panic(fmt.Sprintf("matrix: rhs index out of bounds (i=%d, size=%d)", i, m.Size))
	}
	m.rhs[i+1] += value
}

func (m *SparseMatrix) ReplaceRow(i int, value float64) {
	if !m.inBounds(i) {
		panic(fmt.Sprintf("matrix: row index out of bounds (i=%d, size=%d)", i, m.Size))
	}
	for j, e := range m.elements[i] {
		e.Real = 0
		m.values[i*m.Size+j] = 0
	}
	m.elements[i][i].Real = 1
	m.values[i*m.Size+i] = 1
	m.rhs[i+1] = value
}

func (m *SparseMatrix) Solve() error {
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}
	m.solution = solution
	return nil
}

// Solution returns x with 0-based indices. It is nil before Solve.
func (m *SparseMatrix) Solution() []float64 {
	if m.solution == nil {
		return nil
	}
	return m.solution[1 : m.Size+1]
}

// Fprint writes the non-zero terms of every equation as stamped, also
// after Solve has replaced the elements with their LU factors.
func (m *SparseMatrix) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Circuit Equations (%dx%d):\n", m.Size, m.Size)
	for i := range m.Size {
		fmt.Fprintf(w, "Equation %d:", i+1)
		for j := range m.Size {
			if v := m.values[i*m.Size+j]; v != 0 {
				fmt.Fprintf(w, "  %+g*x%d", v, j+1)
			}
		}
		fmt.Fprintf(w, " = %g\n", m.rhs[i+1])
	}
}

func (m *SparseMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
		m.elements = nil
	}
}

// SolveSparse solves a copy of sys with the sparse backend and returns x.
// sys itself is left unchanged.
func SolveSparse(sys *Dense[scalar.Float]) ([]float64, error) {
	if sys.N == 0 {
		return []float64{}, nil
	}
	m, err := NewSparseMatrix(sys.N)
	if err != nil {
		return nil, err
	}
	defer m.Destroy()

	for i := range sys.N {
		for j := range sys.N {
			if v := sys.At(i, j); v != 0 {
				m.AddElement(i, j, float64(v))
			}
		}
		m.AddRHS(i, float64(sys.RHS[i]))
	}
	if err := m.Solve(); err != nil {
		return nil, err
	}
	return append([]float64(nil), m.Solution()...), nil
}
