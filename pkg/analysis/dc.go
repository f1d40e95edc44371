package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/edp1096/dcsolve/internal/consts"
	"github.com/edp1096/dcsolve/pkg/circuit"
	"github.com/edp1096/dcsolve/pkg/device"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

// Sweep steps the value of one voltage or current source from Start to
// Stop inclusive.
type Sweep[S scalar.Scalar[S]] struct {
	Source string
	Start  S
	Stop   S
	Step   S
}

// Values returns Start + k*Step for every k that does not pass Stop.
func (s Sweep[S]) Values() ([]S, error) {
	var zero S
	if s.Step.Cmp(zero) <= 0 {
		return nil, fmt.Errorf("%w: %s step %s must be positive", ErrBadSweep, s.Source, s.Step)
	}
	if s.Stop.Cmp(s.Start) < 0 {
		return nil, fmt.Errorf("%w: %s stop %s below start %s", ErrBadSweep, s.Source, s.Stop, s.Start)
	}
	span := s.Stop.Sub(s.Start).Div(s.Step).Float64()
	if math.IsNaN(span) || span >= consts.MaxSweepPoints {
		return nil, fmt.Errorf("%w: %s has more than %d points", ErrBadSweep, s.Source, consts.MaxSweepPoints)
	}

	n := int(math.Floor(span+1e-9)) + 1
	values := make([]S, n)
	for k := range values {
		values[k] = s.Start.Add(s.Step.Mul(scalar.FromInt[S](k)))
	}
	return values, nil
}

type DCSweep[S scalar.Scalar[S]] struct {
	BaseAnalysis[S]
	sweeps    []Sweep[S]
	sweepVals [][]S
	sources   []circuit.DeviceID
	points    int
	skipped   atomic.Int64
}

// NewDCSweep sweeps one source, or two nested sources with the second one
// varying fastest.
func NewDCSweep[S scalar.Scalar[S]](sweeps []Sweep[S], opts ...Option) (*DCSweep[S], error) {
	if len(sweeps) == 0 || len(sweeps) > 2 {
		return nil, fmt.Errorf("%w: %d sweep sources, want 1 or 2", ErrBadSweep, len(sweeps))
	}

	dc := &DCSweep[S]{
		BaseAnalysis: *NewBaseAnalysis[S](opts...),
		sweeps:       sweeps,
		sweepVals:    make([][]S, len(sweeps)),
		points:       1,
	}
	for i, s := range sweeps {
		values, err := s.Values()
		if err != nil {
			return nil, err
		}
		dc.sweepVals[i] = values
		dc.points *= len(values)
	}
	if dc.points > consts.MaxSweepPoints {
		return nil, fmt.Errorf("%w: %d points, max %d", ErrBadSweep, dc.points, consts.MaxSweepPoints)
	}
	return dc, nil
}

func (dc *DCSweep[S]) Setup(ckt *circuit.Circuit[S], devices map[string]circuit.DeviceID) error {
	if err := dc.BaseAnalysis.Setup(ckt, devices); err != nil {
		return err
	}

	sources := make([]circuit.DeviceID, len(dc.sweeps))
	for i, s := range dc.sweeps {
		id, ok := lookupSource(devices, s.Source)
		if !ok {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, s.Source)
		}
		d, err := ckt.Device(id)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSourceNotFound, s.Source, err)
		}
		if d.Kind != device.VoltageSource && d.Kind != device.CurrentSource {
			return fmt.Errorf("%w: %s is a %s", ErrSourceNotFound, s.Source, d.Kind)
		}
		sources[i] = id
	}
	dc.sources = sources
	return nil
}

// lookupSource finds name in devices, ignoring case when there is no exact
// match. Netlist element names are case-insensitive.
func lookupSource(devices map[string]circuit.DeviceID, name string) (circuit.DeviceID, bool) {
	if id, ok := devices[name]; ok {
		return id, true
	}
	for n, id := range devices {
		if strings.EqualFold(n, name) {
			return id, true
		}
	}
	return 0, false
}

// Skipped returns the near-singular pivot columns skipped over all points
// of the last Execute.
func (dc *DCSweep[S]) Skipped() int { return int(dc.skipped.Load()) }

// Points returns the number of solves Execute performs.
func (dc *DCSweep[S]) Points() int { return dc.points }

func (dc *DCSweep[S]) Execute() error {
	return dc.ExecuteContext(context.Background())
}

// ExecuteContext solves all sweep points, splitting them into contiguous
// chunks solved concurrently on clones of the circuit. The circuit itself
// is not modified.
func (dc *DCSweep[S]) ExecuteContext(ctx context.Context) error {
	if dc.Circuit == nil || dc.sources == nil {
		return ErrNotSetup
	}
	dc.skipped.Store(0)

	ps := dc.outputs()
	columns := make([][]S, len(ps))
	for i := range columns {
		columns[i] = make([]S, dc.points)
	}
	sweepCols := make([][]S, len(dc.sweeps))
	for i := range sweepCols {
		sweepCols[i] = make([]S, dc.points)
	}

	workers := min(dc.workers, dc.points)
	chunk := (dc.points + workers - 1) / workers
	dc.logger.DebugContext(ctx, "dc sweep",
		"points", dc.points,
		"workers", workers,
		"chunk", chunk,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < dc.points; start += chunk {
		end := min(start+chunk, dc.points)
		g.Go(func() error {
			ckt := dc.Circuit.Clone()
			row := make([]S, len(ps))
			for p := start; p < end; p++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for i, v := range dc.pointValues(p) {
					if err := ckt.SetValue(dc.sources[i], v); err != nil {
						return err
					}
					sweepCols[i][p] = v
				}
				if err := ckt.Solve(); err != nil {
					return fmt.Errorf("dc sweep point %d: %w", p, err)
				}
				if n := ckt.Report().Skipped; n > 0 {
					dc.skipped.Add(int64(n))
				}
				if err := read(ckt, ps, row); err != nil {
					return fmt.Errorf("dc sweep point %d: %w", p, err)
				}
				for i, v := range row {
					columns[i][p] = v
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, col := range sweepCols {
		dc.results[fmt.Sprintf("SWEEP%d", i+1)] = col
	}
	for i, p := range ps {
		dc.results[p.key] = columns[i]
	}
	return nil
}

// pointValues maps a flat point index to one value per swept source.
func (dc *DCSweep[S]) pointValues(p int) []S {
	if len(dc.sweepVals) == 1 {
		return []S{dc.sweepVals[0][p]}
	}
	inner := len(dc.sweepVals[1])
	return []S{dc.sweepVals[0][p/inner], dc.sweepVals[1][p%inner]}
}
