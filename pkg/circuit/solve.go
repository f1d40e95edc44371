package circuit

import (
	"context"
	"fmt"

	"github.com/edp1096/dcsolve/internal/consts"
	"github.com/edp1096/dcsolve/pkg/arena"
	"github.com/edp1096/dcsolve/pkg/device"
	"github.com/edp1096/dcsolve/pkg/matrix"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

type State uint8

const (
	Idle State = iota
	Assembling
	Solving
	Scattering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Assembling:
		return "assembling"
	case Solving:
		return "solving"
	case Scattering:
		return "scattering"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Report describes the last solve.
type Report struct {
	Size         int // rows of the reduced system
	Skipped      int // pivot columns below epsilon
	Ignored      int // voltage sources without a grounded terminal
	ScratchBytes int // front region used while solving
	FrontUsed    int // front region left after the solve, always zero
}

func (c *Circuit[S]) State() State   { return c.state }
func (c *Circuit[S]) Report() Report { return c.report }

// forcedNodes records, per node, the voltage source record that fixes its
// potential, or arena.Nil.
type forcedNodes [consts.MaxNodes]arena.Ref

// Solve recomputes Voltage and the current of every device. It fails only
// when the arena cannot hold the n*n + n scratch scalars; Voltage is zero
// in that case.
//
// A pivot column below epsilon is skipped, not reported as an error, which
// can leave NaN or Inf in Voltage. Report().Skipped counts such columns.
func (c *Circuit[S]) Solve() (err error) {
	ctx := context.Background()
	var zero S
	for i := range c.Voltage {
		c.Voltage[i] = zero
	}
	c.report = Report{}

	c.setState(ctx, Assembling)
	defer func() {
		c.report.ScratchBytes = c.arena.Stats().FrontUsed
		c.arena.ResetFront()
		c.report.FrontUsed = c.arena.Stats().FrontUsed
		c.setState(ctx, Idle)
		c.logger.LogSolve(ctx, c.report.Size, c.report.Skipped, c.report.ScratchBytes, err)
	}()

	idx := matrix.NewIndexMap(c.active)
	c.report.Size = idx.N

	var forced forcedNodes
	sys, ignored, err := c.assemble(&idx, &forced)
	c.report.Ignored = ignored
	if err != nil {
		c.clearCurrents()
		return fmt.Errorf("solve: %w", err)
	}
	if ignored > 0 {
		c.logger.WarnContext(ctx, "floating voltage sources ignored", "count", ignored)
	}

	c.setState(ctx, Solving)
	c.report.Skipped = sys.Gauss()

	c.setState(ctx, Scattering)
	for i := range idx.N {
		node := idx.IndexToNode[i]
		if ref := forced[node]; ref != arena.Nil {
			c.Voltage[node] = c.record(ref).Value
			continue
		}
		c.Voltage[node] = sys.RHS[i]
	}
	c.updateCurrents(ctx)
	return nil
}

func (c *Circuit[S]) setState(ctx context.Context, s State) {
	c.state = s
	c.logger.DebugContext(ctx, "solve state", "state", s.String())
}

// assemble builds the reduced system in front-region scratch memory.
//
// Every row is written only from the records of its own node, so each
// physical device contributes each term once. A grounded voltage source
// replaces the row after all other stamps of that row; when several share
// a node, the first one in list order wins.
func (c *Circuit[S]) assemble(idx *matrix.IndexMap, forced *forcedNodes) (sys *matrix.Dense[S], ignored int, err error) {
	for i := range forced {
		forced[i] = arena.Nil
	}
	n := idx.N
	g, err := arena.Scratch[S](c.arena, n*n)
	if err != nil {
		return nil, 0, err
	}
	rhs, err := arena.Scratch[S](c.arena, n)
	if err != nil {
		return nil, 0, err
	}
	sys = &matrix.Dense[S]{N: n, G: g, RHS: rhs}

	for i := range n {
		node := idx.IndexToNode[i]
		for ref := c.heads[node]; ref != arena.Nil; {
			d := c.record(ref)
			switch {
			case d.Kind != device.VoltageSource:
				d.Stamp(sys, i, idx.Index(d.Target))
			case d.Grounded():
				if forced[node] == arena.Nil {
					forced[node] = ref
				}
			case !d.Reverse:
				ignored++
			}
			ref = d.Next
		}
		if ref := forced[node]; ref != arena.Nil {
			c.record(ref).Constrain(sys, i)
		}
	}
	return sys, ignored, nil
}

// updateCurrents fills Current of every record from the solved voltages.
// A grounded voltage source carries the current KCL leaves for it at its
// non-ground node; it is zero when several sources share that node.
func (c *Circuit[S]) updateCurrents(ctx context.Context) {
	for node := range consts.MaxNodes {
		var sum S
		source, sources := arena.Nil, 0
		for ref := c.heads[node]; ref != arena.Nil; {
			d := c.record(ref)
			d.Current = d.BranchCurrent(c.Voltage[d.Owner], c.Voltage[d.Target])
			sum = sum.Add(d.Current)
			if node != consts.Ground && d.Grounded() {
				source = ref
				sources++
			}
			ref = d.Next
		}
		switch {
		case sources == 1:
			d := c.record(source)
			d.Current = sum.Neg()
			c.record(d.Twin).Current = sum
		case sources > 1:
			c.logger.WithNode(node).WarnContext(ctx, "voltage sources share a node, currents left at zero", "sources", sources)
		}
	}
}

func (c *Circuit[S]) clearCurrents() {
	var zero S
	for node := range consts.MaxNodes {
		for ref := c.heads[node]; ref != arena.Nil; ref = c.record(ref).Next {
			c.record(ref).Current = zero
		}
	}
}

// System assembles the reduced system without solving it and returns a
// binary64 copy together with the node of every row.
func (c *Circuit[S]) System() (*matrix.Dense[scalar.Float], matrix.IndexMap, error) {
	defer c.arena.ResetFront()

	idx := matrix.NewIndexMap(c.active)
	var forced forcedNodes
	sys, _, err := c.assemble(&idx, &forced)
	if err != nil {
		return nil, idx, fmt.Errorf("system: %w", err)
	}
	return sys.Float64(), idx, nil
}
