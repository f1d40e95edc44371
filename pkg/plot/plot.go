// Package plot draws DC sweep results with gonum/plot.
package plot

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/dcsolve/pkg/analysis"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

var (
	ErrNoSweep = errors.New("plot: results hold no sweep")
	ErrBadSize = errors.New("plot: width and height must be positive")
)

type Option func(*options)

type options struct {
	title    string
	xLabel   string
	width    vg.Length
	height   vg.Length
	currents bool
}

func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithXLabel names the swept source on the x axis.
func WithXLabel(label string) Option {
	return func(o *options) { o.xLabel = label }
}

// WithSize sets the image size Render draws at.
func WithSize(width, height vg.Length) Option {
	return func(o *options) { o.width, o.height = width, height }
}

// WithCurrents adds the I(name) curves to the node voltages.
func WithCurrents() Option {
	return func(o *options) { o.currents = true }
}

// DCSweep builds a chart with one curve per node voltage against SWEEP1.
// For a nested sweep every SWEEP2 value gets its own curve.
func DCSweep[S scalar.Scalar[S]](results map[string][]S, opts ...Option) (*gonumplot.Plot, error) {
	o := newOptions(opts)
	sweep1, ok := results["SWEEP1"]
	if !ok || len(sweep1) == 0 {
		return nil, ErrNoSweep
	}
	sweep2 := results["SWEEP2"]

	// SWEEP2 varies fastest: inner is the run length of each SWEEP1 value.
	inner := len(sweep1)
	for p := range sweep1 {
		if sweep1[p].Cmp(sweep1[0]) != 0 {
			inner = p
			break
		}
	}
	if sweep2 == nil {
		inner = 1
	}

	p := gonumplot.New()
	p.Title.Text = o.title
	p.X.Label.Text = o.xLabel
	p.Y.Label.Text = "V"
	p.Add(plotter.NewGrid())

	curve := 0
	for _, key := range analysis.SortedKeys(results) {
		switch {
		case strings.HasPrefix(key, "V("):
		case strings.HasPrefix(key, "I(") && o.currents:
		default:
			continue
		}
		values := results[key]
		for j := range inner {
			xys := make(plotter.XYs, 0, len(values)/inner)
			for k := j; k < len(values); k += inner {
				xys = append(xys, plotter.XY{X: sweep1[k].Float64(), Y: values[k].Float64()})
			}
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("plot %s: %w", key, err)
			}
			line.Color = plotutil.Color(curve)
			line.Dashes = plotutil.Dashes(curve / len(plotutil.DefaultColors))
			curve++

			p.Add(line)
			label := key
			if sweep2 != nil {
				label = fmt.Sprintf("%s @ %s", key, sweep2[j])
			}
			p.Legend.Add(label, line)
		}
	}
	if curve == 0 {
		return nil, ErrNoSweep
	}
	p.Legend.Top = true
	return p, nil
}

// Render writes the chart of results in format (png, svg, pdf, ...).
func Render[S scalar.Scalar[S]](w io.Writer, results map[string][]S, format string, opts ...Option) error {
	o := newOptions(opts)
	if o.width <= 0 || o.height <= 0 {
		return fmt.Errorf("%w: %v x %v", ErrBadSize, o.width, o.height)
	}
	p, err := DCSweep(results, opts...)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(o.width, o.height, format)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func newOptions(opts []Option) options {
	o := options{xLabel: "SWEEP1", width: 6 * vg.Inch, height: 4 * vg.Inch}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
