// Package analysis runs the DC analyses of a netlist on a circuit: the
// operating point, source sweeps and a cross-check against a sparse solver.
package analysis

import (
	"cmp"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/edp1096/dcsolve/internal/consts"
	"github.com/edp1096/dcsolve/internal/logging"
	"github.com/edp1096/dcsolve/pkg/circuit"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

var (
	ErrSourceNotFound = errors.New("analysis: sweep source not found")
	ErrBadSweep       = errors.New("analysis: invalid sweep range")
	ErrMismatch       = errors.New("analysis: dense and sparse solutions differ")
	ErrNotSetup       = errors.New("analysis: circuit not set")
)

type Analysis[S scalar.Scalar[S]] interface {
	Setup(ckt *circuit.Circuit[S], devices map[string]circuit.DeviceID) error
	Execute() error
	GetResults() map[string][]S
}

type Option func(*options)

type options struct {
	workers int
	logger  *logging.Logger
}

// WithWorkers bounds the number of sweep points solved concurrently.
// Values below one select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{logger: logging.NoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

type BaseAnalysis[S scalar.Scalar[S]] struct {
	Circuit *circuit.Circuit[S]
	Devices map[string]circuit.DeviceID // named devices reported as I(name)
	results map[string][]S              // key: V(n), I(name) or SWEEPn
	options
}

func NewBaseAnalysis[S scalar.Scalar[S]](opts ...Option) *BaseAnalysis[S] {
	return &BaseAnalysis[S]{
		results: make(map[string][]S),
		options: newOptions(opts),
	}
}

func (a *BaseAnalysis[S]) Setup(ckt *circuit.Circuit[S], devices map[string]circuit.DeviceID) error {
	if ckt == nil {
		return ErrNotSetup
	}
	a.Circuit = ckt
	a.Devices = devices
	return nil
}

func (a *BaseAnalysis[S]) GetResults() map[string][]S {
	return a.results
}

// output is one reported quantity: a node voltage or a device current.
type output struct {
	key  string
	node int
	id   circuit.DeviceID
	dev  bool
}

// outputs lists the V(n) of active non-ground nodes and the I(name) of
// named devices.
func (a *BaseAnalysis[S]) outputs() []output {
	var ps []output
	for node := 1; node < consts.MaxNodes; node++ {
		if a.Circuit.IsActive(node) {
			ps = append(ps, output{key: VoltageKey(node), node: node})
		}
	}
	names := make([]string, 0, len(a.Devices))
	for name := range a.Devices {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		ps = append(ps, output{key: CurrentKey(name), id: a.Devices[name], dev: true})
	}
	return ps
}

// read stores the value of every output of a solved circuit in out.
func read[S scalar.Scalar[S]](ckt *circuit.Circuit[S], ps []output, out []S) error {
	for i, p := range ps {
		if !p.dev {
			out[i] = ckt.Voltage[p.node]
			continue
		}
		cur, err := ckt.Current(p.id)
		if err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
		out[i] = cur
	}
	return nil
}

func VoltageKey(node int) string    { return "V(" + strconv.Itoa(node) + ")" }
func CurrentKey(name string) string { return "I(" + name + ")" }

// SortedKeys orders result keys for display: sweep variables, node
// voltages by node number, then device currents by name.
func SortedKeys[S any](results map[string][]S) []string {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	rank := func(k string) int {
		switch {
		case strings.HasPrefix(k, "SWEEP"):
			return 0
		case strings.HasPrefix(k, "V("):
			return 1
		default:
			return 2
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		if rank(a) == 1 {
			na, _ := strconv.Atoi(a[2 : len(a)-1])
			nb, _ := strconv.Atoi(b[2 : len(b)-1])
			return cmp.Compare(na, nb)
		}
		return strings.Compare(a, b)
	})
	return keys
}
