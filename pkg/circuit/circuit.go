// Package circuit models a DC netlist as per-node adjacency lists stored in
// an arena and solves node voltages by nodal analysis.
//
// A Circuit is not safe for concurrent use. Clone it to solve variants of
// the same netlist in parallel.
package circuit

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/edp1096/dcsolve/internal/consts"
	"github.com/edp1096/dcsolve/internal/logging"
	"github.com/edp1096/dcsolve/pkg/arena"
	"github.com/edp1096/dcsolve/pkg/device"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

var (
	ErrNodeOutOfBounds = errors.New("circuit: node out of bounds")
	ErrSelfLoop        = errors.New("circuit: device terminals on the same node")
	ErrInvalidKind     = errors.New("circuit: invalid device kind")
	ErrUnknownDevice   = errors.New("circuit: unknown device")
	ErrOutOfMemory     = arena.ErrOutOfMemory
)

// DeviceID identifies a physical device: the arena reference of the record
// stored under its first terminal.
type DeviceID arena.Ref

type Option func(*options)

type options struct {
	name   string
	logger *logging.Logger
}

// WithName tags log records of the circuit with name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

type Circuit[S scalar.Scalar[S]] struct {
	// Voltage holds the potential of every node after the last Solve.
	// Entries of inactive nodes and ground are zero.
	Voltage [consts.MaxNodes]S

	name    string
	arena   *arena.Arena
	heads   [consts.MaxNodes]arena.Ref
	active  uint32
	devices int
	first   arena.Ref // first record; records follow at a fixed stride
	state   State
	report  Report
	logger  *logging.Logger
}

// New creates an empty circuit whose devices and solve scratch space live in
// buf. S must be free of Go pointers.
func New[S scalar.Scalar[S]](buf []byte, opts ...Option) (*Circuit[S], error) {
	if err := arena.CheckType[device.Device[S]](); err != nil {
		return nil, err
	}
	o := options{logger: logging.NoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if o.name != "" {
		logger = logger.WithCircuit(o.name)
	}

	c := &Circuit[S]{
		name:   o.name,
		arena:  arena.New(buf),
		first:  arena.Nil,
		logger: logger,
	}
	for i := range c.heads {
		c.heads[i] = arena.Nil
	}
	return c, nil
}

func (c *Circuit[S]) Name() string { return c.name }

// AddDevice connects a device of the given kind between nodes a and b.
// On error the circuit is left unchanged.
func (c *Circuit[S]) AddDevice(a, b int, kind device.Kind, value S) (DeviceID, error) {
	id, err := c.addDevice(a, b, kind, value)
	c.logger.LogAddDevice(context.Background(), kind.String(), a, b, err)
	return id, err
}

func (c *Circuit[S]) addDevice(a, b int, kind device.Kind, value S) (DeviceID, error) {
	switch {
	case a < 0 || a >= consts.MaxNodes || b < 0 || b >= consts.MaxNodes:
		return DeviceID(arena.Nil), fmt.Errorf("%w: %d-%d (max %d)", ErrNodeOutOfBounds, a, b, consts.MaxNodes-1)
	case a == b:
		return DeviceID(arena.Nil), fmt.Errorf("%w: node %d", ErrSelfLoop, a)
	case !kind.Valid():
		return DeviceID(arena.Nil), fmt.Errorf("%w: %d", ErrInvalidKind, kind)
	}

	ref, recs, err := arena.PlaceN[device.Device[S]](c.arena, 2)
	if err != nil {
		return DeviceID(arena.Nil), err
	}
	twin := ref + arena.Ref(arena.SizeOf[device.Device[S]](1))

	recs[0] = device.Device[S]{
		Value:  value,
		Next:   c.heads[a],
		Twin:   twin,
		Kind:   kind,
		Owner:  uint8(a),
		Target: uint8(b),
	}
	recs[1] = device.Device[S]{
		Value:   value,
		Next:    c.heads[b],
		Twin:    ref,
		Kind:    kind,
		Owner:   uint8(b),
		Target:  uint8(a),
		Reverse: true,
	}
	c.heads[a], c.heads[b] = ref, twin
	c.active |= 1<<a | 1<<b
	if c.devices == 0 {
		c.first = ref
	}
	c.devices++
	return DeviceID(ref), nil
}

func (c *Circuit[S]) record(ref arena.Ref) *device.Device[S] {
	return arena.At[device.Device[S]](c.arena, ref)
}

// lookup resolves id to its first-terminal record.
func (c *Circuit[S]) lookup(id DeviceID) (*device.Device[S], error) {
	ref := arena.Ref(id)
	stride := arena.Ref(arena.SizeOf[device.Device[S]](1))
	last := c.first + stride*arena.Ref(2*c.devices)
	if c.devices == 0 || ref < c.first || ref >= last || (ref-c.first)%(2*stride) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDevice, id)
	}
	return c.record(ref), nil
}

// Device returns a copy of the first-terminal record of id.
func (c *Circuit[S]) Device(id DeviceID) (device.Device[S], error) {
	d, err := c.lookup(id)
	if err != nil {
		return device.Device[S]{}, err
	}
	return *d, nil
}

// SetValue changes the value of both records of id. Voltages keep their
// old values until the next Solve.
func (c *Circuit[S]) SetValue(id DeviceID, value S) error {
	d, err := c.lookup(id)
	if err != nil {
		return err
	}
	d.Value = value
	c.record(d.Twin).Value = value
	return nil
}

// Current returns the current from the first to the second terminal of id
// as of the last Solve.
func (c *Circuit[S]) Current(id DeviceID) (S, error) {
	d, err := c.lookup(id)
	if err != nil {
		var zero S
		return zero, err
	}
	return d.Current, nil
}

// Devices iterates the records stored under node, most recently added
// first. Each record is yielded with the ID of its device. The list must not
// be modified during iteration.
func (c *Circuit[S]) Devices(node int) iter.Seq2[DeviceID, device.Device[S]] {
	return func(yield func(DeviceID, device.Device[S]) bool) {
		if node < 0 || node >= consts.MaxNodes {
			return
		}
		for ref := c.heads[node]; ref != arena.Nil; {
			d := *c.record(ref)
			id := DeviceID(ref)
			if d.Reverse {
				id = DeviceID(d.Twin)
			}
			if !yield(id, d) {
				return
			}
			ref = d.Next
		}
	}
}

// NumDevices returns the number of physical devices.
func (c *Circuit[S]) NumDevices() int { return c.devices }

// ActiveNodes returns the mask of nodes with at least one device.
func (c *Circuit[S]) ActiveNodes() uint32 { return c.active }

// IsActive reports whether node has at least one device.
func (c *Circuit[S]) IsActive(node int) bool {
	return node >= 0 && node < consts.MaxNodes && c.active&(1<<node) != 0
}

// ArenaStats reports the usage of the backing buffer.
func (c *Circuit[S]) ArenaStats() arena.Stats { return c.arena.Stats() }

// Clone returns an independent deep copy, including a new backing buffer of
// the same size. Device IDs remain valid in the copy.
func (c *Circuit[S]) Clone() *Circuit[S] {
	cp := *c
	cp.arena = c.arena.Clone()
	cp.state = Idle
	return &cp
}
