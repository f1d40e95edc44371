// Package device holds the record a circuit stores for each terminal of a
// two-terminal component, and the DC stamps of every component kind.
package device

import (
	"fmt"

	"github.com/edp1096/dcsolve/pkg/arena"
	"github.com/edp1096/dcsolve/pkg/matrix"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

type Kind uint8

const (
	Wire Kind = iota
	VoltageSource
	CurrentSource
	Resistor
	Capacitor // reserved for transient analysis, no DC stamp
	Inductor  // reserved for transient analysis, no DC stamp
	numKinds
)

var kindNames = [numKinds]string{"Wire", "VoltageSource", "CurrentSource", "Resistor", "Capacitor", "Inductor"}

// kindLetters are the SPICE element letters.
var kindLetters = [numKinds]byte{'W', 'V', 'I', 'R', 'C', 'L'}

func (k Kind) Valid() bool { return k < numKinds }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Letter returns the netlist element letter of k.
func (k Kind) Letter() byte {
	if !k.Valid() {
		return '?'
	}
	return kindLetters[k]
}

// KindFromLetter maps a netlist element letter, in either case, to a Kind.
func KindFromLetter(c byte) (Kind, bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for k, l := range kindLetters {
		if l == c {
			return Kind(k), true
		}
	}
	return 0, false
}

// Device is one terminal of a physical device, stored in the list of
// Owner and pointing at Target. Both terminals of a device share Value;
// Current is the current flowing from Owner to Target through the device
// as of the last solve.
//
// Records live in arena memory, so Device must stay free of Go pointers.
type Device[S scalar.Scalar[S]] struct {
	Value   S
	Current S
	Next    arena.Ref // next record in Owner's list
	Twin    arena.Ref // the record of the other terminal
	Kind    Kind
	Target  uint8
	Owner   uint8
	Reverse bool // set on the record stored under the second terminal
}

func (d *Device[S]) String() string {
	a, b := d.Owner, d.Target
	if d.Reverse {
		a, b = b, a
	}
	return fmt.Sprintf("%c %d %d %s", d.Kind.Letter(), a, b, d.Value)
}

// Stamp adds the record's contribution to the row of its owner. self is
// the owner's reduced index, other the target's or matrix.NoIndex for
// ground. Voltage sources are applied separately through Constrain.
func (d *Device[S]) Stamp(m matrix.DeviceMatrix[S], self, other int) {
	switch d.Kind {
	case Resistor:
		d.stampResistor(m, self, other)
	case CurrentSource:
		d.stampCurrentSource(m, self)
	}
}

// BranchCurrent returns the current from Owner to Target given both node
// voltages. Voltage sources return zero; their current follows from KCL.
func (d *Device[S]) BranchCurrent(vOwner, vTarget S) S {
	switch d.Kind {
	case Resistor:
		return d.resistorCurrent(vOwner, vTarget)
	case CurrentSource:
		return d.sourceCurrent()
	default:
		var zero S
		return zero
	}
}
