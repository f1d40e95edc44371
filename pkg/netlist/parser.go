// Package netlist reads SPICE-like DC netlists and builds them onto a
// circuit.
package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/dcsolve/pkg/analysis"
	"github.com/edp1096/dcsolve/pkg/circuit"
	"github.com/edp1096/dcsolve/pkg/device"
	"github.com/edp1096/dcsolve/pkg/scalar"
)

var (
	ErrSyntax              = errors.New("netlist: syntax error")
	ErrUnknownElement      = errors.New("netlist: unknown element")
	ErrUnsupportedAnalysis = errors.New("netlist: unsupported analysis")
)

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisDC
)

func (a AnalysisType) String() string {
	switch a {
	case AnalysisOP:
		return "op"
	case AnalysisDC:
		return "dc"
	default:
		return fmt.Sprintf("AnalysisType(%d)", int(a))
	}
}

// DCParam is one source of a .dc command. Numbers stay text until the
// scalar type is chosen.
type DCParam struct {
	Source    string
	Start     string
	Stop      string
	Increment string
}

type NetlistData struct {
	Title    string
	Elements []Element
	Analysis AnalysisType
	DCParam  []DCParam // one or two sources, outer first
}

type Element struct {
	Type  device.Kind
	Name  string
	Nodes [2]int
	Value string // empty for a wire without value
}

// unitMap maps SI suffixes, matched case-insensitively, to their factor.
var unitMap = map[string]string{
	"t":   "1e12",  // tera
	"g":   "1e9",   // giga
	"meg": "1e6",   // mega
	"k":   "1e3",   // kilo
	"m":   "1e-3",  // milli
	"u":   "1e-6",  // micro
	"n":   "1e-9",  // nano
	"p":   "1e-12", // pico
	"f":   "1e-15", // femto
}

// Trailing letters after the suffix are units (V, A, ohm) and ignored.
var valueRe = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)(?i:(meg|[tgkmunpf])?[a-z]*)$`)

// Parse reads a netlist. The first line is the title; lines starting with
// '*' are comments, text after '*' is an inline comment and lines starting
// with '+' continue the previous line. Parsing stops at .end.
func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	netlistData := &NetlistData{}

	// Title or comment
	if scanner.Scan() {
		netlistData.Title = strings.TrimPrefix(scanner.Text(), "*")
		netlistData.Title = strings.TrimSpace(netlistData.Title)
	}

	names := make(map[string]bool)
	var currentLine string
	lineNo, startNo := 1, 1
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		err := parseLine(netlistData, names, currentLine)
		currentLine = ""
		if err != nil {
			return fmt.Errorf("line %d: %w", startNo, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "+") {
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: %w: continuation without a line", lineNo, ErrSyntax)
			}
			currentLine += " " + strings.TrimSpace(line[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		if strings.EqualFold(strings.Fields(line)[0], ".end") {
			return netlistData, nil
		}
		currentLine, startNo = line, lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return netlistData, nil
}

func parseLine(netlistData *NetlistData, names map[string]bool, line string) error {
	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}

	elem, err := parseElement(line)
	if err != nil {
		return err
	}
	key := strings.ToUpper(elem.Name)
	if names[key] {
		return fmt.Errorf("%w: duplicate element %s", ErrSyntax, elem.Name)
	}
	names[key] = true
	netlistData.Elements = append(netlistData.Elements, *elem)
	return nil
}

func parseDotOperator(netlistData *NetlistData, line string) error {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".op":
		netlistData.Analysis = AnalysisOP
		netlistData.DCParam = nil

	case ".dc":
		args := fields[1:]
		if len(args) != 4 && len(args) != 8 {
			return fmt.Errorf("%w: .dc needs src start stop incr [src2 start2 stop2 incr2]", ErrSyntax)
		}
		var params []DCParam
		for i := 0; i < len(args); i += 4 {
			p := DCParam{Source: args[i], Start: args[i+1], Stop: args[i+2], Increment: args[i+3]}
			for _, v := range []string{p.Start, p.Stop, p.Increment} {
				if !valueRe.MatchString(v) {
					return fmt.Errorf("%w: invalid value %q", ErrSyntax, v)
				}
			}
			params = append(params, p)
		}
		netlistData.Analysis = AnalysisDC
		netlistData.DCParam = params

	case ".tran", ".ac", ".noise", ".tf":
		return fmt.Errorf("%w: %s", ErrUnsupportedAnalysis, fields[0])

	default:
		return fmt.Errorf("%w: unknown control %s", ErrSyntax, fields[0])
	}
	return nil
}

func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	kind, ok := device.KindFromLetter(fields[0][0])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElement, fields[0])
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: invalid element format: %s", ErrSyntax, line)
	}

	elem := &Element{Type: kind, Name: fields[0]}
	for i, f := range fields[1:3] {
		node, err := parseNode(f)
		if err != nil {
			return nil, err
		}
		elem.Nodes[i] = node
	}

	rest := fields[3:]
	// V1 1 0 DC 5
	if (kind == device.VoltageSource || kind == device.CurrentSource) && len(rest) > 0 && strings.EqualFold(rest[0], "DC") {
		rest = rest[1:]
	}
	switch {
	case len(rest) > 1:
		return nil, fmt.Errorf("%w: unexpected %q after value of %s", ErrSyntax, rest[1], elem.Name)
	case len(rest) == 1:
		if !valueRe.MatchString(rest[0]) {
			return nil, fmt.Errorf("%w: invalid value format: %s", ErrSyntax, rest[0])
		}
		elem.Value = rest[0]
	case kind != device.Wire:
		return nil, fmt.Errorf("%w: missing value of %s", ErrSyntax, elem.Name)
	}
	return elem, nil
}

// parseNode reads a node number; gnd names node 0. The range is checked when
// the device is added.
func parseNode(s string) (int, error) {
	if strings.EqualFold(s, "gnd") {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid node %q", ErrSyntax, s)
	}
	return n, nil
}

// ParseValue - Parse value and factor into S. 4.7k -> 4700
func ParseValue[S scalar.Scalar[S]](val string) (S, error) {
	var zero S
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return zero, fmt.Errorf("%w: invalid value format: %s", ErrSyntax, val)
	}

	num, err := scalar.Parse[S](strings.TrimPrefix(matches[1], "+"))
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	// factor
	if matches[2] != "" {
		factor, err := scalar.Parse[S](unitMap[strings.ToLower(matches[2])])
		if err != nil {
			return zero, err
		}
		num = num.Mul(factor)
	}
	return num, nil
}

// Build adds the elements to ckt in netlist order and returns the device
// ID of every element by name.
func Build[S scalar.Scalar[S]](netlistData *NetlistData, ckt *circuit.Circuit[S]) (map[string]circuit.DeviceID, error) {
	devices := make(map[string]circuit.DeviceID, len(netlistData.Elements))
	for _, elem := range netlistData.Elements {
		var value S
		if elem.Value != "" {
			v, err := ParseValue[S](elem.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", elem.Name, err)
			}
			value = v
		}
		id, err := ckt.AddDevice(elem.Nodes[0], elem.Nodes[1], elem.Type, value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
		devices[elem.Name] = id
	}
	return devices, nil
}

// DCSweeps converts the .dc parameters to sweeps over S.
func DCSweeps[S scalar.Scalar[S]](netlistData *NetlistData) ([]analysis.Sweep[S], error) {
	sweeps := make([]analysis.Sweep[S], 0, len(netlistData.DCParam))
	for _, p := range netlistData.DCParam {
		s := analysis.Sweep[S]{Source: p.Source}
		for _, f := range []struct {
			dst *S
			src string
		}{{&s.Start, p.Start}, {&s.Stop, p.Stop}, {&s.Step, p.Increment}} {
			v, err := ParseValue[S](f.src)
			if err != nil {
				return nil, fmt.Errorf(".dc %s: %w", p.Source, err)
			}
			*f.dst = v
		}
		sweeps = append(sweeps, s)
	}
	return sweeps, nil
}
