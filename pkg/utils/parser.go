package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

// Regular expressions for parsing BENCH format
var (
	inputRegex  = regexp.MustCompile(`^INPUT\s*\(\s*([^()\s]+)\s*\)$`)
	outputRegex = regexp.MustCompile(`^OUTPUT\s*\(\s*([^()\s]+)\s*\)$`)
	gateRegex   = regexp.MustCompile(`^([^=()\s]+)\s*=\s*(\w+)\s*\(([^()]*)\)$`)
)

// ParseBenchFile reads a circuit description in BENCH format and returns a
// levelized Circuit.
func ParseBenchFile(filename string, limits circuit.Limits) (*circuit.Circuit, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return ParseBench(file, name, limits)
}

// ParseBench parses a BENCH netlist. A DFF splits the circuit at a register:
// its output net becomes a pseudo primary input and its data net a pseudo
// primary output, so the result is purely combinational.
func ParseBench(r io.Reader, name string, limits circuit.Limits) (*circuit.Circuit, error) {
	c := circuit.NewCircuitWithLimits(name, limits)
	defined := make(map[int]bool)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var err error
		switch {
		case inputRegex.MatchString(line):
			err = parseInput(c, inputRegex.FindStringSubmatch(line)[1], defined)
		case outputRegex.MatchString(line):
			err = parseOutput(c, outputRegex.FindStringSubmatch(line)[1])
		case gateRegex.MatchString(line):
			m := gateRegex.FindStringSubmatch(line)
			err = parseGate(c, m[1], m[2], splitNames(m[3]), defined)
		default:
			err = &circuit.NetlistError{Kind: circuit.ErrMalformedNetlist, Msg: fmt.Sprintf("cannot parse %q", line)}
		}
		if err != nil {
			return nil, atLine(err, lineNo)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := c.Levelize(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseInput(c *circuit.Circuit, name string, defined map[int]bool) error {
	g, err := c.Ensure(name)
	if err != nil {
		return err
	}
	if defined[g.ID] {
		return &circuit.NetlistError{Kind: circuit.ErrMalformedNetlist, Gate: name,
			Msg: "net is already declared or driven by a gate"}
	}
	defined[g.ID] = true
	c.MarkInput(g.ID)
	return nil
}

func parseOutput(c *circuit.Circuit, name string) error {
	g, err := c.Ensure(name)
	if err != nil {
		return err
	}
	c.MarkOutput(g.ID)
	return nil
}

func parseGate(c *circuit.Circuit, name, token string, inputs []string, defined map[int]bool) error {
	g, err := c.Ensure(name)
	if err != nil {
		return err
	}
	if defined[g.ID] {
		if g.IsInput() {
			return &circuit.NetlistError{Kind: circuit.ErrMalformedNetlist, Gate: name,
				Msg: "primary input appears at the output of a gate"}
		}
		return &circuit.NetlistError{Kind: circuit.ErrMalformedNetlist, Gate: name, Msg: "gate defined twice"}
	}
	defined[g.ID] = true

	token = strings.ToUpper(token)
	switch token {
	case "DFF":
		if len(inputs) != 1 {
			return &circuit.NetlistError{Kind: circuit.ErrMalformedNetlist, Gate: name,
				Msg: fmt.Sprintf("DFF needs exactly one input, has %d", len(inputs))}
		}
		c.MarkPseudoInput(g.ID)
		data, err := c.Ensure(inputs[0])
		if err != nil {
			return err
		}
		c.MarkPseudoOutput(data.ID)
		return nil
	case "PPI":
		c.MarkPseudoInput(g.ID)
		return nil
	}

	gateType, inverted, ok := parseGateType(token)
	if !ok {
		return &circuit.NetlistError{Kind: circuit.ErrMalformedNetlist, Gate: name,
			Msg: fmt.Sprintf("unknown gate type %q", token)}
	}
	g.Type = gateType
	g.Inverted = inverted

	for _, in := range inputs {
		src, err := c.Ensure(in)
		if err != nil {
			return err
		}
		if err := c.Connect(src.ID, g.ID); err != nil {
			return err
		}
	}
	return nil
}

// parseGateType converts a type token to a gate type. A leading N inverts
// the base type, so NOT is an inverted BUF (N + OT).
func parseGateType(token string) (circuit.GateType, bool, bool) {
	if token == "XNOR" {
		return circuit.XOR, true, true
	}

	inverted := false
	base := token
	if strings.HasPrefix(token, "N") {
		inverted = true
		base = token[1:]
	}

	switch base {
	case "AND":
		return circuit.AND, inverted, true
	case "OR":
		return circuit.OR, inverted, true
	case "XOR":
		return circuit.XOR, inverted, true
	case "BUF", "BUFF":
		return circuit.BUF, inverted, true
	case "OT":
		return circuit.BUF, true, inverted
	default:
		return circuit.OTHER, false, false
	}
}

func splitNames(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// atLine attaches a source line to a netlist error that does not carry one.
func atLine(err error, line int) error {
	var nerr *circuit.NetlistError
	if errors.As(err, &nerr) && nerr.Line == 0 {
		nerr.Line = line
	}
	return err
}
