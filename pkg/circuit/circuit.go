package circuit

import (
	"fmt"
	"strings"
)

// Limits caps the size of a circuit. Exceeding a cap is reported as
// ErrResourceLimit instead of truncating the netlist.
type Limits struct {
	MaxGates  int
	MaxFanin  int
	MaxFanout int
}

// DefaultLimits returns the caps used by the command line tool.
func DefaultLimits() Limits {
	return Limits{
		MaxGates:  100000,
		MaxFanin:  2000,
		MaxFanout: 2000,
	}
}

// Circuit is the gate graph. Gates are kept in creation order and addressed
// by their ID, which is also their index in Gates.
type Circuit struct {
	Name          string
	Gates         []*Gate
	Inputs        []int // Primary inputs in declaration order
	Outputs       []int // Primary outputs in declaration order
	PseudoInputs  []int
	PseudoOutputs []int
	MaxLevel      int
	Limits        Limits

	index map[string]int
	order []int // Gate ids by ascending level, set by Levelize
}

// NewCircuit creates a new circuit with the given name
func NewCircuit(name string) *Circuit {
	return NewCircuitWithLimits(name, DefaultLimits())
}

// NewCircuitWithLimits creates an empty circuit with explicit caps.
func NewCircuitWithLimits(name string, limits Limits) *Circuit {
	return &Circuit{
		Name:   name,
		Gates:  make([]*Gate, 0),
		Limits: limits,
		index:  make(map[string]int),
	}
}

// AddGate appends a new gate. Names must be unique.
func (c *Circuit) AddGate(name string, gateType GateType) (*Gate, error) {
	if _, exists := c.index[name]; exists {
		return nil, newError(ErrMalformedNetlist, name, "duplicate gate")
	}
	if c.Limits.MaxGates > 0 && len(c.Gates) >= c.Limits.MaxGates {
		return nil, newError(ErrResourceLimit, name, "more than %d gates", c.Limits.MaxGates)
	}
	gate := NewGate(len(c.Gates), name, gateType)
	c.Gates = append(c.Gates, gate)
	c.index[name] = gate.ID
	return gate, nil
}

// Ensure returns the named gate, creating a placeholder of type OTHER when the
// name has not been seen yet.
func (c *Circuit) Ensure(name string) (*Gate, error) {
	if gate, ok := c.Lookup(name); ok {
		return gate, nil
	}
	return c.AddGate(name, OTHER)
}

// Lookup returns a gate by name
func (c *Circuit) Lookup(name string) (*Gate, bool) {
	id, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.Gates[id], true
}

// Gate returns a gate by ID
func (c *Circuit) Gate(id int) *Gate {
	if id < 0 || id >= len(c.Gates) {
		return nil
	}
	return c.Gates[id]
}

// Connect adds the edge src -> dst on the next free input pin of dst.
func (c *Circuit) Connect(src, dst int) error {
	from, to := c.Gates[src], c.Gates[dst]
	if c.Limits.MaxFanin > 0 && len(to.Inputs) >= c.Limits.MaxFanin {
		return newError(ErrResourceLimit, to.Name, "more than %d inputs", c.Limits.MaxFanin)
	}
	if c.Limits.MaxFanout > 0 && len(from.Fanout) >= c.Limits.MaxFanout {
		return newError(ErrResourceLimit, from.Name, "more than %d outputs", c.Limits.MaxFanout)
	}
	to.Inputs = append(to.Inputs, src)
	to.inputBranch = append(to.inputBranch, len(from.Fanout))
	from.Fanout = append(from.Fanout, Branch{To: dst, Slot: len(to.Inputs) - 1, Value: X})
	return nil
}

// MarkInput turns the gate into a primary input.
func (c *Circuit) MarkInput(id int) {
	gate := c.Gates[id]
	gate.Type = PI
	gate.Level = 0
	c.Inputs = append(c.Inputs, id)
}

// MarkPseudoInput turns the gate into a register output.
func (c *Circuit) MarkPseudoInput(id int) {
	gate := c.Gates[id]
	gate.Type = PPI
	gate.Level = 0
	c.PseudoInputs = append(c.PseudoInputs, id)
}

// MarkOutput flags the gate as a primary output.
func (c *Circuit) MarkOutput(id int) {
	gate := c.Gates[id]
	if gate.PrimaryOutput {
		return
	}
	gate.PrimaryOutput = true
	c.Outputs = append(c.Outputs, id)
}

// MarkPseudoOutput flags the gate as a register input.
func (c *Circuit) MarkPseudoOutput(id int) {
	gate := c.Gates[id]
	if gate.PseudoOutput {
		return
	}
	gate.PseudoOutput = true
	c.PseudoOutputs = append(c.PseudoOutputs, id)
}

// Validate checks that every gate is driven and has a legal number of inputs.
func (c *Circuit) Validate() error {
	for _, gate := range c.Gates {
		switch gate.Type {
		case OTHER:
			return newError(ErrMalformedNetlist, gate.Name, "net is used but never driven")
		case BUF:
			if len(gate.Inputs) != 1 {
				return newError(ErrMalformedNetlist, gate.Name, "%s needs exactly one input, has %d",
					gate.TypeName(), len(gate.Inputs))
			}
		case AND, OR, XOR:
			if len(gate.Inputs) == 0 {
				return newError(ErrMalformedNetlist, gate.Name, "%s has no inputs", gate.TypeName())
			}
		}
	}
	if len(c.Outputs) == 0 && len(c.PseudoOutputs) == 0 {
		return newError(ErrMalformedNetlist, "", "circuit has no outputs")
	}
	return nil
}

// PinValue returns the value seen on input pin slot of gate g.
func (c *Circuit) PinValue(g *Gate, slot int) LogicValue {
	return c.Gates[g.Inputs[slot]].BranchValue(g.inputBranch[slot])
}

// SetPin assigns v to the stem driving input pin slot of gate g.
func (c *Circuit) SetPin(g *Gate, slot int, v LogicValue) {
	c.Gates[g.Inputs[slot]].SetValue(v)
}

// Reset resets every stem, branch and memo slot in the circuit to X
func (c *Circuit) Reset() {
	for _, gate := range c.Gates {
		gate.Reset()
	}
}

// ClearPath undoes a failed propagation attempt: the inputs of gate id and
// of every gate downstream of it are set back to X, stopping at primary
// outputs. The gate keep is never cleared.
func (c *Circuit) ClearPath(id, keep int) {
	visited := make(map[int]bool)
	var clear func(id int)
	clear = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true

		gate := c.Gates[id]
		for _, src := range gate.Inputs {
			if src == keep {
				continue
			}
			c.Gates[src].Value = X
			c.Gates[src].justified = [NumLogicValues]memo{}
		}
		if gate.PrimaryOutput {
			return
		}
		for _, b := range gate.Fanout {
			clear(b.To)
		}
	}
	clear(id)
}

// Values returns the stem values of the given gates.
func (c *Circuit) Values(ids []int) []LogicValue {
	values := make([]LogicValue, len(ids))
	for i, id := range ids {
		values[i] = c.Gates[id].Value
	}
	return values
}

// InputNames returns the primary input names in declaration order.
func (c *Circuit) InputNames() []string {
	return c.names(c.Inputs)
}

// OutputNames returns the primary output names in declaration order.
func (c *Circuit) OutputNames() []string {
	return c.names(c.Outputs)
}

func (c *Circuit) names(ids []int) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = c.Gates[id].Name
	}
	return names
}

// String returns a string representation of the circuit state
func (c *Circuit) String() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Circuit: %s\n", c.Name))

	builder.WriteString("Inputs: ")
	for _, id := range c.Inputs {
		g := c.Gates[id]
		builder.WriteString(fmt.Sprintf("%s=%s ", g.Name, g.Value))
	}

	builder.WriteString("\nOutputs: ")
	for _, id := range c.Outputs {
		g := c.Gates[id]
		builder.WriteString(fmt.Sprintf("%s=%s ", g.Name, g.Value))
	}

	builder.WriteString(fmt.Sprintf("\nGates: %d, levels: %d", len(c.Gates), c.MaxLevel+1))

	return builder.String()
}
