package circuit

import "fmt"

// GateType represents the type of logic gate
type GateType int

const (
	AND GateType = iota
	OR
	BUF // Buffer gate; inverted it is a NOT
	XOR
	PI    // Primary input
	PPI   // Pseudo primary input (register output)
	OTHER // Referenced but not yet defined
)

// String returns a string representation of the gate type
func (gt GateType) String() string {
	switch gt {
	case AND:
		return "AND"
	case OR:
		return "OR"
	case BUF:
		return "BUF"
	case XOR:
		return "XOR"
	case PI:
		return "PI"
	case PPI:
		return "PPI"
	case OTHER:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// Branch is one fan-out edge of a gate. Slot is the input pin it drives on
// the destination. A branch holding X reads through to the stem value; any
// other value overrides the stem for that destination pin only.
type Branch struct {
	To    int
	Slot  int
	Value LogicValue
}

type memo struct {
	tried bool
	ok    bool
}

// Gate is a node of the circuit graph. A gate and the wire it drives share
// one identity, so Value is the value on the gate's output stem.
type Gate struct {
	ID       int      // Creation index, never changes
	Name     string   // Net name from the netlist
	Type     GateType // Type of the gate
	Inverted bool     // NAND, NOR, NOT and XNOR
	Inputs   []int    // Source gate ids in pin order
	Fanout   []Branch // Output edges in recording order

	PrimaryOutput bool
	PseudoOutput  bool

	Value LogicValue // Current stem value
	Level int        // Topological rank, -1 until levelized

	// inputBranch[i] is the index of the source's Fanout entry feeding pin i.
	inputBranch []int

	justified  [NumLogicValues]memo
	propagated [NumLogicValues]memo
}

// NewGate creates a new gate with the given parameters
func NewGate(id int, name string, gateType GateType) *Gate {
	return &Gate{
		ID:     id,
		Name:   name,
		Type:   gateType,
		Inputs: make([]int, 0),
		Fanout: make([]Branch, 0),
		Value:  X,
		Level:  -1,
	}
}

// TypeName returns the netlist spelling of the gate, e.g. NAND for an
// inverted AND.
func (g *Gate) TypeName() string {
	if !g.Inverted {
		return g.Type.String()
	}
	switch g.Type {
	case AND:
		return "NAND"
	case OR:
		return "NOR"
	case BUF:
		return "NOT"
	case XOR:
		return "XNOR"
	default:
		return "N" + g.Type.String()
	}
}

// String returns a string representation of the gate
func (g *Gate) String() string {
	return fmt.Sprintf("%s(%s)", g.Name, g.TypeName())
}

// IsInput reports whether the gate is a primary or pseudo primary input.
func (g *Gate) IsInput() bool {
	return g.Type == PI || g.Type == PPI
}

// IsFanoutStem reports whether the gate drives more than one pin, in which
// case each branch is a separate fault site.
func (g *Gate) IsFanoutStem() bool {
	return len(g.Fanout) > 1
}

// ControllingValue returns the input value that alone decides the gate's
// output (0 for AND, 1 for OR), X when there is none.
func (g *Gate) ControllingValue() LogicValue {
	switch g.Type {
	case AND:
		return Zero
	case OR:
		return One
	default:
		return X
	}
}

// NonControllingValue returns the value side inputs need so that another
// input's value passes through (1 for AND, 0 for OR).
func (g *Gate) NonControllingValue() LogicValue {
	switch g.Type {
	case AND:
		return One
	case OR:
		return Zero
	default:
		return X
	}
}

// SetValue assigns the stem value.
func (g *Gate) SetValue(v LogicValue) {
	g.Value = v
}

// SetBranch assigns a value to a single fan-out branch.
func (g *Gate) SetBranch(branch int, v LogicValue) {
	g.Fanout[branch].Value = v
}

// BranchValue returns the value seen at the end of a fan-out branch.
func (g *Gate) BranchValue(branch int) LogicValue {
	if v := g.Fanout[branch].Value; v != X {
		return v
	}
	return g.Value
}

// BranchTo returns the index of the branch driving pin slot of gate dest,
// or -1.
func (g *Gate) BranchTo(dest, slot int) int {
	for i, b := range g.Fanout {
		if b.To == dest && b.Slot == slot {
			return i
		}
	}
	return -1
}

// Reset clears the stem, every branch and the memo slots.
func (g *Gate) Reset() {
	g.Value = X
	for i := range g.Fanout {
		g.Fanout[i].Value = X
	}
	g.ClearMemo()
}

// ClearMemo forgets every justification and propagation outcome.
func (g *Gate) ClearMemo() {
	g.justified = [NumLogicValues]memo{}
	g.propagated = [NumLogicValues]memo{}
}

// JustifyFailed reports whether justifying v already failed in this attempt.
func (g *Gate) JustifyFailed(v LogicValue) bool {
	m := g.justified[v]
	return m.tried && !m.ok
}

// MarkJustified records the outcome of justifying v.
func (g *Gate) MarkJustified(v LogicValue, ok bool) {
	g.justified[v] = memo{tried: true, ok: ok}
}

// PropagateFailed reports whether propagating v already failed in this attempt.
func (g *Gate) PropagateFailed(v LogicValue) bool {
	m := g.propagated[v]
	return m.tried && !m.ok
}

// MarkPropagated records the outcome of propagating v.
func (g *Gate) MarkPropagated(v LogicValue, ok bool) {
	g.propagated[v] = memo{tried: true, ok: ok}
}

// HasMemo reports whether any outcome is recorded.
func (g *Gate) HasMemo() bool {
	return g.justified != [NumLogicValues]memo{} || g.propagated != [NumLogicValues]memo{}
}
