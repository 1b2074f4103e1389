package algorithm

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

// RedundancyChecker decides exactly whether a fault is testable by building
// a miter of the good and the faulty circuit and asking a SAT solver for an
// input assignment that makes some primary output differ.
//
// Register outputs are left as free variables, which can only make a fault
// look testable, so an unsatisfiable miter proves the fault redundant.
type RedundancyChecker struct {
	Circuit *circuit.Circuit
}

// NewRedundancyChecker creates a checker. The circuit must be levelized.
func NewRedundancyChecker(c *circuit.Circuit) *RedundancyChecker {
	return &RedundancyChecker{Circuit: c}
}

// Testable reports whether some input pattern detects f.
func (r *RedundancyChecker) Testable(f *Fault) bool {
	c := r.Circuit
	lc := logic.NewC()

	good := make([]z.Lit, len(c.Gates))
	for _, id := range c.Order() {
		g := c.Gates[id]
		if g.IsInput() {
			good[id] = lc.Lit()
			continue
		}
		good[id] = encodeGate(lc, g, func(slot int) z.Lit {
			return good[g.Inputs[slot]]
		})
	}

	stuck := lc.F
	if f.StuckAt == 1 {
		stuck = lc.T
	}

	// Only the fan-out cone of the site differs between the two copies.
	root := f.Gate
	pin := circuit.Branch{To: -1, Slot: -1}
	if f.IsBranch() {
		pin = c.Gates[f.Gate].Fanout[f.Branch]
		root = pin.To
	}
	cone := r.cone(root)

	faulty := make([]z.Lit, len(c.Gates))
	copy(faulty, good)
	for _, id := range c.Order() {
		if !cone[id] {
			continue
		}
		g := c.Gates[id]
		if !f.IsBranch() && id == f.Gate {
			faulty[id] = stuck
			continue
		}
		faulty[id] = encodeGate(lc, g, func(slot int) z.Lit {
			if id == pin.To && slot == pin.Slot {
				return stuck
			}
			return faulty[g.Inputs[slot]]
		})
	}

	var diffs []z.Lit
	for _, id := range c.Outputs {
		if cone[id] {
			diffs = append(diffs, lc.Xor(good[id], faulty[id]))
		}
	}
	if len(diffs) == 0 {
		return false
	}
	miter := lc.Ors(diffs...)

	solver := gini.New()
	lc.ToCnf(solver)
	solver.Assume(miter)
	return solver.Solve() == 1
}

func (r *RedundancyChecker) cone(root int) []bool {
	c := r.Circuit
	in := make([]bool, len(c.Gates))
	stack := []int{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if in[id] {
			continue
		}
		in[id] = true
		for _, b := range c.Gates[id].Fanout {
			stack = append(stack, b.To)
		}
	}
	return in
}

func encodeGate(lc *logic.C, g *circuit.Gate, pin func(slot int) z.Lit) z.Lit {
	ins := make([]z.Lit, len(g.Inputs))
	for i := range ins {
		ins[i] = pin(i)
	}

	var out z.Lit
	switch g.Type {
	case circuit.AND:
		out = lc.Ands(ins...)
	case circuit.OR:
		out = lc.Ors(ins...)
	case circuit.BUF:
		out = ins[0]
	case circuit.XOR:
		out = ins[0]
		for _, m := range ins[1:] {
			out = lc.Xor(out, m)
		}
	default:
		out = lc.Lit()
	}
	if g.Inverted {
		out = out.Not()
	}
	return out
}
