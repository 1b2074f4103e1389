package algorithm

import (
	"github.com/fyerfyer/spath-atpg/pkg/circuit"
	"github.com/fyerfyer/spath-atpg/pkg/utils"
)

// Sensitizer searches for a single sensitized path from a fault site to a
// primary output. The search is constructive and never backtracks over an
// earlier choice: the first input tried when exciting a gate is the only one
// tried, and a failed fan-out branch is simply undone before the next one.
// Some testable faults are therefore missed.
type Sensitizer struct {
	Circuit  *circuit.Circuit
	Logger   *utils.Logger
	MaxSteps int // 0 disables the limit

	steps     int
	exhausted bool
	site      int // stem carrying a stem fault, -1 otherwise
}

// NewSensitizer creates a sensitizer bounded to maxSteps recursive calls per
// attempt.
func NewSensitizer(c *circuit.Circuit, logger *utils.Logger, maxSteps int) *Sensitizer {
	return &Sensitizer{
		Circuit:  c,
		Logger:   logger,
		MaxSteps: maxSteps,
		site:     -1,
	}
}

// Begin starts a new attempt: every value and memo slot goes back to X and
// the step budget is refilled.
func (s *Sensitizer) Begin() {
	s.Circuit.Reset()
	s.steps = 0
	s.exhausted = false
	s.site = -1
}

// Steps returns the number of recursive calls made in this attempt
func (s *Sensitizer) Steps() int {
	return s.steps
}

// Exhausted reports whether the current attempt ran out of steps.
func (s *Sensitizer) Exhausted() bool {
	return s.exhausted
}

func (s *Sensitizer) step() bool {
	if s.exhausted {
		return false
	}
	s.steps++
	if s.MaxSteps > 0 && s.steps > s.MaxSteps {
		s.exhausted = true
		s.Logger.Search("step limit %d reached", s.MaxSteps)
		return false
	}
	return true
}

// Sensitize runs a full attempt for f: excite the site, then propagate the
// fault effect to an output and justify it there.
func (s *Sensitizer) Sensitize(f *Fault) bool {
	s.Begin()
	v := f.Value()
	if !s.Excite(f.Gate, f.Branch, v) {
		s.Logger.Search("%s: excitation failed", f.Site(s.Circuit))
		return false
	}
	if !s.Propagate(f.Gate, f.Branch, v) {
		s.Logger.Search("%s: propagation failed", f.Site(s.Circuit))
		return false
	}
	return true
}

// Excite drives the fault site with value (D or D'). The stem is excited
// with the good component, so everything upstream of the site holds plain
// 0/1 values, and only the site itself carries value: the stem for a stem
// fault, the branch alone for a branch fault.
func (s *Sensitizer) Excite(id, branch int, value circuit.LogicValue) bool {
	if !s.excite(id, value.Good()) {
		return false
	}
	g := s.Circuit.Gates[id]
	if branch < 0 {
		g.SetValue(value)
		s.site = id
		return true
	}
	g.SetBranch(branch, value)
	return true
}

func (s *Sensitizer) excite(id int, value circuit.LogicValue) bool {
	if !s.step() {
		return false
	}
	c := s.Circuit
	g := c.Gates[id]
	s.Logger.Search("excite %s = %v", g.Name, value)

	switch g.Type {
	case circuit.PI:
		g.SetValue(value)
		return true
	case circuit.PPI:
		// Register outputs cannot be set from the tester.
		return value == circuit.X
	case circuit.BUF:
		if len(g.Inputs) != 1 {
			return false
		}
		ok := s.excite(g.Inputs[0], circuit.Negate(value, g.Inverted))
		if ok {
			g.SetValue(value)
		} else {
			g.SetValue(circuit.X)
		}
		return ok
	case circuit.AND, circuit.OR:
	default:
		return false
	}

	if value == circuit.X {
		return true
	}

	pick := -1
	for i := range g.Inputs {
		if c.PinValue(g, i) == circuit.X {
			pick = i
			break
		}
	}
	if pick < 0 {
		if c.Evaluate(g) != value {
			return false
		}
		g.SetValue(value)
		return true
	}

	if !s.excite(g.Inputs[pick], circuit.Negate(value, g.Inverted)) {
		return false
	}

	nc := g.NonControllingValue()
	for i := range g.Inputs {
		if i == pick {
			continue
		}
		switch c.PinValue(g, i) {
		case circuit.X:
			c.SetPin(g, i, nc)
		case g.ControllingValue():
			return false
		}
	}
	g.SetValue(value)
	return true
}

// Propagate carries value from the fault site towards a primary output.
// A branch fault may only travel through its own destination.
func (s *Sensitizer) Propagate(id, branch int, value circuit.LogicValue) bool {
	if branch < 0 {
		return s.propagate(id, value)
	}
	if !s.step() {
		return false
	}
	g := s.Circuit.Gates[id]
	g.SetBranch(branch, value)
	b := g.Fanout[branch]
	return s.through(id, b.To, b.Slot)
}

func (s *Sensitizer) propagate(id int, value circuit.LogicValue) bool {
	if !s.step() {
		return false
	}
	c := s.Circuit
	g := c.Gates[id]
	g.SetValue(value)
	s.Logger.Search("propagate %s = %v", g.Name, value)

	if g.PrimaryOutput {
		ok := s.justify(id, value)
		g.MarkPropagated(value, ok)
		return ok
	}
	if value == circuit.X {
		return true
	}
	if g.PropagateFailed(value) {
		return false
	}

	for _, b := range g.Fanout {
		if s.through(id, b.To, b.Slot) {
			g.MarkPropagated(value, true)
			return true
		}
		if s.exhausted {
			return false
		}
		c.ClearPath(b.To, id)
		c.Gates[b.To].SetValue(circuit.X)
		g.SetValue(value)
	}

	g.MarkPropagated(value, false)
	return false
}

// through sensitizes destination dest, whose pin slot is fed by src, and
// continues propagating from it.
func (s *Sensitizer) through(src, dest, slot int) bool {
	c := s.Circuit
	d := c.Gates[dest]

	switch d.Type {
	case circuit.BUF:
	case circuit.AND, circuit.OR:
		nc := d.NonControllingValue()
		for i, in := range d.Inputs {
			if i == slot || in == src {
				continue
			}
			v := c.PinValue(d, i)
			switch {
			case v == circuit.X:
				c.SetPin(d, i, nc)
			case v == d.ControllingValue():
				s.Logger.Search("%s blocked by side input %s", d.Name, c.Gates[in].Name)
				return false
			case v.IsFaulty():
				// A second fault effect would make the path reconvergent.
				s.Logger.Search("%s reached twice through %s", d.Name, c.Gates[in].Name)
				return false
			}
		}
	default:
		return false
	}

	forward := c.Evaluate(d)
	if !forward.IsFaulty() {
		return false
	}
	return s.propagate(dest, forward)
}

// Justify confirms that value on gate id follows from the values already
// assigned, extending assignments back to the primary inputs where they
// are still X. The faulted stem is justified with its good value.
func (s *Sensitizer) Justify(id int, value circuit.LogicValue) bool {
	return s.justify(id, value)
}

func (s *Sensitizer) justify(id int, value circuit.LogicValue) bool {
	if !s.step() {
		return false
	}
	c := s.Circuit
	g := c.Gates[id]
	if id == s.site {
		value = value.Good()
	}

	switch g.Type {
	case circuit.PI:
		return true
	case circuit.PPI:
		return value == circuit.X
	}
	if value == circuit.X {
		return true
	}
	// Only failures are cached.
	if g.JustifyFailed(value) {
		return false
	}
	s.Logger.Search("justify %s = %v", g.Name, value)

	if !s.justifyInputs(g, value) {
		g.MarkJustified(value, false)
		return false
	}
	return true
}

func (s *Sensitizer) justifyInputs(g *circuit.Gate, value circuit.LogicValue) bool {
	c := s.Circuit

	switch g.Type {
	case circuit.BUF:
		if len(g.Inputs) != 1 {
			return false
		}
		want := circuit.Negate(value, g.Inverted)
		switch c.PinValue(g, 0) {
		case circuit.X:
			c.SetPin(g, 0, want)
		case want:
		default:
			return false
		}
	case circuit.AND, circuit.OR, circuit.XOR:
		if c.Evaluate(g) != value && !c.IsOutputPossible(g, value) {
			return false
		}
	default:
		return false
	}

	for _, in := range g.Inputs {
		src := c.Gates[in]
		if !s.justify(in, src.Value) {
			return false
		}
	}
	return true
}
