package algorithm

import (
	"github.com/fyerfyer/spath-atpg/pkg/circuit"
	"github.com/fyerfyer/spath-atpg/pkg/utils"
)

// Response is the output of one simulation pass. Outputs hold composite
// values, so a D or D' marks an output where the good and faulty circuits
// disagree. Excited is false when the pattern never activated the fault.
type Response struct {
	Outputs []circuit.LogicValue
	Excited bool
}

// Simulator evaluates the circuit level by level under a single fault.
type Simulator struct {
	Circuit *circuit.Circuit
	Logger  *utils.Logger
	queue   *levelQueue
	passes  int
}

// NewSimulator creates a simulator. The circuit must be levelized.
func NewSimulator(c *circuit.Circuit, logger *utils.Logger) *Simulator {
	return &Simulator{
		Circuit: c,
		Logger:  logger,
		queue:   newLevelQueue(c),
	}
}

// Passes returns how many patterns have been simulated
func (s *Simulator) Passes() int {
	return s.passes
}

// Simulate applies pattern to the primary inputs and evaluates the circuit
// with fault injected, or fault free when fault is nil. Pattern positions
// beyond the input count are ignored and missing ones stay X.
func (s *Simulator) Simulate(pattern []circuit.LogicValue, fault *Fault) Response {
	c := s.Circuit
	s.passes++
	c.Reset()
	s.queue.reset()

	for i, id := range c.Inputs {
		if i < len(pattern) {
			c.Gates[id].SetValue(pattern[i])
		}
	}
	for _, g := range c.Gates {
		if g.Level == 0 {
			s.queue.push(g.ID)
		}
	}

	excited := fault == nil
	for s.queue.Len() > 0 {
		g := c.Gates[s.queue.pop()]
		v := c.Evaluate(g)

		if fault != nil && fault.Gate == g.ID {
			forced := circuit.Divergent(fault.StuckAt)
			if v.Good() != forced.Good() {
				s.Logger.Simulation("%s not excited (good value %v)", fault.Site(c), v)
				return Response{Outputs: c.Values(c.Outputs), Excited: false}
			}
			excited = true
			if fault.IsBranch() {
				g.SetBranch(fault.Branch, forced)
			} else {
				v = forced
			}
		}
		g.SetValue(v)

		for _, b := range g.Fanout {
			s.queue.push(b.To)
		}
	}

	return Response{Outputs: c.Values(c.Outputs), Excited: excited}
}

// Detects reports whether r differs from the fault-free response good: some
// output is a known 0 or 1 in both runs and the two disagree.
func Detects(good []circuit.LogicValue, r Response) bool {
	if !r.Excited {
		return false
	}
	for i, v := range r.Outputs {
		if i >= len(good) {
			break
		}
		want := good[i].Good()
		got := v.Faulty()
		if !want.IsAssigned() || !got.IsAssigned() {
			continue
		}
		if want != got {
			return true
		}
	}
	return false
}

// GoodResponse simulates the fault-free circuit and returns its outputs.
func (s *Simulator) GoodResponse(pattern []circuit.LogicValue) []circuit.LogicValue {
	out := s.Simulate(pattern, nil).Outputs
	for i, v := range out {
		out[i] = v.Good()
	}
	return out
}

// DropFaults simulates v against every undetected fault in list, marks the
// ones it detects and appends them to v.Faults. v.Outputs is set to the
// fault-free response. It returns the number of newly detected faults.
func (s *Simulator) DropFaults(v *TestVector, list *FaultList) int {
	c := s.Circuit
	v.Outputs = s.GoodResponse(v.Inputs)

	dropped := 0
	for _, f := range list.All() {
		if f.Detected {
			continue
		}
		if Detects(v.Outputs, s.Simulate(v.Inputs, f)) {
			f.markDetected()
			v.Faults = append(v.Faults, f)
			dropped++
			s.Logger.Simulation("%s dropped by %s", f.Key(c), v.InputPattern())
		}
	}
	return dropped
}

// DetectsFault reports whether pattern detects the single fault f.
func (s *Simulator) DetectsFault(pattern []circuit.LogicValue, f *Fault) bool {
	good := s.GoodResponse(pattern)
	return Detects(good, s.Simulate(pattern, f))
}
