package algorithm

import (
	"fmt"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

// FaultStatus is the final classification of a fault
type FaultStatus int

const (
	Undetected FaultStatus = iota
	Detected
	Redundant // Proven untestable
	Aborted   // Not detected and not proven untestable
)

// String returns a string representation of the fault status
func (s FaultStatus) String() string {
	switch s {
	case Undetected:
		return "undetected"
	case Detected:
		return "detected"
	case Redundant:
		return "redundant"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Fault is a single stuck-at fault. Branch is the index into the fan-out of
// Gate when the fault sits on one branch only, or -1 for the stem.
type Fault struct {
	Gate     int
	Branch   int
	StuckAt  int
	Detected bool
	Status   FaultStatus
}

// NewFault creates a stem fault on gate id.
func NewFault(gate, stuckAt int) *Fault {
	return &Fault{Gate: gate, Branch: -1, StuckAt: stuckAt}
}

// NewBranchFault creates a fault on one fan-out branch of gate id.
func NewBranchFault(gate, branch, stuckAt int) *Fault {
	return &Fault{Gate: gate, Branch: branch, StuckAt: stuckAt}
}

// IsBranch reports whether the fault sits on a fan-out branch.
func (f *Fault) IsBranch() bool {
	return f.Branch >= 0
}

// Value is the composite value the fault site must carry to be excited:
// D for stuck-at-0, D' for stuck-at-1.
func (f *Fault) Value() circuit.LogicValue {
	return circuit.Divergent(f.StuckAt)
}

// Site names the faulty wire, "g" for a stem and "g->d" for a branch.
func (f *Fault) Site(c *circuit.Circuit) string {
	g := c.Gates[f.Gate]
	if !f.IsBranch() {
		return g.Name
	}
	return g.Name + "->" + c.Gates[g.Fanout[f.Branch].To].Name
}

// Label is the form used in vector files: "(g, 0)".
func (f *Fault) Label(c *circuit.Circuit) string {
	return fmt.Sprintf("(%s, %d)", f.Site(c), f.StuckAt)
}

// Key is the form used in fault files: "g/0".
func (f *Fault) Key(c *circuit.Circuit) string {
	return fmt.Sprintf("%s/%d", f.Site(c), f.StuckAt)
}

func (f *Fault) markDetected() {
	f.Detected = true
	f.Status = Detected
}

// FaultList owns every fault of a run in enumeration order.
type FaultList struct {
	faults []*Fault
}

// NewFaultList creates an empty fault list
func NewFaultList() *FaultList {
	return &FaultList{faults: make([]*Fault, 0)}
}

// EnumerateFaults builds both stuck-at faults for every gate and, when
// branches is set, for every branch of every fan-out stem.
func EnumerateFaults(c *circuit.Circuit, branches bool) *FaultList {
	list := NewFaultList()
	for _, g := range c.Gates {
		list.Add(NewFault(g.ID, 0))
		list.Add(NewFault(g.ID, 1))
		if !branches || !g.IsFanoutStem() {
			continue
		}
		for b := range g.Fanout {
			list.Add(NewBranchFault(g.ID, b, 0))
			list.Add(NewBranchFault(g.ID, b, 1))
		}
	}
	return list
}

// Add appends a fault
func (l *FaultList) Add(f *Fault) {
	l.faults = append(l.faults, f)
}

// Len returns the number of faults
func (l *FaultList) Len() int {
	return len(l.faults)
}

// All returns every fault in enumeration order
func (l *FaultList) All() []*Fault {
	return l.faults
}

// Undetected returns the faults no vector has detected yet
func (l *FaultList) Undetected() []*Fault {
	var out []*Fault
	for _, f := range l.faults {
		if !f.Detected {
			out = append(out, f)
		}
	}
	return out
}

// Count returns how many faults carry the given status
func (l *FaultList) Count(status FaultStatus) int {
	n := 0
	for _, f := range l.faults {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Coverage is the percentage of detected faults
func (l *FaultList) Coverage() float64 {
	if len(l.faults) == 0 {
		return 0
	}
	return float64(l.Count(Detected)) / float64(len(l.faults)) * 100
}
