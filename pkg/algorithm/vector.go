package algorithm

import (
	"math/rand"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

// TestVector is an input pattern, the fault-free response it produces and
// the faults it detects. Inputs may hold X until the vector is filled.
type TestVector struct {
	Inputs  []circuit.LogicValue
	Outputs []circuit.LogicValue
	Faults  []*Fault
}

// ExtractVector reads the primary inputs left by a successful search. A D
// on an input means the good circuit needs 1 there, so only the good
// component is kept.
func ExtractVector(c *circuit.Circuit) *TestVector {
	inputs := c.Values(c.Inputs)
	for i, v := range inputs {
		inputs[i] = v.Good()
	}
	return &TestVector{Inputs: inputs}
}

// InputPattern returns the inputs as a 0/1/X string
func (v *TestVector) InputPattern() string {
	return circuit.FormatPattern(v.Inputs)
}

// OutputPattern returns the fault-free outputs as a 0/1/X string
func (v *TestVector) OutputPattern() string {
	return circuit.FormatPattern(v.Outputs)
}

// Labels returns the label of every detected fault
func (v *TestVector) Labels(c *circuit.Circuit) []string {
	labels := make([]string, len(v.Faults))
	for i, f := range v.Faults {
		labels[i] = f.Label(c)
	}
	return labels
}

// Fill returns a copy of pattern with every unassigned position resolved
// by the policy. Assigned positions are kept.
func Fill(pattern []circuit.LogicValue, policy FillPolicy, rng *rand.Rand) []circuit.LogicValue {
	filled := make([]circuit.LogicValue, len(pattern))
	for i, v := range pattern {
		if v == circuit.Zero || v == circuit.One {
			filled[i] = v
			continue
		}
		switch policy {
		case FillOnes:
			filled[i] = circuit.One
		case FillRandom:
			filled[i] = randomBit(rng)
		default:
			filled[i] = circuit.Zero
		}
	}
	return filled
}

// RandomPattern draws a fully specified pattern of width n
func RandomPattern(n int, rng *rand.Rand) []circuit.LogicValue {
	pattern := make([]circuit.LogicValue, n)
	for i := range pattern {
		pattern[i] = randomBit(rng)
	}
	return pattern
}

func randomBit(rng *rand.Rand) circuit.LogicValue {
	if rng.Intn(2) == 1 {
		return circuit.One
	}
	return circuit.Zero
}
