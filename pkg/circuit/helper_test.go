package circuit_test

import (
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

type node struct {
	name string
	typ  circuit.GateType
	inv  bool
	in   []string
}

// buildCircuit wires a circuit from inputs, outputs and gate definitions and
// levelizes it.
func buildCircuit(t require.TestingT, inputs, outputs []string, gates []node) *circuit.Circuit {
	c := circuit.NewCircuit("test")
	for _, name := range inputs {
		g, err := c.AddGate(name, circuit.PI)
		require.NoError(t, err)
		c.MarkInput(g.ID)
	}
	for _, n := range gates {
		g, err := c.Ensure(n.name)
		require.NoError(t, err)
		g.Type = n.typ
		g.Inverted = n.inv
		for _, in := range n.in {
			src, err := c.Ensure(in)
			require.NoError(t, err)
			require.NoError(t, c.Connect(src.ID, g.ID))
		}
	}
	for _, name := range outputs {
		g, ok := c.Lookup(name)
		require.True(t, ok, "output %s not defined", name)
		c.MarkOutput(g.ID)
	}
	require.NoError(t, c.Validate())
	require.NoError(t, c.Levelize())
	return c
}

func mustGate(t require.TestingT, c *circuit.Circuit, name string) *circuit.Gate {
	g, ok := c.Lookup(name)
	require.True(t, ok, "gate %s not found", name)
	return g
}
