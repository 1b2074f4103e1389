package algorithm_test

import (
	"fmt"
	"strings"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fyerfyer/spath-atpg/pkg/algorithm"
	"github.com/fyerfyer/spath-atpg/pkg/circuit"
	"github.com/fyerfyer/spath-atpg/pkg/utils"
)

const singleAnd = `
INPUT(A)
INPUT(B)
OUTPUT(G1)
G1 = AND(A, B)
`

// s fans out to an AND and an OR.
const fanoutBench = `
INPUT(a)
INPUT(b)
INPUT(c)
INPUT(d)
OUTPUT(g1)
OUTPUT(g2)
s = AND(a, b)
g1 = AND(s, c)
g2 = OR(s, d)
`

const c17 = `
# c17
INPUT(1)
INPUT(2)
INPUT(3)
INPUT(6)
INPUT(7)
OUTPUT(22)
OUTPUT(23)
10 = NAND(1, 3)
11 = NAND(3, 6)
16 = NAND(2, 11)
19 = NAND(11, 7)
22 = NAND(10, 16)
23 = NAND(16, 19)
`

func parseBench(t require.TestingT, src string) *circuit.Circuit {
	c, err := utils.ParseBench(strings.NewReader(src), "test", circuit.DefaultLimits())
	require.NoError(t, err)
	return c
}

func gateID(t require.TestingT, c *circuit.Circuit, name string) int {
	g, ok := c.Lookup(name)
	require.True(t, ok, "gate %s not found", name)
	return g.ID
}

func pattern(t require.TestingT, s string) []circuit.LogicValue {
	p, err := circuit.ParsePattern(s)
	require.NoError(t, err)
	return p
}

func newGenerator(t require.TestingT, c *circuit.Circuit, opts algorithm.Options) *algorithm.Generator {
	gen, err := algorithm.NewGenerator(c, opts, utils.Discard())
	require.NoError(t, err)
	return gen
}

// collect returns a sink that keeps every vector it receives.
func collect(out *[]*algorithm.TestVector) algorithm.VectorSink {
	return func(v *algorithm.TestVector) error {
		*out = append(*out, v)
		return nil
	}
}

var gateKinds = []struct {
	typ circuit.GateType
	inv bool
}{
	{circuit.AND, false},
	{circuit.AND, true},
	{circuit.OR, false},
	{circuit.OR, true},
	{circuit.BUF, true},
}

// randomCircuit builds a levelized DAG in which gate i only reads from
// earlier gates. Every gate without fan-out becomes an output.
func randomCircuit(t *rapid.T) *circuit.Circuit {
	nIn := rapid.IntRange(1, 5).Draw(t, "inputs")
	nGates := rapid.IntRange(1, 15).Draw(t, "gates")

	c := circuit.NewCircuit("random")
	for i := 0; i < nIn; i++ {
		g, err := c.AddGate(fmt.Sprintf("i%d", i), circuit.PI)
		require.NoError(t, err)
		c.MarkInput(g.ID)
	}
	for i := 0; i < nGates; i++ {
		kind := rapid.SampledFrom(gateKinds).Draw(t, "kind")
		g, err := c.AddGate(fmt.Sprintf("g%d", i), kind.typ)
		require.NoError(t, err)
		g.Inverted = kind.inv

		fanin := 1
		if kind.typ != circuit.BUF {
			fanin = rapid.IntRange(1, 3).Draw(t, "fanin")
		}
		for k := 0; k < fanin; k++ {
			src := rapid.IntRange(0, g.ID-1).Draw(t, "src")
			require.NoError(t, c.Connect(src, g.ID))
		}
	}
	for _, g := range c.Gates {
		if len(g.Fanout) == 0 {
			c.MarkOutput(g.ID)
		}
	}
	require.NoError(t, c.Validate())
	require.NoError(t, c.Levelize())
	return c
}

// randomTree builds a fan-out free circuit: every input and gate feeds at
// most one gate and the last gate is the only output.
func randomTree(t *rapid.T) *circuit.Circuit {
	nIn := rapid.IntRange(1, 6).Draw(t, "inputs")

	c := circuit.NewCircuit("tree")
	var pool []int
	for i := 0; i < nIn; i++ {
		g, err := c.AddGate(fmt.Sprintf("i%d", i), circuit.PI)
		require.NoError(t, err)
		c.MarkInput(g.ID)
		pool = append(pool, g.ID)
	}

	// The first few gates may have a single input; after that every gate
	// merges at least two subtrees so the pool shrinks to one root.
	extra := rapid.IntRange(0, 3).Draw(t, "singles")
	for i := 0; len(pool) > 1 || i < extra; i++ {
		kinds := gateKinds
		minFanin := 1
		if i >= extra {
			kinds = gateKinds[:4]
			minFanin = 2
		}
		kind := rapid.SampledFrom(kinds).Draw(t, "kind")
		fanin := 1
		if kind.typ != circuit.BUF {
			fanin = rapid.IntRange(minFanin, len(pool)).Draw(t, "fanin")
		}
		g, err := c.AddGate(fmt.Sprintf("g%d", i), kind.typ)
		require.NoError(t, err)
		g.Inverted = kind.inv

		for k := 0; k < fanin; k++ {
			pick := rapid.IntRange(0, len(pool)-1).Draw(t, "pick")
			require.NoError(t, c.Connect(pool[pick], g.ID))
			pool = append(pool[:pick], pool[pick+1:]...)
		}
		pool = append(pool, g.ID)
	}
	c.MarkOutput(pool[0])
	require.NoError(t, c.Validate())
	require.NoError(t, c.Levelize())
	return c
}
