package circuit

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Levelize assigns every gate its level: 0 for inputs, otherwise one more
// than the highest level among its predecessors. Register boundaries are not
// edges, so only a combinational loop makes the graph unorderable, which is
// reported as ErrMalformedNetlist.
func (c *Circuit) Levelize() error {
	g := simple.NewDirectedGraph()
	for _, gate := range c.Gates {
		g.AddNode(simple.Node(gate.ID))
	}
	for _, gate := range c.Gates {
		for _, src := range gate.Inputs {
			if src == gate.ID {
				return newError(ErrMalformedNetlist, gate.Name, "gate drives its own input")
			}
			if g.HasEdgeFromTo(int64(src), int64(gate.ID)) {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(src), T: simple.Node(gate.ID)})
		}
	}

	sorted, err := topo.Sort(g)
	if err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) && len(cycles) > 0 && len(cycles[0]) > 0 {
			first := c.Gates[cycles[0][0].ID()]
			return newError(ErrMalformedNetlist, first.Name,
				"combinational cycle through %d gates", len(cycles[0]))
		}
		return newError(ErrMalformedNetlist, "", "%v", err)
	}

	c.MaxLevel = 0
	for _, node := range sorted {
		gate := c.Gates[node.ID()]
		level := 0
		if !gate.IsInput() {
			for _, src := range gate.Inputs {
				if l := c.Gates[src].Level + 1; l > level {
					level = l
				}
			}
		}
		gate.Level = level
		if level > c.MaxLevel {
			c.MaxLevel = level
		}
	}

	c.order = make([]int, len(c.Gates))
	for i := range c.order {
		c.order[i] = i
	}
	sort.SliceStable(c.order, func(i, j int) bool {
		return c.Gates[c.order[i]].Level < c.Gates[c.order[j]].Level
	})
	return nil
}

// Order returns gate ids sorted by ascending level, ties in creation order.
// It is nil until Levelize succeeds.
func (c *Circuit) Order() []int {
	return c.order
}

// FanoutBranches counts the branches of every fan-out stem.
func (c *Circuit) FanoutBranches() int {
	count := 0
	for _, gate := range c.Gates {
		if gate.IsFanoutStem() {
			count += len(gate.Fanout)
		}
	}
	return count
}

// ReachesOutput reports whether a path leads from gate id to a primary or
// pseudo output.
func (c *Circuit) ReachesOutput(id int) bool {
	visited := make(map[int]bool)
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		gate := c.Gates[cur]
		if gate.PrimaryOutput || gate.PseudoOutput {
			return true
		}
		for _, b := range gate.Fanout {
			stack = append(stack, b.To)
		}
	}
	return false
}
