package circuit

// Evaluate computes the output value of the gate from the current values on
// its input pins. Inputs return their own value.
func (c *Circuit) Evaluate(g *Gate) LogicValue {
	switch g.Type {
	case PI, PPI:
		return g.Value
	case AND:
		return Negate(c.fold(g, And), g.Inverted)
	case OR:
		return Negate(c.fold(g, Or), g.Inverted)
	case BUF:
		if len(g.Inputs) != 1 {
			return X
		}
		return Negate(c.PinValue(g, 0), g.Inverted)
	case XOR:
		return Negate(c.fold(g, Xor), g.Inverted)
	default:
		return X
	}
}

func (c *Circuit) fold(g *Gate, op func(a, b LogicValue) LogicValue) LogicValue {
	if len(g.Inputs) == 0 {
		return X
	}
	result := c.PinValue(g, 0)
	for i := 1; i < len(g.Inputs); i++ {
		result = op(result, c.PinValue(g, i))
	}
	return result
}

// IsOutputPossible tries to make g produce want by assigning its X input
// pins. When a single controlling value decides the output, the first X pin
// receives it and the call succeeds at once. Otherwise every X pin is set to
// the non-controlling value and the gate is re-evaluated.
//
// Assignments are not rolled back on failure.
func (c *Circuit) IsOutputPossible(g *Gate, want LogicValue) bool {
	ctrl := g.ControllingValue()
	resolved := false

	for i := range g.Inputs {
		if c.PinValue(g, i) != X {
			continue
		}
		if !resolved && ctrl != X && want == Negate(ctrl, g.Inverted) {
			c.SetPin(g, i, ctrl)
			return true
		}
		resolved = true

		switch g.Type {
		case AND, OR:
			c.SetPin(g, i, g.NonControllingValue())
		case BUF:
			c.SetPin(g, i, Negate(want, g.Inverted))
		}
	}

	if !resolved {
		return false
	}
	return c.Evaluate(g) == want
}
