package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
)

var allValues = []circuit.LogicValue{circuit.X, circuit.Zero, circuit.One, circuit.D, circuit.Dbar}

func logicValue() *rapid.Generator[circuit.LogicValue] {
	return rapid.SampledFrom(allValues)
}

func TestNegateInvolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := logicValue().Draw(t, "v")
		assert.Equal(t, v, circuit.Negate(circuit.Negate(v, true), true))
		assert.Equal(t, v, circuit.Negate(v, false))
	})
}

func TestNegateSwapsPairs(t *testing.T) {
	assert.Equal(t, circuit.One, circuit.Negate(circuit.Zero, true))
	assert.Equal(t, circuit.Zero, circuit.Negate(circuit.One, true))
	assert.Equal(t, circuit.Dbar, circuit.Negate(circuit.D, true))
	assert.Equal(t, circuit.D, circuit.Negate(circuit.Dbar, true))
	assert.Equal(t, circuit.X, circuit.Negate(circuit.X, true))
}

func TestTruthTables(t *testing.T) {
	tests := []struct {
		name string
		got  circuit.LogicValue
		want circuit.LogicValue
	}{
		{"AND(1,D)", circuit.And(circuit.One, circuit.D), circuit.D},
		{"AND(0,D)", circuit.And(circuit.Zero, circuit.D), circuit.Zero},
		{"OR(D,D')", circuit.Or(circuit.D, circuit.Dbar), circuit.One},
		{"AND(D,D')", circuit.And(circuit.D, circuit.Dbar), circuit.Zero},
		{"AND(X,1)", circuit.And(circuit.X, circuit.One), circuit.X},
		{"AND(X,0)", circuit.And(circuit.X, circuit.Zero), circuit.Zero},
		{"OR(X,1)", circuit.Or(circuit.X, circuit.One), circuit.One},
		{"OR(X,0)", circuit.Or(circuit.X, circuit.Zero), circuit.X},
		{"OR(0,D')", circuit.Or(circuit.Zero, circuit.Dbar), circuit.Dbar},
		{"OR(1,D)", circuit.Or(circuit.One, circuit.D), circuit.One},
		{"AND(D,D)", circuit.And(circuit.D, circuit.D), circuit.D},
		{"XOR(0,1)", circuit.Xor(circuit.Zero, circuit.One), circuit.X},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.got, tc.name)
	}
}

// Each composite value is a (good, faulty) pair, so the tables must agree
// with evaluating both circuits separately.
func TestTablesMatchPairwiseEvaluation(t *testing.T) {
	and := func(a, b circuit.LogicValue) circuit.LogicValue {
		if a == circuit.Zero || b == circuit.Zero {
			return circuit.Zero
		}
		if a == circuit.One {
			return b
		}
		if b == circuit.One {
			return a
		}
		return circuit.X
	}
	compose := func(good, faulty circuit.LogicValue) circuit.LogicValue {
		switch {
		case good == faulty:
			return good
		case good == circuit.One && faulty == circuit.Zero:
			return circuit.D
		case good == circuit.Zero && faulty == circuit.One:
			return circuit.Dbar
		default:
			return circuit.X
		}
	}

	for _, a := range allValues {
		for _, b := range allValues {
			if a == circuit.X || b == circuit.X {
				continue
			}
			want := compose(and(a.Good(), b.Good()), and(a.Faulty(), b.Faulty()))
			assert.Equal(t, want, circuit.And(a, b), "AND(%v,%v)", a, b)

			// De Morgan gives the OR table from the AND table.
			orWant := circuit.Negate(circuit.And(circuit.Negate(a, true), circuit.Negate(b, true)), true)
			assert.Equal(t, orWant, circuit.Or(a, b), "OR(%v,%v)", a, b)
		}
	}
}

func TestTablesCommute(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := logicValue().Draw(t, "a")
		b := logicValue().Draw(t, "b")
		assert.Equal(t, circuit.And(a, b), circuit.And(b, a))
		assert.Equal(t, circuit.Or(a, b), circuit.Or(b, a))
	})
}

func TestGoodAndFaultyComponents(t *testing.T) {
	assert.Equal(t, circuit.One, circuit.D.Good())
	assert.Equal(t, circuit.Zero, circuit.D.Faulty())
	assert.Equal(t, circuit.Zero, circuit.Dbar.Good())
	assert.Equal(t, circuit.One, circuit.Dbar.Faulty())
	assert.Equal(t, circuit.X, circuit.X.Good())
	assert.True(t, circuit.D.IsFaulty())
	assert.False(t, circuit.One.IsFaulty())
	assert.Equal(t, circuit.D, circuit.Divergent(0))
	assert.Equal(t, circuit.Dbar, circuit.Divergent(1))
}

func TestPatternRoundTrip(t *testing.T) {
	values, err := circuit.ParsePattern("01DBX")
	require.NoError(t, err)
	assert.Equal(t, allValues[1:], values[:4])
	assert.Equal(t, circuit.X, values[4])
	assert.Equal(t, "01DBX", circuit.FormatPattern(values))

	_, err = circuit.ParsePattern("01z")
	assert.Error(t, err)
}
