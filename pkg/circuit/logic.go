package circuit

import "fmt"

// LogicValue is a symbol of the five-valued algebra. A single value carries
// both the fault-free (good) and the faulty circuit value of a wire.
type LogicValue int

const (
	X    LogicValue = iota // Unassigned / don't-care
	Zero                   // 0 in both circuits
	One                    // 1 in both circuits
	D                      // Good circuit: 1, Faulty circuit: 0
	Dbar                   // Good circuit: 0, Faulty circuit: 1
)

// NumLogicValues is the size of the value domain, used to size memo tables.
const NumLogicValues = 5

// String returns a string representation of the logic value
func (v LogicValue) String() string {
	switch v {
	case X:
		return "X"
	case Zero:
		return "0"
	case One:
		return "1"
	case D:
		return "D"
	case Dbar:
		return "D'"
	default:
		return "?"
	}
}

// Symbol returns the single character used in pattern strings.
func (v LogicValue) Symbol() byte {
	switch v {
	case Zero:
		return '0'
	case One:
		return '1'
	case D:
		return 'D'
	case Dbar:
		return 'B'
	default:
		return 'X'
	}
}

// ParseSymbol is the inverse of Symbol. It also accepts the I/O spelling
// and lower-case letters.
func ParseSymbol(b byte) (LogicValue, error) {
	switch b {
	case '0', 'O', 'o':
		return Zero, nil
	case '1', 'I', 'i':
		return One, nil
	case 'D', 'd':
		return D, nil
	case 'B', 'b':
		return Dbar, nil
	case 'X', 'x', '-':
		return X, nil
	default:
		return X, fmt.Errorf("invalid logic symbol %q", b)
	}
}

// ParsePattern converts a pattern string into values, one per character.
func ParsePattern(s string) ([]LogicValue, error) {
	values := make([]LogicValue, len(s))
	for i := 0; i < len(s); i++ {
		v, err := ParseSymbol(s[i])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}

// FormatPattern renders values with Symbol.
func FormatPattern(values []LogicValue) string {
	buf := make([]byte, len(values))
	for i, v := range values {
		buf[i] = v.Symbol()
	}
	return string(buf)
}

// IsAssigned returns true if the value is not X
func (v LogicValue) IsAssigned() bool {
	return v != X
}

// IsFaulty returns true if the value is D or D'
func (v LogicValue) IsFaulty() bool {
	return v == D || v == Dbar
}

// Good returns the fault-free component of v.
func (v LogicValue) Good() LogicValue {
	switch v {
	case D:
		return One
	case Dbar:
		return Zero
	default:
		return v
	}
}

// Faulty returns the faulty-circuit component of v.
func (v LogicValue) Faulty() LogicValue {
	switch v {
	case D:
		return Zero
	case Dbar:
		return One
	default:
		return v
	}
}

// Negate swaps 0/1 and D/D' when invert is set and is the identity otherwise.
func Negate(v LogicValue, invert bool) LogicValue {
	if !invert {
		return v
	}
	switch v {
	case Zero:
		return One
	case One:
		return Zero
	case D:
		return Dbar
	case Dbar:
		return D
	default:
		return X
	}
}

// Divergent returns the value that marks a stuck-at fault site: D for
// stuck-at-0 and D' for stuck-at-1.
func Divergent(stuckAt int) LogicValue {
	if stuckAt == 0 {
		return D
	}
	return Dbar
}

// Rows and columns are indexed X, 0, 1, D, D'.
var andTable = [NumLogicValues][NumLogicValues]LogicValue{
	X:    {X, Zero, X, X, X},
	Zero: {Zero, Zero, Zero, Zero, Zero},
	One:  {X, Zero, One, D, Dbar},
	D:    {X, Zero, D, D, Zero},
	Dbar: {X, Zero, Dbar, Zero, Dbar},
}

var orTable = [NumLogicValues][NumLogicValues]LogicValue{
	X:    {X, X, One, X, X},
	Zero: {X, Zero, One, D, Dbar},
	One:  {One, One, One, One, One},
	D:    {X, D, One, D, One},
	Dbar: {X, Dbar, One, One, Dbar},
}

// And evaluates a two-input AND over the five-valued domain.
func And(a, b LogicValue) LogicValue {
	return andTable[a][b]
}

// Or evaluates a two-input OR over the five-valued domain.
func Or(a, b LogicValue) LogicValue {
	return orTable[a][b]
}

// Xor is declared for completeness of the gate set. Its table has never been
// resolved for the composite values, so every XOR/XNOR evaluates to X and
// faults behind such gates are left to the redundancy classifier.
func Xor(a, b LogicValue) LogicValue {
	return X
}
