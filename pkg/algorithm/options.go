package algorithm

import (
	"fmt"
	"strings"
)

// FillPolicy decides how don't-care inputs of a generated vector are
// resolved before it is simulated.
type FillPolicy int

const (
	FillZeros FillPolicy = iota
	FillOnes
	FillRandom
)

// String returns a string representation of the fill policy
func (p FillPolicy) String() string {
	switch p {
	case FillZeros:
		return "zeros"
	case FillOnes:
		return "ones"
	case FillRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParseFillPolicy accepts zeros, ones or random (and the 0/1 shorthands).
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zeros", "zero", "0":
		return FillZeros, nil
	case "ones", "one", "1":
		return FillOnes, nil
	case "random", "rand":
		return FillRandom, nil
	default:
		return FillZeros, fmt.Errorf("unknown fill policy %q (want zeros, ones or random)", s)
	}
}

// Options configures a test generation run.
type Options struct {
	Fill              FillPolicy // Don't-care filling before simulation
	BranchFaults      bool       // Model faults on individual fan-out branches
	DropFaults        bool       // Simulate every vector against the remaining faults
	RandomPatterns    int        // Random vectors tried after the deterministic phase
	Seed              int64      // Seed for random fill and random patterns
	MaxSteps          int        // Search steps per fault; 0 disables the limit
	ClassifyRedundant bool       // Prove leftover faults untestable with a SAT miter
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		Fill:              FillRandom,
		BranchFaults:      true,
		DropFaults:        true,
		RandomPatterns:    32,
		Seed:              1,
		MaxSteps:          200000,
		ClassifyRedundant: true,
	}
}
