package algorithm

import (
	"math/rand"
	"time"

	"github.com/fyerfyer/spath-atpg/pkg/circuit"
	"github.com/fyerfyer/spath-atpg/pkg/utils"
)

// Stats contains statistics about a test generation run
type Stats struct {
	Faults        int           // Size of the fault list
	Detected      int           // Faults detected by some vector
	Redundant     int           // Faults proven untestable
	Aborted       int           // Faults left without a verdict
	Vectors       int           // Vectors emitted
	RandomVectors int           // Vectors emitted by the random phase
	Attempts      int           // Sensitization attempts
	Rejected      int           // Sensitized vectors that failed replay
	StepLimited   int           // Attempts stopped by the step limit
	TotalTime     time.Duration // Total execution time
}

// Coverage is the percentage of detected faults
func (s Stats) Coverage() float64 {
	if s.Faults == 0 {
		return 0
	}
	return float64(s.Detected) / float64(s.Faults) * 100
}

// VectorSink receives every accepted vector in generation order.
type VectorSink func(v *TestVector) error

// Generator drives test generation over a fault list: a deterministic phase
// that targets each undetected fault in turn, a random phase for what is
// left, and an optional proof step that separates redundant faults from
// aborted ones.
type Generator struct {
	Circuit    *circuit.Circuit
	Logger     *utils.Logger
	Options    Options
	Sensitizer *Sensitizer
	Simulator  *Simulator
	Checker    *RedundancyChecker
	Stats      Stats

	rng *rand.Rand
}

// NewGenerator creates a generator for a validated circuit, levelizing it if
// needed.
func NewGenerator(c *circuit.Circuit, opts Options, logger *utils.Logger) (*Generator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Order() == nil {
		if err := c.Levelize(); err != nil {
			return nil, err
		}
	}
	g := &Generator{
		Circuit:    c,
		Logger:     logger,
		Options:    opts,
		Sensitizer: NewSensitizer(c, logger, opts.MaxSteps),
		Simulator:  NewSimulator(c, logger),
		rng:        rand.New(rand.NewSource(opts.Seed)),
	}
	if opts.ClassifyRedundant {
		g.Checker = NewRedundancyChecker(c)
	}
	return g, nil
}

// TestFault tries to generate a vector for f alone. The vector is filled and
// replayed through the simulator with f injected; it is returned only if the
// replay detects f. Nil means no test was found on this attempt.
func (g *Generator) TestFault(f *Fault) *TestVector {
	c := g.Circuit
	g.Stats.Attempts++
	g.Logger.Fault("Targeting %s", f.Key(c))
	g.Logger.Indent()
	defer g.Logger.Outdent()

	if !g.Sensitizer.Sensitize(f) {
		if g.Sensitizer.Exhausted() {
			g.Stats.StepLimited++
			f.Status = Aborted
			g.Logger.Fault("%s: gave up after %d steps", f.Key(c), g.Sensitizer.Steps())
		} else {
			g.Logger.Fault("%s: no sensitized path", f.Key(c))
		}
		return nil
	}

	v := ExtractVector(c)
	v.Inputs = Fill(v.Inputs, g.Options.Fill, g.rng)
	if !g.Simulator.DetectsFault(v.Inputs, f) {
		g.Stats.Rejected++
		g.Logger.Fault("%s: vector %s does not detect the fault, rejected", f.Key(c), v.InputPattern())
		return nil
	}
	return v
}

// Run generates vectors for every undetected fault in list and hands each
// accepted vector to sink. Statuses in list are updated in place. An error
// is returned only when sink fails.
func (g *Generator) Run(list *FaultList, sink VectorSink) (Stats, error) {
	start := time.Now()
	g.Stats = Stats{Faults: list.Len()}
	g.Logger.Info("Starting test generation for %d faults", list.Len())

	for _, f := range list.All() {
		if f.Detected {
			continue
		}
		v := g.TestFault(f)
		if v == nil {
			continue
		}
		if err := g.accept(v, f, list, sink); err != nil {
			return g.Stats, err
		}
	}
	g.Logger.Info("Deterministic phase: %d vectors, %d faults detected", g.Stats.Vectors, list.Count(Detected))

	if g.Options.DropFaults && g.Options.RandomPatterns > 0 {
		if err := g.randomPhase(list, sink); err != nil {
			return g.Stats, err
		}
	}

	g.classify(list)

	g.Stats.Detected = list.Count(Detected)
	g.Stats.Redundant = list.Count(Redundant)
	g.Stats.Aborted = list.Count(Aborted)
	g.Stats.TotalTime = time.Since(start)
	g.logStats()
	return g.Stats, nil
}

func (g *Generator) accept(v *TestVector, target *Fault, list *FaultList, sink VectorSink) error {
	c := g.Circuit
	if g.Options.DropFaults {
		g.Simulator.DropFaults(v, list)
	} else {
		v.Outputs = g.Simulator.GoodResponse(v.Inputs)
		target.markDetected()
		v.Faults = append(v.Faults, target)
	}
	g.Stats.Vectors++
	g.Logger.Vector("%s -> %s detects %d faults (target %s)",
		v.InputPattern(), v.OutputPattern(), len(v.Faults), target.Key(c))
	return sink(v)
}

// randomPhase simulates random patterns and keeps the ones that detect at
// least one fault still undetected.
func (g *Generator) randomPhase(list *FaultList, sink VectorSink) error {
	c := g.Circuit
	for i := 0; i < g.Options.RandomPatterns; i++ {
		if len(list.Undetected()) == 0 {
			break
		}
		v := &TestVector{Inputs: RandomPattern(len(c.Inputs), g.rng)}
		if g.Simulator.DropFaults(v, list) == 0 {
			continue
		}
		g.Stats.Vectors++
		g.Stats.RandomVectors++
		g.Logger.Vector("random %s -> %s detects %d faults",
			v.InputPattern(), v.OutputPattern(), len(v.Faults))
		if err := sink(v); err != nil {
			return err
		}
	}
	g.Logger.Info("Random phase: %d vectors kept", g.Stats.RandomVectors)
	return nil
}

// classify gives every fault still undetected its final status.
func (g *Generator) classify(list *FaultList) {
	if g.Checker == nil {
		return
	}
	c := g.Circuit
	for _, f := range list.Undetected() {
		if g.Checker.Testable(f) {
			f.Status = Aborted
			continue
		}
		f.Status = Redundant
		g.Logger.Fault("%s: proven redundant", f.Key(c))
	}
}

// logStats logs the current statistics
func (g *Generator) logStats() {
	g.Logger.Info("Test generation statistics:")
	g.Logger.Info("- Faults: %d", g.Stats.Faults)
	g.Logger.Info("- Detected: %d (%.2f%%)", g.Stats.Detected, g.Stats.Coverage())
	g.Logger.Info("- Redundant: %d", g.Stats.Redundant)
	g.Logger.Info("- Aborted: %d", g.Stats.Aborted)
	g.Logger.Info("- Vectors: %d (%d random)", g.Stats.Vectors, g.Stats.RandomVectors)
	g.Logger.Info("- Attempts: %d, rejected on replay: %d, step limited: %d",
		g.Stats.Attempts, g.Stats.Rejected, g.Stats.StepLimited)
	g.Logger.Info("- Total time: %v", g.Stats.TotalTime)
	if g.Stats.Aborted > 0 {
		g.Logger.Warning("%d faults aborted without a test or a redundancy proof", g.Stats.Aborted)
	}
}
