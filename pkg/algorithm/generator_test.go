package algorithm_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fyerfyer/spath-atpg/pkg/algorithm"
	"github.com/fyerfyer/spath-atpg/pkg/circuit"
	"github.com/fyerfyer/spath-atpg/pkg/utils"
)

func TestRunSingleAnd(t *testing.T) {
	c := parseBench(t, singleAnd)
	gen := newGenerator(t, c, algorithm.DefaultOptions())
	list := algorithm.EnumerateFaults(c, true)

	var vectors []*algorithm.TestVector
	stats, err := gen.Run(list, collect(&vectors))
	require.NoError(t, err)

	require.Len(t, vectors, 3)
	assert.Equal(t, "11", vectors[0].InputPattern())
	assert.Equal(t, "1", vectors[0].OutputPattern())
	assert.Equal(t, []string{"(A, 0)", "(B, 0)", "(G1, 0)"}, vectors[0].Labels(c))
	assert.Equal(t, "01", vectors[1].InputPattern())
	assert.Equal(t, []string{"(A, 1)", "(G1, 1)"}, vectors[1].Labels(c))
	assert.Equal(t, "10", vectors[2].InputPattern())

	assert.Equal(t, 6, stats.Faults)
	assert.Equal(t, 6, stats.Detected)
	assert.Equal(t, 100.0, stats.Coverage())
	assert.Equal(t, 0, stats.RandomVectors)
	assert.Empty(t, list.Undetected())
}

func TestRunTargetFaultOnly(t *testing.T) {
	c := parseBench(t, singleAnd)
	gen := newGenerator(t, c, algorithm.DefaultOptions())

	list := algorithm.NewFaultList()
	target := algorithm.NewFault(gateID(t, c, "G1"), 0)
	list.Add(target)

	var vectors []*algorithm.TestVector
	_, err := gen.Run(list, collect(&vectors))
	require.NoError(t, err)

	require.Len(t, vectors, 1)
	assert.Equal(t, "11", vectors[0].InputPattern())
	assert.Equal(t, "1", vectors[0].OutputPattern())
	assert.GreaterOrEqual(t, len(vectors[0].Faults), 1)
	assert.Equal(t, algorithm.Detected, target.Status)
}

func TestRunWithoutDropping(t *testing.T) {
	c := parseBench(t, singleAnd)
	opts := algorithm.DefaultOptions()
	opts.DropFaults = false
	gen := newGenerator(t, c, opts)

	var vectors []*algorithm.TestVector
	stats, err := gen.Run(algorithm.EnumerateFaults(c, true), collect(&vectors))
	require.NoError(t, err)

	assert.Len(t, vectors, 6, "one vector per fault")
	for _, v := range vectors {
		assert.Len(t, v.Faults, 1)
		assert.Len(t, v.Outputs, 1)
	}
	assert.Equal(t, 6, stats.Detected)
}

func TestRunDeadLogic(t *testing.T) {
	c := parseBench(t, "INPUT(a)\nINPUT(b)\nOUTPUT(o)\no = AND(a, b)\ndead = OR(a, b)\n")
	gen := newGenerator(t, c, algorithm.DefaultOptions())
	list := algorithm.EnumerateFaults(c, true)

	stats, err := gen.Run(list, collect(new([]*algorithm.TestVector)))
	require.NoError(t, err)

	dead := gateID(t, c, "dead")
	var records []utils.FaultRecord
	for _, f := range list.Undetected() {
		records = append(records, utils.FaultRecord{Site: f.Site(c), StuckAt: f.StuckAt, Note: f.Status.String()})
	}
	for _, f := range list.All() {
		if f.Gate == dead {
			assert.False(t, f.Detected, f.Key(c))
			assert.Equal(t, algorithm.Redundant, f.Status, f.Key(c))
		}
	}
	// The two branches into dead are just as unobservable as its stem.
	assert.Equal(t, 6, stats.Redundant)
	assert.Contains(t, buf(records), "a->dead/1 # redundant\n")

	assert.Contains(t, buf(records), "\ndead/0 # redundant\n")
	assert.Contains(t, buf(records), "\ndead/1 # redundant\n")
}

func buf(records []utils.FaultRecord) string {
	var b bytes.Buffer
	if err := utils.WriteFaultList(&b, records); err != nil {
		return err.Error()
	}
	return b.String()
}

func TestRunLeavesUnprovenFaultsUndetected(t *testing.T) {
	c := parseBench(t, "INPUT(a)\nINPUT(b)\nOUTPUT(o)\no = AND(a, b)\ndead = OR(a, b)\n")
	opts := algorithm.DefaultOptions()
	opts.ClassifyRedundant = false
	gen := newGenerator(t, c, opts)
	list := algorithm.EnumerateFaults(c, true)

	_, err := gen.Run(list, collect(new([]*algorithm.TestVector)))
	require.NoError(t, err)
	for _, f := range list.Undetected() {
		assert.Equal(t, algorithm.Undetected, f.Status, f.Key(c))
	}
}

func TestRunXorFaultsAbort(t *testing.T) {
	c := parseBench(t, "INPUT(a)\nINPUT(b)\nOUTPUT(o)\no = XOR(a, b)\n")
	gen := newGenerator(t, c, algorithm.DefaultOptions())
	list := algorithm.EnumerateFaults(c, true)

	stats, err := gen.Run(list, collect(new([]*algorithm.TestVector)))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Detected)
	assert.Equal(t, list.Len(), stats.Aborted)
}

func TestRandomPhaseAfterStepLimit(t *testing.T) {
	c := parseBench(t, singleAnd)
	opts := algorithm.DefaultOptions()
	opts.MaxSteps = 1
	opts.RandomPatterns = 64
	gen := newGenerator(t, c, opts)

	var vectors []*algorithm.TestVector
	stats, err := gen.Run(algorithm.EnumerateFaults(c, true), collect(&vectors))
	require.NoError(t, err)

	assert.Equal(t, stats.Attempts, stats.StepLimited)
	assert.Equal(t, len(vectors), stats.RandomVectors)
	assert.Equal(t, 100.0, stats.Coverage())
	for _, v := range vectors {
		assert.NotEmpty(t, v.Faults)
	}
}

func TestRunStopsOnSinkError(t *testing.T) {
	c := parseBench(t, singleAnd)
	gen := newGenerator(t, c, algorithm.DefaultOptions())

	boom := errors.New("disk full")
	_, err := gen.Run(algorithm.EnumerateFaults(c, true), func(*algorithm.TestVector) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestNewGeneratorLevelizes(t *testing.T) {
	c := circuit.NewCircuit("loop")
	p, _ := c.AddGate("p", circuit.AND)
	q, _ := c.AddGate("q", circuit.AND)
	require.NoError(t, c.Connect(p.ID, q.ID))
	require.NoError(t, c.Connect(q.ID, p.ID))
	c.MarkOutput(q.ID)

	_, err := algorithm.NewGenerator(c, algorithm.DefaultOptions(), utils.Discard())
	assert.ErrorIs(t, err, circuit.ErrMalformedNetlist)
}

func TestNewGeneratorValidates(t *testing.T) {
	c := circuit.NewCircuit("buf")
	a, _ := c.AddGate("a", circuit.PI)
	c.MarkInput(a.ID)
	b, _ := c.AddGate("b", circuit.BUF)
	c.MarkOutput(b.ID)

	_, err := algorithm.NewGenerator(c, algorithm.DefaultOptions(), utils.Discard())
	assert.ErrorIs(t, err, circuit.ErrMalformedNetlist)

	// The search itself refuses a buffer without a driver.
	s := algorithm.NewSensitizer(c, utils.Discard(), 0)
	assert.False(t, s.Sensitize(algorithm.NewFault(b.ID, 0)))
	assert.False(t, s.Justify(b.ID, circuit.One))
}

// Every emitted vector must detect each fault it claims when replayed on a
// fresh simulator, and every fault ends with a final status.
func TestEmittedVectorsDetectTheirFaults(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := randomCircuit(t)
		opts := algorithm.DefaultOptions()
		opts.Seed = rapid.Int64().Draw(t, "seed")
		opts.RandomPatterns = rapid.IntRange(0, 8).Draw(t, "random")
		opts.Fill = rapid.SampledFrom([]algorithm.FillPolicy{
			algorithm.FillZeros, algorithm.FillOnes, algorithm.FillRandom,
		}).Draw(t, "fill")
		gen := newGenerator(t, c, opts)
		list := algorithm.EnumerateFaults(c, true)

		var vectors []*algorithm.TestVector
		stats, err := gen.Run(list, collect(&vectors))
		require.NoError(t, err)

		sim := algorithm.NewSimulator(c, utils.Discard())
		claimed := 0
		for _, v := range vectors {
			assert.Equal(t, v.OutputPattern(), circuit.FormatPattern(sim.GoodResponse(v.Inputs)))
			for _, f := range v.Faults {
				assert.True(t, sim.DetectsFault(v.Inputs, f), "%s by %s", f.Key(c), v.InputPattern())
			}
			claimed += len(v.Faults)
		}
		assert.Equal(t, stats.Detected, claimed)
		assert.Equal(t, stats.Faults, stats.Detected+stats.Redundant+stats.Aborted)

		checker := algorithm.NewRedundancyChecker(c)
		for _, f := range list.All() {
			if f.Status == algorithm.Redundant {
				assert.False(t, exhaustivelyDetected(c, sim, f), f.Key(c))
			}
			if f.Detected {
				assert.True(t, checker.Testable(f), f.Key(c))
			}
		}
	})
}
