package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fyerfyer/spath-atpg/pkg/algorithm"
	"github.com/fyerfyer/spath-atpg/pkg/circuit"
	"github.com/fyerfyer/spath-atpg/pkg/utils"
)

func main() {
	defaults := algorithm.DefaultOptions()

	// Parse command-line arguments
	circuitFile := flag.String("circuit", "", "Circuit file in BENCH format")
	faultFile := flag.String("faults", "", "Fault list to target instead of every fault (e.g. lines like 'net42/1' or 'a->b/0')")
	outputFile := flag.String("output", "", "Output file for test vectors (default: <circuit>.vec)")
	undetectedFile := flag.String("undetected", "", "Write faults left undetected to this file")
	debug := flag.Int("debug", 0, "Debug level: 0 info, 1 per fault and vector, 2 search trace")
	fill := flag.String("fill", defaults.Fill.String(), "Don't-care fill: zeros, ones or random")
	collapse := flag.Bool("collapse", defaults.DropFaults, "Drop faults detected by simulating each vector")
	branches := flag.Bool("branches", defaults.BranchFaults, "Model faults on fan-out branches")
	randomPatterns := flag.Int("random", defaults.RandomPatterns, "Random patterns tried after the deterministic phase")
	seed := flag.Int64("seed", defaults.Seed, "Seed for random fill and random patterns")
	maxSteps := flag.Int("max-steps", defaults.MaxSteps, "Search steps per fault before giving up (0 for no limit)")
	classify := flag.Bool("classify", defaults.ClassifyRedundant, "Prove undetected faults redundant with a SAT solver")
	logFile := flag.String("log", "", "Log file (default: stdout)")
	flag.Parse()

	// Configure logger
	logLevel := utils.LevelFromVerbosity(*debug)

	var logger *utils.Logger
	var err error

	if *logFile != "" {
		logger, err = utils.NewFileLogger(logLevel, *logFile)
		if err != nil {
			fmt.Printf("Error creating log file: %v\n", err)
			os.Exit(1)
		}
	} else {
		logger = utils.NewLogger(logLevel)
	}

	// Check required arguments
	if *circuitFile == "" {
		fmt.Println("Error: Circuit file is required")
		flag.Usage()
		os.Exit(1)
	}

	opts := defaults
	opts.Fill, err = algorithm.ParseFillPolicy(*fill)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	opts.DropFaults = *collapse
	opts.BranchFaults = *branches
	opts.RandomPatterns = *randomPatterns
	opts.Seed = *seed
	opts.MaxSteps = *maxSteps
	opts.ClassifyRedundant = *classify

	// Parse circuit file
	logger.Info("Parsing circuit from %s", *circuitFile)
	c, err := utils.ParseBenchFile(*circuitFile, circuit.DefaultLimits())
	if err != nil {
		logger.Error("Failed to parse circuit: %v", err)
		os.Exit(1)
	}
	logger.Info("Circuit: %s", c.Name)
	logger.Info("Gates: %d, levels: %d", len(c.Gates), c.MaxLevel+1)
	logger.Info("Primary inputs: %d, primary outputs: %d", len(c.Inputs), len(c.Outputs))
	if len(c.PseudoInputs) > 0 {
		logger.Info("Pseudo inputs: %d, pseudo outputs: %d", len(c.PseudoInputs), len(c.PseudoOutputs))
	}
	if logger.Enabled(utils.DebugLevel) {
		logger.Circuit("%s", c)
	}

	// Build the fault list
	var faults *algorithm.FaultList
	if *faultFile != "" {
		logger.Info("Reading faults from %s", *faultFile)
		specs, err := utils.ReadFaultFile(*faultFile, c)
		if err != nil {
			logger.Error("Failed to read fault list: %v", err)
			os.Exit(1)
		}
		faults = algorithm.NewFaultList()
		for _, s := range specs {
			faults.Add(&algorithm.Fault{Gate: s.Gate, Branch: s.Branch, StuckAt: s.StuckAt})
		}
	} else {
		faults = algorithm.EnumerateFaults(c, opts.BranchFaults)
	}
	logger.Info("Faults: %d (fan-out branches: %d)", faults.Len(), c.FanoutBranches())

	// Write vectors as they are generated
	if *outputFile == "" {
		*outputFile = strings.TrimSuffix(*circuitFile, ".bench") + ".vec"
	}
	vw, err := utils.CreateVectorFile(*outputFile)
	if err != nil {
		logger.Error("Error creating vector file: %v", err)
		os.Exit(1)
	}
	if err := vw.WriteHeader(c); err != nil {
		logger.Error("Error writing test vectors: %v", err)
		os.Exit(1)
	}

	gen, err := algorithm.NewGenerator(c, opts, logger)
	if err != nil {
		logger.Error("Failed to prepare circuit: %v", err)
		os.Exit(1)
	}
	stats, err := gen.Run(faults, func(v *algorithm.TestVector) error {
		return vw.WriteVector(v.InputPattern(), v.OutputPattern(), v.Labels(c))
	})
	if err != nil {
		logger.Error("Error writing test vectors: %v", err)
		os.Exit(1)
	}
	if err := vw.Close(); err != nil {
		logger.Error("Error writing test vectors: %v", err)
		os.Exit(1)
	}
	logger.Info("Wrote %d test vectors to %s", vw.Count(), *outputFile)

	if *undetectedFile != "" {
		var records []utils.FaultRecord
		for _, f := range faults.Undetected() {
			note := ""
			if f.Status == algorithm.Redundant || f.Status == algorithm.Aborted {
				note = f.Status.String()
			}
			records = append(records, utils.FaultRecord{Site: f.Site(c), StuckAt: f.StuckAt, Note: note})
		}
		if err := utils.WriteFaultFile(*undetectedFile, records); err != nil {
			logger.Error("Error writing undetected faults: %v", err)
			os.Exit(1)
		}
		logger.Info("Wrote %d undetected faults to %s", len(records), *undetectedFile)
	}

	// Print summary
	logger.Info("ATPG complete")
	logger.Info("Fault coverage: %.2f%% (%d/%d)", stats.Coverage(), stats.Detected, stats.Faults)
}
