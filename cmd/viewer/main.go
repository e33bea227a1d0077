// SPDX-License-Identifier: MIT

// Command viewer animates a rescue mission in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
	"github.com/NEPXiss/rescue-mission/internal/tui"
)

var version = "v0.1.0"

func main() {
	opts := sim.DefaultOptions()

	flag.IntVar(&opts.Width, "width", opts.Width, "map width")
	flag.IntVar(&opts.Height, "height", opts.Height, "map height")
	flag.IntVar(&opts.InitialSurvivors, "survivors", opts.InitialSurvivors, "known survivors")
	flag.IntVar(&opts.HiddenSurvivors, "hidden", opts.HiddenSurvivors, "hidden survivors")
	flag.IntVar(&opts.MaxDrones, "max-drones", opts.MaxDrones, "maximum drones to deploy")
	flag.IntVar(&opts.MaxSteps, "max-steps", opts.MaxSteps, "step budget")
	flag.Int64Var(&opts.Seed, "seed", 0, "random seed, 0 picks one")
	scenarioPath := flag.String("scenario", "", "YAML scenario file instead of a random map")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Keep zerolog quiet so the TUI owns the terminal.
	rmlog.Configure(rmlog.Config{
		Level:   "error",
		Service: "rescue-viewer",
		Version: version,
	})

	// The TUI drives stepping itself; no frame recording or pacing.
	opts.RecordFrames = false
	opts.StepsPerSecond = 0

	var (
		runner *sim.Runner
		err    error
	)
	if *scenarioPath != "" {
		sc, serr := terrain.LoadScenario(*scenarioPath)
		if serr != nil {
			fmt.Fprintf(os.Stderr, "load scenario: %v\n", serr)
			os.Exit(1)
		}
		runner, err = sim.NewRunnerFromScenario(opts, sc)
	} else {
		runner, err = sim.NewRunner(opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare mission: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(runner); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
