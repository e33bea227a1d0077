// SPDX-License-Identifier: MIT

// Command simulate runs one rescue mission to completion from the
// command line and writes the report and map artifacts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/NEPXiss/rescue-mission/internal/artifact"
	"github.com/NEPXiss/rescue-mission/internal/drone"
	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/render"
	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/swarm"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

var version = "v0.1.0"

func main() {
	opts := sim.DefaultOptions()

	flag.IntVar(&opts.Width, "width", opts.Width, "map width")
	flag.IntVar(&opts.Height, "height", opts.Height, "map height")
	flag.Float64Var(&opts.ObstacleProb, "obstacles", opts.ObstacleProb, "obstacle probability per cell")
	flag.Float64Var(&opts.DangerProb, "danger", opts.DangerProb, "danger zone probability per cell")
	flag.IntVar(&opts.InitialSurvivors, "survivors", opts.InitialSurvivors, "known survivors")
	flag.IntVar(&opts.HiddenSurvivors, "hidden", opts.HiddenSurvivors, "hidden survivors, found only by detection")
	flag.IntVar(&opts.DetectionRadius, "radius", opts.DetectionRadius, "drone detection radius")
	flag.IntVar(&opts.SpawnDelay, "spawn-delay", opts.SpawnDelay, "steps between drone spawns")
	flag.IntVar(&opts.MaxDrones, "max-drones", opts.MaxDrones, "maximum drones to deploy")
	flag.IntVar(&opts.MaxSteps, "max-steps", opts.MaxSteps, "step budget")
	flag.BoolVar(&opts.AllowDiagonal, "diagonal", opts.AllowDiagonal, "allow diagonal movement")
	flag.Float64Var(&opts.DangerDecayProb, "danger-decay", opts.DangerDecayProb, "per-step probability of danger zones clearing")
	flag.Int64Var(&opts.Seed, "seed", 0, "random seed, 0 picks one")

	scenarioPath := flag.String("scenario", "", "YAML scenario file instead of a random map")
	swarmMode := flag.Bool("swarm", false, "static swarm planner: fixed roster, all survivors briefed, no spawning or detection")
	outDir := flag.String("out", "", "artifact output directory, empty disables artifacts")
	logLevel := flag.String("log-level", "info", "log level")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	rmlog.Configure(rmlog.Config{
		Level:   *logLevel,
		Service: "rescue-simulate",
		Version: version,
	})
	logger := rmlog.WithComponent("simulate")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *swarmMode {
		runSwarm(ctx, opts, *scenarioPath)
		return
	}

	var (
		runner *sim.Runner
		err    error
	)
	if *scenarioPath != "" {
		sc, serr := terrain.LoadScenario(*scenarioPath)
		if serr != nil {
			logger.Fatal().Err(serr).Str("path", *scenarioPath).Msg("load scenario")
		}
		runner, err = sim.NewRunnerFromScenario(opts, sc)
	} else {
		runner, err = sim.NewRunner(opts)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("prepare mission")
	}

	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("mission interrupted")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Fatal().Err(err).Msg("encode report")
	}

	if *outDir != "" {
		writeArtifacts(ctx, *outDir, runner, report)
	}
}

// runSwarm deploys the whole roster at once and flies every drone to a
// pre-assigned survivor. No spawning schedule, no detection sweeps.
func runSwarm(ctx context.Context, opts sim.Options, scenarioPath string) {
	logger := rmlog.WithComponent("simulate")

	var (
		grid *terrain.Grid
		err  error
	)
	if scenarioPath != "" {
		sc, serr := terrain.LoadScenario(scenarioPath)
		if serr != nil {
			logger.Fatal().Err(serr).Str("path", scenarioPath).Msg("load scenario")
		}
		grid, err = sc.Build()
	} else {
		grid, err = terrain.Generate(terrain.GeneratorOptions{
			Width:        opts.Width,
			Height:       opts.Height,
			ObstacleProb: opts.ObstacleProb,
			DangerProb:   opts.DangerProb,
			Survivors:    opts.InitialSurvivors + opts.HiddenSurvivors,
			Seed:         opts.Seed,
		})
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("prepare map")
	}

	free := grid.FreeCells()
	if len(free) == 0 {
		logger.Fatal().Msg("map has no free cell to stage the roster")
	}
	base := free[0]

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation randomness

	drones := make([]*drone.Drone, 0, opts.MaxDrones)
	for i := 0; i < opts.MaxDrones; i++ {
		drones = append(drones, drone.New(i, base, drone.RandomSpeed(rng)))
	}

	swarmOpts := swarm.DefaultOptions()
	swarmOpts.AllowDiagonal = opts.AllowDiagonal
	planner := swarm.New(grid, drones, grid.Survivors(), swarmOpts)

	summary := planner.Run(ctx, opts.MaxSteps)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		logger.Fatal().Err(err).Msg("encode summary")
	}
}

func writeArtifacts(ctx context.Context, dir string, runner *sim.Runner, report *sim.Report) {
	logger := rmlog.WithComponent("simulate")

	writer, err := artifact.NewWriter(dir)
	if err != nil {
		logger.Fatal().Err(err).Str("path", dir).Msg("prepare artifact directory")
	}

	missionID := uuid.NewString()
	if path, err := writer.WriteReport(ctx, missionID, report); err != nil {
		logger.Error().Err(err).Msg("write report")
	} else {
		logger.Info().Str("path", path).Msg("report written")
	}

	rec := runner.Recorder()
	if rec == nil || rec.Len() == 0 {
		return
	}
	frames := rec.Frames()
	last := frames[len(frames)-1]

	if path, err := writer.WriteMapPNG(ctx, missionID, &last, 0); err != nil {
		logger.Error().Err(err).Msg("write map image")
	} else {
		logger.Info().Str("path", path).Msg("map image written")
	}
	if path, err := writer.WriteAnimationGIF(ctx, missionID, frames, render.DefaultGIFOptions()); err != nil {
		logger.Error().Err(err).Msg("write animation")
	} else {
		logger.Info().Str("path", path).Msg("animation written")
	}
}
