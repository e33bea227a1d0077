// SPDX-License-Identifier: MIT

// Package sim drives a rescue mission from setup to completion: map
// generation, the known/hidden survivor split, the step loop with drone
// spawning, frame recording and the final report.
package sim

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/time/rate"

	"github.com/NEPXiss/rescue-mission/internal/drone"
	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/mission"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
	"github.com/NEPXiss/rescue-mission/internal/types"
)

// Options configure a simulation run.
type Options struct {
	Width        int     `json:"width" yaml:"width"`
	Height       int     `json:"height" yaml:"height"`
	ObstacleProb float64 `json:"obstacleProb" yaml:"obstacleProb"`
	DangerProb   float64 `json:"dangerProb" yaml:"dangerProb"`

	InitialSurvivors int `json:"initialSurvivors" yaml:"initialSurvivors"`
	HiddenSurvivors  int `json:"hiddenSurvivors" yaml:"hiddenSurvivors"`

	DetectionRadius int  `json:"detectionRadius" yaml:"detectionRadius"`
	SpawnDelay      int  `json:"spawnDelay" yaml:"spawnDelay"`
	MaxDrones       int  `json:"maxDrones" yaml:"maxDrones"`
	MaxSteps        int  `json:"maxSteps" yaml:"maxSteps"`
	AllowDiagonal   bool `json:"allowDiagonal" yaml:"allowDiagonal"`

	// DangerDecayProb reverts danger cells to normal with this per-step
	// probability. Zero disables decay.
	DangerDecayProb float64 `json:"dangerDecayProb" yaml:"dangerDecayProb"`

	Seed int64 `json:"seed" yaml:"seed"`

	// StepsPerSecond paces the loop for live viewers; zero runs unpaced.
	StepsPerSecond float64 `json:"stepsPerSecond" yaml:"stepsPerSecond"`

	// RecordFrames enables the snapshot recorder.
	RecordFrames bool `json:"recordFrames" yaml:"recordFrames"`
	FrameCap     int  `json:"frameCap" yaml:"frameCap"`
}

// DefaultOptions are the standard mission parameters.
func DefaultOptions() Options {
	return Options{
		Width:            30,
		Height:           30,
		ObstacleProb:     0.15,
		DangerProb:       0.10,
		InitialSurvivors: 8,
		HiddenSurvivors:  5,
		DetectionRadius:  3,
		SpawnDelay:       5,
		MaxDrones:        15,
		MaxSteps:         200,
		AllowDiagonal:    true,
		RecordFrames:     true,
	}
}

// Validate checks run options for basic sanity.
func (o Options) Validate() error {
	gen := terrain.GeneratorOptions{
		Width:        o.Width,
		Height:       o.Height,
		ObstacleProb: o.ObstacleProb,
		DangerProb:   o.DangerProb,
		Survivors:    o.InitialSurvivors + o.HiddenSurvivors,
	}
	if err := gen.Validate(); err != nil {
		return err
	}
	if o.MaxSteps <= 0 {
		return fmt.Errorf("maxSteps must be positive, got %d", o.MaxSteps)
	}
	if o.MaxDrones <= 0 {
		return fmt.Errorf("maxDrones must be positive, got %d", o.MaxDrones)
	}
	if o.SpawnDelay < 0 {
		return fmt.Errorf("spawnDelay must not be negative, got %d", o.SpawnDelay)
	}
	if o.DetectionRadius < 0 {
		return fmt.Errorf("detectionRadius must not be negative, got %d", o.DetectionRadius)
	}
	return nil
}

// Report summarizes a finished run.
type Report struct {
	Outcome types.MissionStatus `json:"outcome"`
	Status  mission.Status      `json:"status"`

	SuccessRate     float64 `json:"success_rate"` // rescued / total found, percent
	TotalDistance   float64 `json:"total_distance"`
	RescuesPerUnit  float64 `json:"rescues_per_unit_distance"`
	StepsPerRescue  float64 `json:"steps_per_rescue"`
	HiddenSurvivors int     `json:"hidden_survivors"`

	NeverFound []terrain.Point `json:"never_found,omitempty"`
}

// Runner owns one simulation from setup to report.
type Runner struct {
	opts     Options
	coord    *mission.Coordinator
	recorder *Recorder
	rng      *rand.Rand
	limiter  *rate.Limiter
	hidden   []terrain.Point
}

// NewRunner generates a map per the options and prepares the mission.
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	grid, err := terrain.Generate(terrain.GeneratorOptions{
		Width:        opts.Width,
		Height:       opts.Height,
		ObstacleProb: opts.ObstacleProb,
		DangerProb:   opts.DangerProb,
		Survivors:    opts.InitialSurvivors + opts.HiddenSurvivors,
		Seed:         seed,
	})
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}

	all := grid.Survivors()
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	known := all
	var hidden []terrain.Point
	if opts.HiddenSurvivors > 0 && opts.HiddenSurvivors < len(all) {
		known = all[:len(all)-opts.HiddenSurvivors]
		hidden = all[len(all)-opts.HiddenSurvivors:]
	}

	return newRunnerWithGrid(opts, grid, known, hidden, rng)
}

// NewRunnerFromScenario prepares a mission on a fixed scenario map.
func NewRunnerFromScenario(opts Options, sc *terrain.Scenario) (*Runner, error) {
	grid, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("build scenario: %w", err)
	}

	opts.Width = grid.Width
	opts.Height = grid.Height
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	r, err := newRunnerWithGrid(opts, grid, sc.Survivors, sc.Hidden, rng)
	if err != nil {
		return nil, err
	}
	if sc.Spawn != nil {
		// Rebuild the coordinator with the scenario's spawn point.
		r.coord = mission.NewCoordinator(grid, mission.Params{
			SpawnPoint:      *sc.Spawn,
			DetectionRadius: opts.DetectionRadius,
			SpawnDelay:      opts.SpawnDelay,
			AllowDiagonal:   opts.AllowDiagonal,
		}, sc.Survivors)
	}
	return r, nil
}

func newRunnerWithGrid(opts Options, grid *terrain.Grid, known, hidden []terrain.Point, rng *rand.Rand) (*Runner, error) {
	spawn, err := pickSpawnPoint(grid)
	if err != nil {
		return nil, err
	}

	coord := mission.NewCoordinator(grid, mission.Params{
		SpawnPoint:      spawn,
		DetectionRadius: opts.DetectionRadius,
		SpawnDelay:      opts.SpawnDelay,
		AllowDiagonal:   opts.AllowDiagonal,
	}, known)

	r := &Runner{
		opts:   opts,
		coord:  coord,
		rng:    rng,
		hidden: hidden,
	}
	if opts.RecordFrames {
		r.recorder = NewRecorder(opts.FrameCap)
		r.recorder.Snapshot(coord)
	}
	if opts.StepsPerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.StepsPerSecond), 1)
	}
	return r, nil
}

// pickSpawnPoint prefers (1,1) and falls back to the first open cell.
func pickSpawnPoint(grid *terrain.Grid) (terrain.Point, error) {
	spawn := terrain.Point{Y: 1, X: 1}
	if grid.At(spawn) == terrain.CellNormal {
		return spawn, nil
	}
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			p := terrain.Point{Y: y, X: x}
			if grid.At(p) == terrain.CellNormal {
				return p, nil
			}
		}
	}
	return terrain.Point{}, fmt.Errorf("map has no open spawn cell")
}

// Coordinator exposes the underlying mission for status queries.
func (r *Runner) Coordinator() *mission.Coordinator { return r.coord }

// Options returns the effective run options.
func (r *Runner) Options() Options { return r.opts }

// Finished reports whether the mission reached a terminal condition.
func (r *Runner) Finished() bool {
	return r.coord.Complete() || r.coord.Clock() >= r.opts.MaxSteps
}

// Outcome classifies the current state for callers driving the loop
// step by step instead of through Run.
func (r *Runner) Outcome() types.MissionStatus {
	switch {
	case r.coord.Complete():
		return types.MissionStatusCompleted
	case r.coord.Clock() >= r.opts.MaxSteps:
		return types.MissionStatusExhausted
	default:
		return types.MissionStatusRunning
	}
}

// BuildReport summarizes the mission as it stands now.
func (r *Runner) BuildReport() *Report {
	outcome := r.Outcome()
	if outcome == types.MissionStatusRunning {
		outcome = types.MissionStatusAborted
	}
	return r.report(outcome)
}

// Recorder returns the frame recorder, nil when recording is disabled.
func (r *Runner) Recorder() *Recorder { return r.recorder }

// Step advances the mission one tick and records a frame.
func (r *Runner) Step(ctx context.Context) mission.StepLog {
	spawnNew := len(r.coord.Drones()) < r.opts.MaxDrones
	speed := drone.RandomSpeed(r.rng)

	log := r.coord.Step(ctx, spawnNew, speed)

	if r.opts.DangerDecayProb > 0 {
		r.coord.Grid().DecayDanger(r.rng, r.opts.DangerDecayProb)
	}
	if r.recorder != nil {
		r.recorder.Snapshot(r.coord)
	}
	return log
}

// Run executes the loop until completion, step exhaustion or ctx cancel,
// then reports.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	logger := rmlog.WithComponentFromContext(ctx, "sim")
	logger.Info().
		Int("max_steps", r.opts.MaxSteps).
		Int("max_drones", r.opts.MaxDrones).
		Int("hidden", len(r.hidden)).
		Msg("starting simulation")

	outcome := types.MissionStatusExhausted

	for step := 0; step < r.opts.MaxSteps; step++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return r.report(types.MissionStatusAborted), err
			}
		} else if err := ctx.Err(); err != nil {
			return r.report(types.MissionStatusAborted), err
		}

		log := r.Step(ctx)

		if len(log.Discovered) > 0 || len(log.Rescues) > 0 {
			logger.Debug().
				Int(rmlog.FieldStep, log.Time).
				Int(rmlog.FieldDiscovered, len(log.Discovered)).
				Int(rmlog.FieldRescued, len(log.Rescues)).
				Msg("mission event")
		}

		if r.coord.Complete() {
			outcome = types.MissionStatusCompleted
			break
		}
	}

	report := r.report(outcome)
	logger.Info().
		Str("outcome", outcome.String()).
		Int("steps", report.Status.Time).
		Int("rescued", report.Status.RescuedSurvivors).
		Float64("success_rate", report.SuccessRate).
		Msg("simulation finished")
	return report, nil
}

func (r *Runner) report(outcome types.MissionStatus) *Report {
	status := r.coord.Status()

	var totalDistance float64
	for _, d := range r.coord.Drones() {
		totalDistance += d.DistanceTraveled
	}

	rep := &Report{
		Outcome:         outcome,
		Status:          status,
		TotalDistance:   totalDistance,
		HiddenSurvivors: len(r.hidden),
		NeverFound:      r.coord.NeverFound(),
	}
	if status.TotalSurvivors > 0 {
		rep.SuccessRate = float64(status.RescuedSurvivors) / float64(status.TotalSurvivors) * 100
	}
	if totalDistance > 0 {
		rep.RescuesPerUnit = float64(status.RescuedSurvivors) / totalDistance
	}
	rescued := status.RescuedSurvivors
	if rescued == 0 {
		rescued = 1
	}
	rep.StepsPerRescue = float64(status.Time) / float64(rescued)

	return rep
}
