// SPDX-License-Identifier: MIT

// Package swarm implements greedy nearest-target planning for a fixed set of
// drones and survivors, with pheromone deposits and pairwise knowledge
// sharing between drones.
package swarm

import (
	"context"
	"time"

	"github.com/NEPXiss/rescue-mission/internal/drone"
	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/metrics"
	"github.com/NEPXiss/rescue-mission/internal/pathfind"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

// Options tune the swarm planner.
type Options struct {
	// Alpha weighs pheromone attraction, Beta weighs the distance heuristic
	// when scoring candidate targets.
	Alpha float64
	Beta  float64

	// PheromoneDeposit is the amount laid down per drone per step.
	PheromoneDeposit float64

	// PheromoneDecay is the per-step field decay rate.
	PheromoneDecay float64

	AllowDiagonal bool
}

// DefaultOptions are the standard planner weights.
func DefaultOptions() Options {
	return Options{
		Alpha:            1.0,
		Beta:             2.0,
		PheromoneDeposit: 1.0,
		PheromoneDecay:   0.05,
	}
}

// Planner coordinates a fixed roster of drones toward a fixed survivor list.
// For the dynamic mission lifecycle (spawning, discovery, re-planning) see
// the mission package.
type Planner struct {
	grid      *terrain.Grid
	drones    []*drone.Drone
	survivors []terrain.Point
	opts      Options
	astar     *pathfind.Planner
	step      int
}

// New creates a swarm planner over the given grid, drones and survivors.
func New(grid *terrain.Grid, drones []*drone.Drone, survivors []terrain.Point, opts Options) *Planner {
	return &Planner{
		grid:      grid,
		drones:    drones,
		survivors: survivors,
		opts:      opts,
		astar:     pathfind.New(grid, opts.AllowDiagonal),
	}
}

// AssignTargets gives each drone the cheapest reachable survivor. Unreachable
// drones are left idle.
func (p *Planner) AssignTargets() {
	logger := rmlog.WithComponent("swarm")

	for _, d := range p.drones {
		var (
			bestPath   []terrain.Point
			bestCost   = -1.0
			bestTarget terrain.Point
		)

		for _, target := range p.survivors {
			if p.grid.At(target) == terrain.CellObstacle {
				continue
			}
			start := time.Now()
			result, err := p.astar.FindPath(d.Pos, target)
			metrics.PathSearch(err == nil, time.Since(start))
			if err != nil {
				continue
			}
			score := p.score(target, result.Cost)
			if bestCost < 0 || score < bestCost {
				bestCost = score
				bestPath = result.Path
				bestTarget = target
			}
		}

		if bestPath != nil {
			d.AssignTarget(bestTarget, bestPath)
			logger.Debug().
				Int(rmlog.FieldDroneID, d.ID).
				Str(rmlog.FieldTarget, bestTarget.String()).
				Int("path_len", len(bestPath)).
				Float64(rmlog.FieldCost, bestCost).
				Msg("target assigned")
		} else {
			logger.Debug().
				Int(rmlog.FieldDroneID, d.ID).
				Msg("no reachable target")
		}
	}
}

// score biases the raw path cost by the pheromone level at the target:
// heavily trailed targets look cheaper, pulling the swarm together.
func (p *Planner) score(target terrain.Point, cost float64) float64 {
	ph := p.grid.Pheromone(target)
	return p.opts.Beta*cost - p.opts.Alpha*ph
}

// StepDrones moves every drone one cell along its path, lays pheromone at
// the new positions and decays the field.
func (p *Planner) StepDrones() {
	p.step++
	for _, d := range p.drones {
		if len(d.Path) == 0 || d.ReachedTarget() {
			continue
		}
		d.MoveStep()
		p.grid.DepositPheromone(d.Pos, p.opts.PheromoneDeposit)
		d.Learn(d.Pos, p.step)
	}
	p.grid.DecayPheromone(p.opts.PheromoneDecay)
}

// ShareKnowledge merges every drone's knowledge into every other drone.
func (p *Planner) ShareKnowledge() {
	for i, d := range p.drones {
		for j, other := range p.drones {
			if i != j {
				d.ShareWith(other)
			}
		}
	}
}

// Done reports whether every drone with an assignment has reached its target.
func (p *Planner) Done() bool {
	for _, d := range p.drones {
		if d.Target != nil && !d.ReachedTarget() {
			return false
		}
	}
	return true
}

// Summary describes a finished static swarm run.
type Summary struct {
	Steps         int     `json:"steps"`
	Drones        int     `json:"drones"`
	Reached       int     `json:"reached"`
	Survivors     int     `json:"survivors"`
	TotalDistance float64 `json:"total_distance"`
}

// Run assigns targets once and steps the swarm until every assigned drone
// arrives, maxSteps elapses or ctx is cancelled.
func (p *Planner) Run(ctx context.Context, maxSteps int) Summary {
	p.AssignTargets()

	steps := 0
	for ; steps < maxSteps && !p.Done(); steps++ {
		if ctx.Err() != nil {
			break
		}
		p.StepDrones()
		p.ShareKnowledge()
	}

	sum := Summary{
		Steps:     steps,
		Drones:    len(p.drones),
		Survivors: len(p.survivors),
	}
	for _, d := range p.drones {
		if d.ReachedTarget() {
			sum.Reached++
		}
		sum.TotalDistance += d.DistanceTraveled
	}

	logger := rmlog.WithComponent("swarm")
	logger.Info().
		Int(rmlog.FieldStep, sum.Steps).
		Int("drones", sum.Drones).
		Int("reached", sum.Reached).
		Float64("distance", sum.TotalDistance).
		Msg("swarm run finished")
	return sum
}
