// SPDX-License-Identifier: MIT

// Package mission implements dynamic task assignment for a rescue mission:
// drone spawning, greedy assignment by estimated arrival time, detection of
// hidden survivors and cost-driven re-planning.
package mission

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NEPXiss/rescue-mission/internal/drone"
	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/metrics"
	"github.com/NEPXiss/rescue-mission/internal/pathfind"
	"github.com/NEPXiss/rescue-mission/internal/telemetry"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

// DefaultReassignThreshold: a busy drone only switches target when the new
// time cost is below half its current remaining cost.
const DefaultReassignThreshold = 0.5

// Params configure a coordinator.
type Params struct {
	SpawnPoint      terrain.Point
	DetectionRadius int
	SpawnDelay      int // steps between drone deployments
	AllowDiagonal   bool

	// ReassignThreshold is the newCost/currentCost ratio below which a busy
	// drone abandons its target for an unassigned survivor.
	ReassignThreshold float64
}

// Assignment records one drone-to-survivor commitment with its estimated
// arrival time in steps.
type Assignment struct {
	DroneID int           `json:"drone_id"`
	Target  terrain.Point `json:"target"`
	ETA     float64       `json:"eta"`
}

// Move records a drone position change during a step.
type Move struct {
	DroneID int           `json:"drone_id"`
	From    terrain.Point `json:"from"`
	To      terrain.Point `json:"to"`
}

// Rescue records a completed rescue during a step.
type Rescue struct {
	DroneID int           `json:"drone_id"`
	Pos     terrain.Point `json:"pos"`
}

// StepLog captures everything that happened during one coordinator step.
type StepLog struct {
	Time       int             `json:"time"`
	SpawnedID  *int            `json:"spawned_id,omitempty"`
	Moves      []Move          `json:"moves,omitempty"`
	Discovered []terrain.Point `json:"discovered,omitempty"`
	Rescues    []Rescue        `json:"rescues,omitempty"`
	Assigned   []Assignment    `json:"assigned,omitempty"`
}

// Status is a point-in-time mission summary.
type Status struct {
	Time                int `json:"time"`
	DronesDeployed      int `json:"drones_deployed"`
	KnownSurvivors      int `json:"known_survivors"`
	DiscoveredSurvivors int `json:"discovered_survivors"`
	RescuedSurvivors    int `json:"rescued_survivors"`
	TotalSurvivors      int `json:"total_survivors"`
	RemainingSurvivors  int `json:"remaining_survivors"`
	ActiveAssignments   int `json:"active_assignments"`
}

// Coordinator owns the mission state. It is not safe for concurrent use;
// callers serialize access (the sim runner and API layer hold a per-mission
// lock).
type Coordinator struct {
	grid   *terrain.Grid
	params Params
	astar  *pathfind.Planner
	logger zerolog.Logger

	drones []*drone.Drone

	known      map[terrain.Point]struct{}
	discovered map[terrain.Point]struct{}
	rescued    map[terrain.Point]struct{}

	// census tracks every survivor on the map, hidden ones included. It is
	// bookkeeping only and must never feed assignment.
	census map[terrain.Point]struct{}

	assignments map[int]terrain.Point // drone ID -> target

	clock     int
	nextSpawn int
	nextID    int
}

// NewCoordinator creates a coordinator for the given grid. knownSurvivors is
// the initial briefing; the full census (hidden survivors included) comes
// from the grid itself.
func NewCoordinator(grid *terrain.Grid, params Params, knownSurvivors []terrain.Point) *Coordinator {
	if params.ReassignThreshold <= 0 {
		params.ReassignThreshold = DefaultReassignThreshold
	}

	c := &Coordinator{
		grid:        grid,
		params:      params,
		astar:       pathfind.New(grid, params.AllowDiagonal),
		logger:      rmlog.WithComponent("coordinator"),
		known:       make(map[terrain.Point]struct{}, len(knownSurvivors)),
		discovered:  make(map[terrain.Point]struct{}),
		rescued:     make(map[terrain.Point]struct{}),
		census:      make(map[terrain.Point]struct{}),
		assignments: make(map[int]terrain.Point),
	}
	for _, p := range knownSurvivors {
		c.known[p] = struct{}{}
	}
	for _, p := range grid.Survivors() {
		c.census[p] = struct{}{}
	}

	c.logger.Info().
		Int(rmlog.FieldSurvivors, len(knownSurvivors)).
		Int("census", len(c.census)).
		Str("spawn", params.SpawnPoint.String()).
		Msg("mission initialized")

	return c
}

// Grid returns the coordinator's terrain grid.
func (c *Coordinator) Grid() *terrain.Grid { return c.grid }

// Drones returns the live drone roster.
func (c *Coordinator) Drones() []*drone.Drone { return c.drones }

// Clock returns the mission's logical time.
func (c *Coordinator) Clock() int { return c.clock }

// SpawnDrone deploys a new drone at the spawn point.
func (c *Coordinator) SpawnDrone(speed float64) *drone.Drone {
	d := drone.New(c.nextID, c.params.SpawnPoint, speed)
	c.nextID++
	c.drones = append(c.drones, d)
	metrics.DroneSpawned()

	c.logger.Info().
		Int(rmlog.FieldDroneID, d.ID).
		Str(rmlog.FieldCallsign, d.Callsign).
		Float64("speed", d.Speed).
		Msg("drone deployed")
	return d
}

// findPath wraps the planner with search metrics.
func (c *Coordinator) findPath(from, to terrain.Point) (*pathfind.Result, error) {
	start := time.Now()
	result, err := c.astar.FindPath(from, to)
	metrics.PathSearch(err == nil, time.Since(start))
	return result, err
}

// assignable returns the survivors eligible for assignment: known or
// discovered, not yet rescued. Hidden census entries are excluded by
// construction.
func (c *Coordinator) assignable() map[terrain.Point]struct{} {
	out := make(map[terrain.Point]struct{}, len(c.known)+len(c.discovered))
	for p := range c.known {
		out[p] = struct{}{}
	}
	for p := range c.discovered {
		out[p] = struct{}{}
	}
	for p := range c.rescued {
		delete(out, p)
	}
	return out
}

func (c *Coordinator) assignedTargets() map[terrain.Point]struct{} {
	out := make(map[terrain.Point]struct{}, len(c.assignments))
	for _, t := range c.assignments {
		out[t] = struct{}{}
	}
	return out
}

// AssignTasks greedily matches available drones to unassigned survivors by
// estimated arrival time (path cost divided by drone speed).
func (c *Coordinator) AssignTasks() []Assignment {
	available := c.assignable()
	taken := c.assignedTargets()

	var idle []*drone.Drone
	for _, d := range c.drones {
		if d.Target == nil {
			idle = append(idle, d)
			continue
		}
		if _, done := c.rescued[*d.Target]; done {
			idle = append(idle, d)
		}
	}

	if len(available) == 0 || len(idle) == 0 {
		return nil
	}

	var result []Assignment
	for _, d := range idle {
		var (
			bestTarget *terrain.Point
			bestPath   []terrain.Point
			bestCost   = math.Inf(1)
		)

		for target := range available {
			if _, ok := taken[target]; ok {
				continue
			}
			res, err := c.findPath(d.Pos, target)
			if err != nil {
				continue
			}
			timeCost := res.Cost / d.Speed
			if timeCost < bestCost {
				bestCost = timeCost
				bestPath = res.Path
				t := target
				bestTarget = &t
			}
		}

		if bestTarget == nil {
			continue
		}

		d.AssignTarget(*bestTarget, bestPath)
		c.assignments[d.ID] = *bestTarget
		taken[*bestTarget] = struct{}{}
		result = append(result, Assignment{DroneID: d.ID, Target: *bestTarget, ETA: bestCost})

		c.logger.Debug().
			Int(rmlog.FieldDroneID, d.ID).
			Str(rmlog.FieldTarget, bestTarget.String()).
			Float64("eta", bestCost).
			Msg("task assigned")
	}

	return result
}

// Replan reassigns busy drones when unassigned survivors remain after
// a discovery.
func (c *Coordinator) Replan() {
	if len(c.unassigned()) == 0 {
		return
	}
	c.reassignDrones()
}

func (c *Coordinator) unassigned() map[terrain.Point]struct{} {
	out := c.assignable()
	for _, t := range c.assignments {
		delete(out, t)
	}
	return out
}

// reassignDrones lets a traveling drone switch to an unassigned survivor
// when doing so is substantially cheaper than finishing its current leg.
func (c *Coordinator) reassignDrones() {
	unassigned := c.unassigned()
	if len(unassigned) == 0 {
		return
	}

	for _, d := range c.drones {
		if d.Target == nil || d.ReachedTarget() {
			continue
		}

		currentRes, err := c.findPath(d.Pos, *d.Target)
		if err != nil {
			continue
		}
		currentCost := currentRes.Cost / d.Speed

		for candidate := range unassigned {
			res, err := c.findPath(d.Pos, candidate)
			if err != nil {
				continue
			}
			newCost := res.Cost / d.Speed

			if newCost < currentCost*c.params.ReassignThreshold {
				c.logger.Info().
					Int(rmlog.FieldDroneID, d.ID).
					Str(rmlog.FieldOldState, d.Target.String()).
					Str(rmlog.FieldNewState, candidate.String()).
					Float64("old_cost", currentCost).
					Float64("new_cost", newCost).
					Msg("re-assigning drone")

				delete(c.assignments, d.ID)
				d.AssignTarget(candidate, res.Path)
				c.assignments[d.ID] = candidate
				delete(unassigned, candidate)
				break
			}
		}
	}
}

// CheckDetection sweeps a circular radius around the drone and returns any
// newly discovered survivors.
func (c *Coordinator) CheckDetection(d *drone.Drone) []terrain.Point {
	radius := c.params.DetectionRadius
	if radius <= 0 {
		return nil
	}

	var found []terrain.Point
	for y := max(0, d.Pos.Y-radius); y <= min(c.grid.Height-1, d.Pos.Y+radius); y++ {
		for x := max(0, d.Pos.X-radius); x <= min(c.grid.Width-1, d.Pos.X+radius); x++ {
			dy := float64(y - d.Pos.Y)
			dx := float64(x - d.Pos.X)
			if math.Sqrt(dy*dy+dx*dx) > float64(radius) {
				continue
			}

			p := terrain.Point{Y: y, X: x}
			if _, ok := c.known[p]; ok {
				continue
			}
			if _, ok := c.discovered[p]; ok {
				continue
			}
			if _, ok := c.rescued[p]; ok {
				continue
			}
			if c.grid.At(p) != terrain.CellSurvivor {
				continue
			}

			c.discovered[p] = struct{}{}
			found = append(found, p)
			d.Learn(p, c.clock)

			c.logger.Info().
				Int(rmlog.FieldDroneID, d.ID).
				Str(rmlog.FieldDiscovered, p.String()).
				Msg("survivor discovered")
		}
	}

	if len(found) > 0 {
		metrics.SurvivorsDiscovered(len(found))
	}
	return found
}

// CheckRescue completes the drone's assignment when it stands on its target.
// The survivor cell reverts to open terrain.
func (c *Coordinator) CheckRescue(d *drone.Drone) bool {
	if d.Target == nil || !d.ReachedTarget() {
		return false
	}

	target := *d.Target
	c.rescued[target] = struct{}{}
	c.grid.Set(target, terrain.CellNormal)
	delete(c.assignments, d.ID)
	d.ClearAssignment()
	metrics.SurvivorsRescued(1)

	c.logger.Info().
		Int(rmlog.FieldDroneID, d.ID).
		Str(rmlog.FieldRescued, target.String()).
		Msg("survivor rescued")
	return true
}

// Step advances the mission by one tick:
// spawn, move, detect, rescue, replan, assign.
func (c *Coordinator) Step(ctx context.Context, spawnNew bool, newDroneSpeed float64) StepLog {
	_, span := telemetry.Tracer("mission").Start(ctx, "coordinator.step")
	defer span.End()
	started := time.Now()

	log := StepLog{Time: c.clock}

	if spawnNew && c.clock >= c.nextSpawn {
		d := c.SpawnDrone(newDroneSpeed)
		c.nextSpawn = c.clock + c.params.SpawnDelay
		id := d.ID
		log.SpawnedID = &id
	}

	for _, d := range c.drones {
		oldPos := d.Pos
		newPos := d.MoveStep()
		if oldPos != newPos {
			log.Moves = append(log.Moves, Move{DroneID: d.ID, From: oldPos, To: newPos})
			d.Learn(newPos, c.clock)
		}

		if found := c.CheckDetection(d); len(found) > 0 {
			log.Discovered = append(log.Discovered, found...)
		}

		if pos := d.Pos; c.CheckRescue(d) {
			log.Rescues = append(log.Rescues, Rescue{DroneID: d.ID, Pos: pos})
		}
	}

	if len(log.Discovered) > 0 {
		c.Replan()
	}

	log.Assigned = c.AssignTasks()

	c.clock++

	span.SetAttributes(
		attribute.Int("mission.step", log.Time),
		attribute.Int("mission.discovered", len(log.Discovered)),
		attribute.Int("mission.rescued", len(log.Rescues)),
	)
	metrics.ObserveStep(time.Since(started))

	return log
}

// Status returns a point-in-time mission summary.
func (c *Coordinator) Status() Status {
	totalKnown := len(c.known) + len(c.discovered)
	// known and discovered are disjoint by construction; double-count guard.
	for p := range c.discovered {
		if _, ok := c.known[p]; ok {
			totalKnown--
		}
	}

	return Status{
		Time:                c.clock,
		DronesDeployed:      len(c.drones),
		KnownSurvivors:      len(c.known),
		DiscoveredSurvivors: len(c.discovered),
		RescuedSurvivors:    len(c.rescued),
		TotalSurvivors:      totalKnown,
		RemainingSurvivors:  totalKnown - len(c.rescued),
		ActiveAssignments:   len(c.assignments),
	}
}

// Complete reports whether every known or discovered survivor is rescued.
func (c *Coordinator) Complete() bool {
	total := make(map[terrain.Point]struct{}, len(c.known)+len(c.discovered))
	for p := range c.known {
		total[p] = struct{}{}
	}
	for p := range c.discovered {
		total[p] = struct{}{}
	}
	return len(c.rescued) >= len(total)
}

// Discovered returns the survivors found by detection sweeps so far, in
// row-major order so identically seeded runs report identically.
func (c *Coordinator) Discovered() []terrain.Point {
	out := make([]terrain.Point, 0, len(c.discovered))
	for p := range c.discovered {
		out = append(out, p)
	}
	sortPoints(out)
	return out
}

// NeverFound returns census survivors that were neither briefed, discovered
// nor rescued, in row-major order.
func (c *Coordinator) NeverFound() []terrain.Point {
	var out []terrain.Point
	for p := range c.census {
		if _, ok := c.known[p]; ok {
			continue
		}
		if _, ok := c.discovered[p]; ok {
			continue
		}
		if _, ok := c.rescued[p]; ok {
			continue
		}
		out = append(out, p)
	}
	sortPoints(out)
	return out
}

func sortPoints(pts []terrain.Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].Y != pts[j].Y {
			return pts[i].Y < pts[j].Y
		}
		return pts[i].X < pts[j].X
	})
}

// DronePositions returns the current position of every drone.
func (c *Coordinator) DronePositions() []terrain.Point {
	out := make([]terrain.Point, len(c.drones))
	for i, d := range c.drones {
		out[i] = d.Pos
	}
	return out
}
