// SPDX-License-Identifier: MIT

// Package drone models a single rescue drone: its position, planned path,
// assignment and locally gathered knowledge of the map.
package drone

import (
	"math/rand"

	"github.com/Pallinder/go-randomdata"

	"github.com/NEPXiss/rescue-mission/internal/terrain"
	"github.com/NEPXiss/rescue-mission/internal/types"
)

// Knowledge maps a visited or observed cell to the mission step at which the
// drone learned about it. Merging keeps the earliest observation.
type Knowledge map[terrain.Point]int

// Merge copies facts from other that this knowledge does not have yet.
func (k Knowledge) Merge(other Knowledge) {
	for p, step := range other {
		if _, ok := k[p]; !ok {
			k[p] = step
		}
	}
}

// Drone is a single unit in the swarm. Not safe for concurrent use; the
// coordinator serializes access.
type Drone struct {
	ID       int              `json:"id"`
	Callsign string           `json:"callsign"`
	Pos      terrain.Point    `json:"pos"`
	Speed    float64          `json:"speed"`
	State    types.DroneState `json:"state"`

	Target    *terrain.Point  `json:"target,omitempty"`
	Path      []terrain.Point `json:"path,omitempty"`
	StepIndex int             `json:"step_index"`

	// DistanceTraveled counts grid steps taken, diagonal or not.
	DistanceTraveled float64 `json:"distance_traveled"`

	Knowledge Knowledge `json:"-"`
}

// New creates an idle drone at the given start position. Speed is relative:
// 1.0 nominal, above one faster, below one slower.
func New(id int, start terrain.Point, speed float64) *Drone {
	if speed <= 0 {
		speed = 1.0
	}
	return &Drone{
		ID:        id,
		Callsign:  randomdata.SillyName(),
		Pos:       start,
		Speed:     speed,
		State:     types.DroneStateIdle,
		Knowledge: make(Knowledge),
	}
}

// RandomSpeed draws a deployment speed from [0.8, 1.5).
func RandomSpeed(rng *rand.Rand) float64 {
	return 0.8 + rng.Float64()*0.7
}

// AssignTarget gives the drone a new target and the path to reach it.
// The path includes the drone's current cell at index zero.
func (d *Drone) AssignTarget(target terrain.Point, path []terrain.Point) {
	t := target
	d.Target = &t
	d.Path = path
	d.StepIndex = 0
	d.State = types.DroneStateTraveling
}

// ClearAssignment drops the current target and path and idles the drone.
func (d *Drone) ClearAssignment() {
	d.Target = nil
	d.Path = nil
	d.StepIndex = 0
	d.State = types.DroneStateIdle
}

// MoveStep advances the drone one cell along its path and returns the new
// position. A drone with no path left stays put.
func (d *Drone) MoveStep() terrain.Point {
	if d.StepIndex < len(d.Path) {
		next := d.Path[d.StepIndex]
		if next != d.Pos {
			d.DistanceTraveled++
		}
		d.Pos = next
		d.StepIndex++
		if d.ReachedTarget() {
			d.State = types.DroneStateAtTarget
		}
		return d.Pos
	}
	return d.Pos
}

// ReachedTarget reports whether the drone stands on its assigned target.
func (d *Drone) ReachedTarget() bool {
	return d.Target != nil && d.Pos == *d.Target
}

// Learn records a fact about a cell at the given mission step.
func (d *Drone) Learn(p terrain.Point, step int) {
	if _, ok := d.Knowledge[p]; !ok {
		d.Knowledge[p] = step
	}
}

// ShareWith merges this drone's knowledge into another drone.
func (d *Drone) ShareWith(other *Drone) {
	other.Knowledge.Merge(d.Knowledge)
}
