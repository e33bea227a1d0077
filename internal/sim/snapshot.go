// SPDX-License-Identifier: MIT

package sim

import (
	"github.com/NEPXiss/rescue-mission/internal/mission"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
	"github.com/NEPXiss/rescue-mission/internal/types"
)

// DroneSnapshot is the per-drone slice of a frame.
type DroneSnapshot struct {
	ID       int              `json:"id"`
	Callsign string           `json:"callsign"`
	Pos      terrain.Point    `json:"pos"`
	State    types.DroneState `json:"state"`
	Target   *terrain.Point   `json:"target,omitempty"`
	Path     []terrain.Point  `json:"path,omitempty"`
}

// Frame is one recorded simulation snapshot, sufficient to re-render the
// map without access to the live mission.
type Frame struct {
	Seq    int                `json:"seq"`
	Time   int                `json:"time"`
	Width  int                `json:"width"`
	Height int                `json:"height"`
	Cells  []terrain.CellType `json:"cells"` // row-major
	Drones []DroneSnapshot    `json:"drones,omitempty"`
	Status mission.Status     `json:"status"`
}

// DronePositions returns the drone positions captured in the frame.
func (f *Frame) DronePositions() []terrain.Point {
	out := make([]terrain.Point, len(f.Drones))
	for i, d := range f.Drones {
		out[i] = d.Pos
	}
	return out
}

// DefaultFrameCap bounds recorder memory for unbounded missions.
const DefaultFrameCap = 2048

// Recorder captures per-step frames for animation and the frame API.
type Recorder struct {
	frames []Frame
	cap    int
	seq    int
}

// NewRecorder creates a recorder holding at most capFrames frames;
// capFrames <= 0 selects DefaultFrameCap.
func NewRecorder(capFrames int) *Recorder {
	if capFrames <= 0 {
		capFrames = DefaultFrameCap
	}
	return &Recorder{cap: capFrames}
}

// Snapshot records the current mission state. Once the cap is reached,
// further snapshots are dropped; the mission itself is unaffected.
func (r *Recorder) Snapshot(c *mission.Coordinator) *Frame {
	if len(r.frames) >= r.cap {
		return nil
	}

	grid := c.Grid()
	frame := Frame{
		Seq:    r.seq,
		Time:   c.Clock(),
		Width:  grid.Width,
		Height: grid.Height,
		Cells:  grid.Cells(),
		Status: c.Status(),
	}
	for _, d := range c.Drones() {
		snap := DroneSnapshot{
			ID:       d.ID,
			Callsign: d.Callsign,
			Pos:      d.Pos,
			State:    d.State,
		}
		if d.Target != nil {
			t := *d.Target
			snap.Target = &t
		}
		if remaining := d.Path[d.StepIndex:]; len(remaining) > 0 {
			snap.Path = append([]terrain.Point(nil), remaining...)
		}
		frame.Drones = append(frame.Drones, snap)
	}

	r.frames = append(r.frames, frame)
	r.seq++
	return &r.frames[len(r.frames)-1]
}

// Frames returns all recorded frames.
func (r *Recorder) Frames() []Frame { return r.frames }

// Len returns the number of recorded frames.
func (r *Recorder) Len() int { return len(r.frames) }
