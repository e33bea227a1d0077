// SPDX-License-Identifier: MIT

package terrain

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Default movement costs. Obstacles are not walkable and carry no finite cost.
const (
	DefaultNormalCost = 1.0
	DefaultDangerCost = 5.0
)

// Grid is the mutable terrain map for a single mission.
// It is not safe for concurrent mutation; the mission coordinator owns it.
type Grid struct {
	Width  int
	Height int

	cells     []CellType
	pheromone []float64

	// Movement cost settings, overridable per mission.
	NormalCost float64
	DangerCost float64
}

// NewGrid returns an all-normal grid of the given dimensions.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	return &Grid{
		Width:      width,
		Height:     height,
		cells:      make([]CellType, width*height),
		pheromone:  make([]float64, width*height),
		NormalCost: DefaultNormalCost,
		DangerCost: DefaultDangerCost,
	}, nil
}

func (g *Grid) idx(p Point) int {
	return p.Y*g.Width + p.X
}

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.Y >= 0 && p.Y < g.Height && p.X >= 0 && p.X < g.Width
}

// At returns the cell type at p. Out-of-bounds reads as Obstacle so callers
// never path through the border.
func (g *Grid) At(p Point) CellType {
	if !g.InBounds(p) {
		return CellObstacle
	}
	return g.cells[g.idx(p)]
}

// Set assigns the cell type at p. Out-of-bounds writes are ignored.
func (g *Grid) Set(p Point, c CellType) {
	if !g.InBounds(p) {
		return
	}
	g.cells[g.idx(p)] = c
}

// Walkable reports whether a drone may enter p. Everything but obstacles is walkable.
func (g *Grid) Walkable(p Point) bool {
	return g.InBounds(p) && g.cells[g.idx(p)] != CellObstacle
}

// Cost returns the movement cost of entering p. Obstacles and out-of-bounds
// cells cost +Inf.
func (g *Grid) Cost(p Point) float64 {
	switch g.At(p) {
	case CellNormal, CellSurvivor:
		return g.NormalCost
	case CellDanger:
		return g.DangerCost
	default:
		return math.Inf(1)
	}
}

// Survivors returns the positions of all survivor-marked cells in row-major order.
func (g *Grid) Survivors() []Point {
	var out []Point
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := Point{Y: y, X: x}
			if g.cells[g.idx(p)] == CellSurvivor {
				out = append(out, p)
			}
		}
	}
	return out
}

// FreeCells returns the positions of all normal cells in row-major order.
func (g *Grid) FreeCells() []Point {
	var out []Point
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := Point{Y: y, X: x}
			if g.cells[g.idx(p)] == CellNormal {
				out = append(out, p)
			}
		}
	}
	return out
}

// DepositPheromone adds amount to the pheromone level at p.
func (g *Grid) DepositPheromone(p Point, amount float64) {
	if !g.InBounds(p) {
		return
	}
	g.pheromone[g.idx(p)] += amount
}

// Pheromone returns the pheromone level at p.
func (g *Grid) Pheromone(p Point) float64 {
	if !g.InBounds(p) {
		return 0
	}
	return g.pheromone[g.idx(p)]
}

// DecayPheromone scales every pheromone level by (1 - rate).
func (g *Grid) DecayPheromone(rate float64) {
	factor := 1.0 - rate
	if factor < 0 {
		factor = 0
	}
	for i := range g.pheromone {
		g.pheromone[i] *= factor
	}
}

// DecayDanger reverts each danger cell to normal with the given probability.
// Models danger zones (fires, flood water) receding over time.
func (g *Grid) DecayDanger(rng *rand.Rand, prob float64) {
	if prob <= 0 {
		return
	}
	for i, c := range g.cells {
		if c == CellDanger && rng.Float64() < prob {
			g.cells[i] = CellNormal
		}
	}
}

// Clone returns a deep copy of the grid, pheromone field included.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		Width:      g.Width,
		Height:     g.Height,
		cells:      make([]CellType, len(g.cells)),
		pheromone:  make([]float64, len(g.pheromone)),
		NormalCost: g.NormalCost,
		DangerCost: g.DangerCost,
	}
	copy(out.cells, g.cells)
	copy(out.pheromone, g.pheromone)
	return out
}

// Render writes the grid as ASCII art, one row per line, with drone
// positions overlaid as 'D'.
func (g *Grid) Render(drones []Point) string {
	overlay := make(map[Point]struct{}, len(drones))
	for _, d := range drones {
		overlay[d] = struct{}{}
	}

	var b strings.Builder
	b.Grow((g.Width + 1) * g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := Point{Y: y, X: x}
			if _, ok := overlay[p]; ok {
				b.WriteByte('D')
				continue
			}
			b.WriteByte(g.At(p).Symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Cells returns a copy of the raw cell slice in row-major order.
// Intended for snapshot recording.
func (g *Grid) Cells() []CellType {
	out := make([]CellType, len(g.cells))
	copy(out, g.cells)
	return out
}
