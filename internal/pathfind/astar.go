// SPDX-License-Identifier: MIT

// Package pathfind implements weighted A* search over a terrain grid.
package pathfind

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

// ErrNoPath is returned when the goal is unreachable from the start.
var ErrNoPath = errors.New("no path to goal")

var (
	orthogonal = [4]terrain.Point{{Y: 0, X: 1}, {Y: 1, X: 0}, {Y: 0, X: -1}, {Y: -1, X: 0}}
	diagonals  = [4]terrain.Point{{Y: -1, X: -1}, {Y: -1, X: 1}, {Y: 1, X: -1}, {Y: 1, X: 1}}
)

// Planner runs A* searches against a single grid.
type Planner struct {
	grid *terrain.Grid

	// AllowDiagonal enables 8-way movement with sqrt(2) step multipliers.
	AllowDiagonal bool
}

// New returns a planner bound to the given grid.
func New(grid *terrain.Grid, allowDiagonal bool) *Planner {
	return &Planner{grid: grid, AllowDiagonal: allowDiagonal}
}

// Result is a successful search outcome. Path includes the start cell.
type Result struct {
	Path []terrain.Point
	Cost float64
}

// heuristic is Manhattan distance for 4-way movement and Euclidean for 8-way,
// both admissible for their movement model.
func (p *Planner) heuristic(a, b terrain.Point) float64 {
	dy := math.Abs(float64(a.Y - b.Y))
	dx := math.Abs(float64(a.X - b.X))
	if p.AllowDiagonal {
		return math.Hypot(dy, dx)
	}
	return dy + dx
}

type step struct {
	to         terrain.Point
	multiplier float64
}

func (p *Planner) neighbors(n terrain.Point, buf []step) []step {
	buf = buf[:0]
	for _, d := range orthogonal {
		next := terrain.Point{Y: n.Y + d.Y, X: n.X + d.X}
		if !p.grid.Walkable(next) {
			continue
		}
		buf = append(buf, step{to: next, multiplier: 1.0})
	}
	if p.AllowDiagonal {
		for _, d := range diagonals {
			next := terrain.Point{Y: n.Y + d.Y, X: n.X + d.X}
			if !p.grid.Walkable(next) {
				continue
			}
			// Disallow cutting the corner between two obstacles.
			adjY := terrain.Point{Y: n.Y + d.Y, X: n.X}
			adjX := terrain.Point{Y: n.Y, X: n.X + d.X}
			if p.grid.At(adjY) == terrain.CellObstacle || p.grid.At(adjX) == terrain.CellObstacle {
				continue
			}
			buf = append(buf, step{to: next, multiplier: math.Sqrt2})
		}
	}
	return buf
}

// FindPath runs A* from start to goal and returns the path (start inclusive)
// with its total cost, or ErrNoPath when the goal cannot be reached.
func (p *Planner) FindPath(start, goal terrain.Point) (*Result, error) {
	if !p.grid.InBounds(start) || !p.grid.InBounds(goal) {
		return nil, fmt.Errorf("endpoint out of bounds (start=%s goal=%s): %w", start, goal, ErrNoPath)
	}
	if !p.grid.Walkable(start) || !p.grid.Walkable(goal) {
		return nil, fmt.Errorf("endpoint not walkable (start=%s goal=%s): %w", start, goal, ErrNoPath)
	}

	gScore := map[terrain.Point]float64{start: 0}
	cameFrom := make(map[terrain.Point]terrain.Point)
	closed := make(map[terrain.Point]struct{})

	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, node{point: start, f: p.heuristic(start, goal), g: 0})

	var nbuf [8]step

	for open.Len() > 0 {
		current := heap.Pop(open).(node)
		if _, done := closed[current.point]; done {
			continue
		}
		if current.point == goal {
			return &Result{
				Path: reconstruct(cameFrom, current.point),
				Cost: gScore[current.point],
			}, nil
		}
		closed[current.point] = struct{}{}

		for _, s := range p.neighbors(current.point, nbuf[:]) {
			if _, done := closed[s.to]; done {
				continue
			}

			tentative := gScore[current.point] + p.grid.Cost(s.to)*s.multiplier

			if best, ok := gScore[s.to]; !ok || tentative < best {
				cameFrom[s.to] = current.point
				gScore[s.to] = tentative
				heap.Push(open, node{
					point: s.to,
					g:     tentative,
					f:     tentative + p.heuristic(s.to, goal),
				})
			}
		}
	}

	return nil, fmt.Errorf("search exhausted (start=%s goal=%s): %w", start, goal, ErrNoPath)
}

func reconstruct(cameFrom map[terrain.Point]terrain.Point, current terrain.Point) []terrain.Point {
	path := []terrain.Point{current}
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
		path = append(path, current)
	}
	// Reverse in place: cameFrom walks goal→start.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// node is an open-set entry ordered by (f, g).
type node struct {
	point terrain.Point
	f     float64
	g     float64
}

type openHeap []node

func (h openHeap) Len() int { return len(h) }

func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g < h[j].g
}

func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *openHeap) Push(x any) { *h = append(*h, x.(node)) }

func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
