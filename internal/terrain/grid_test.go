// SPDX-License-Identifier: MIT

package terrain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(5, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Width)
	assert.Equal(t, 3, g.Height)

	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, CellNormal, g.At(Point{Y: y, X: x}))
		}
	}
}

func TestNewGridInvalidDimensions(t *testing.T) {
	_, err := NewGrid(0, 10)
	assert.Error(t, err)

	_, err = NewGrid(10, -1)
	assert.Error(t, err)
}

func TestGridAtOutOfBounds(t *testing.T) {
	g, err := NewGrid(4, 4)
	require.NoError(t, err)

	// Out-of-bounds reads as obstacle so callers never walk off the map.
	assert.Equal(t, CellObstacle, g.At(Point{Y: -1, X: 0}))
	assert.Equal(t, CellObstacle, g.At(Point{Y: 0, X: 4}))
	assert.Equal(t, CellObstacle, g.At(Point{Y: 4, X: 0}))
}

func TestGridSetIgnoresOutOfBounds(t *testing.T) {
	g, err := NewGrid(4, 4)
	require.NoError(t, err)

	g.Set(Point{Y: 10, X: 10}, CellDanger)
	assert.Equal(t, CellObstacle, g.At(Point{Y: 10, X: 10}))
}

func TestGridCost(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)

	g.Set(Point{Y: 0, X: 1}, CellObstacle)
	g.Set(Point{Y: 1, X: 1}, CellDanger)
	g.Set(Point{Y: 2, X: 1}, CellSurvivor)

	assert.Equal(t, 1.0, g.Cost(Point{Y: 0, X: 0}))
	assert.True(t, math.IsInf(g.Cost(Point{Y: 0, X: 1}), 1))
	assert.Equal(t, 5.0, g.Cost(Point{Y: 1, X: 1}))
	assert.Equal(t, 1.0, g.Cost(Point{Y: 2, X: 1}))
}

func TestGridWalkable(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)
	g.Set(Point{Y: 1, X: 1}, CellObstacle)
	g.Set(Point{Y: 2, X: 2}, CellDanger)

	assert.True(t, g.Walkable(Point{Y: 0, X: 0}))
	assert.True(t, g.Walkable(Point{Y: 2, X: 2}))
	assert.False(t, g.Walkable(Point{Y: 1, X: 1}))
	assert.False(t, g.Walkable(Point{Y: -1, X: 0}))
}

func TestGridSurvivors(t *testing.T) {
	g, err := NewGrid(4, 4)
	require.NoError(t, err)

	g.Set(Point{Y: 0, X: 2}, CellSurvivor)
	g.Set(Point{Y: 3, X: 1}, CellSurvivor)

	got := g.Survivors()
	assert.ElementsMatch(t, []Point{{Y: 0, X: 2}, {Y: 3, X: 1}}, got)
}

func TestGridFreeCells(t *testing.T) {
	g, err := NewGrid(2, 2)
	require.NoError(t, err)

	g.Set(Point{Y: 0, X: 0}, CellObstacle)
	g.Set(Point{Y: 0, X: 1}, CellDanger)
	g.Set(Point{Y: 1, X: 0}, CellSurvivor)

	assert.Equal(t, []Point{{Y: 1, X: 1}}, g.FreeCells())
}

func TestGridPheromone(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)

	p := Point{Y: 1, X: 1}
	assert.Equal(t, 0.0, g.Pheromone(p))

	g.DepositPheromone(p, 1.0)
	g.DepositPheromone(p, 0.5)
	assert.InDelta(t, 1.5, g.Pheromone(p), 1e-9)

	g.DecayPheromone(0.1)
	assert.InDelta(t, 1.35, g.Pheromone(p), 1e-9)
}

func TestGridDecayPheromoneClamp(t *testing.T) {
	g, err := NewGrid(2, 2)
	require.NoError(t, err)

	p := Point{Y: 0, X: 0}
	g.DepositPheromone(p, 2.0)

	// Rates above one drain everything, never go negative.
	g.DecayPheromone(1.5)
	assert.Equal(t, 0.0, g.Pheromone(p))
}

func TestGridDecayDanger(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)

	for x := 0; x < 3; x++ {
		g.Set(Point{Y: 0, X: x}, CellDanger)
	}
	rng := rand.New(rand.NewSource(1))

	// Probability one clears all danger zones in one pass.
	g.DecayDanger(rng, 1.0)
	for x := 0; x < 3; x++ {
		assert.Equal(t, CellNormal, g.At(Point{Y: 0, X: x}))
	}

	// Probability zero leaves everything alone.
	g.Set(Point{Y: 1, X: 1}, CellDanger)
	g.DecayDanger(rng, 0)
	assert.Equal(t, CellDanger, g.At(Point{Y: 1, X: 1}))
}

func TestGridClone(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)
	g.Set(Point{Y: 1, X: 1}, CellSurvivor)
	g.DepositPheromone(Point{Y: 0, X: 0}, 1.0)

	c := g.Clone()
	c.Set(Point{Y: 1, X: 1}, CellNormal)
	c.DepositPheromone(Point{Y: 0, X: 0}, 1.0)

	assert.Equal(t, CellSurvivor, g.At(Point{Y: 1, X: 1}))
	assert.InDelta(t, 1.0, g.Pheromone(Point{Y: 0, X: 0}), 1e-9)
	assert.InDelta(t, 2.0, c.Pheromone(Point{Y: 0, X: 0}), 1e-9)
}

func TestGridRender(t *testing.T) {
	g, err := NewGrid(3, 2)
	require.NoError(t, err)
	g.Set(Point{Y: 0, X: 1}, CellObstacle)
	g.Set(Point{Y: 1, X: 0}, CellDanger)
	g.Set(Point{Y: 1, X: 2}, CellSurvivor)

	want := ".#.\n~.S\n"
	assert.Equal(t, want, g.Render(nil))
}

func TestGridRenderDroneOverlay(t *testing.T) {
	g, err := NewGrid(2, 2)
	require.NoError(t, err)
	g.Set(Point{Y: 0, X: 0}, CellSurvivor)

	out := g.Render([]Point{{Y: 0, X: 0}, {Y: 1, X: 1}})
	assert.Equal(t, "D.\n.D\n", out)
}
