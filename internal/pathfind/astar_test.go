// SPDX-License-Identifier: MIT

package pathfind

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

func mustGrid(t *testing.T, rows []string) *terrain.Grid {
	t.Helper()

	g, err := terrain.NewGrid(len(rows[0]), len(rows))
	require.NoError(t, err)
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			p := terrain.Point{Y: y, X: x}
			switch row[x] {
			case '#':
				g.Set(p, terrain.CellObstacle)
			case '~':
				g.Set(p, terrain.CellDanger)
			case 'S':
				g.Set(p, terrain.CellSurvivor)
			}
		}
	}
	return g
}

func TestFindPathStraightLine(t *testing.T) {
	g := mustGrid(t, []string{
		".....",
		".....",
	})
	p := New(g, false)

	res, err := p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 0, X: 4})
	require.NoError(t, err)

	want := []terrain.Point{
		{Y: 0, X: 0}, {Y: 0, X: 1}, {Y: 0, X: 2}, {Y: 0, X: 3}, {Y: 0, X: 4},
	}
	assert.Equal(t, want, res.Path)
	assert.InDelta(t, 4.0, res.Cost, 1e-9)
}

func TestFindPathSameStartAndGoal(t *testing.T) {
	g := mustGrid(t, []string{"..."})
	p := New(g, false)

	res, err := p.FindPath(terrain.Point{Y: 0, X: 1}, terrain.Point{Y: 0, X: 1})
	require.NoError(t, err)
	assert.Equal(t, []terrain.Point{{Y: 0, X: 1}}, res.Path)
	assert.Equal(t, 0.0, res.Cost)
}

func TestFindPathDetoursAroundObstacle(t *testing.T) {
	g := mustGrid(t, []string{
		".#.",
		".#.",
		"...",
	})
	p := New(g, false)

	res, err := p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 0, X: 2})
	require.NoError(t, err)

	// The wall forces a route through the bottom row.
	assert.Contains(t, res.Path, terrain.Point{Y: 2, X: 1})
	assert.InDelta(t, 6.0, res.Cost, 1e-9)
	for _, pt := range res.Path {
		assert.NotEqual(t, terrain.CellObstacle, g.At(pt))
	}
}

func TestFindPathNoPath(t *testing.T) {
	g := mustGrid(t, []string{
		".#.",
		".#.",
		".#.",
	})
	p := New(g, false)

	_, err := p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 0, X: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestFindPathRejectsBadEndpoints(t *testing.T) {
	g := mustGrid(t, []string{
		".#",
		"..",
	})
	p := New(g, false)

	_, err := p.FindPath(terrain.Point{Y: -1, X: 0}, terrain.Point{Y: 1, X: 1})
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 0, X: 1})
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestFindPathAvoidsDangerWhenCheaper(t *testing.T) {
	g := mustGrid(t, []string{
		".~.",
		"...",
	})
	p := New(g, false)

	res, err := p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 0, X: 2})
	require.NoError(t, err)

	// Crossing the danger cell costs 1+5, going around costs 1+1+1+1.
	assert.NotContains(t, res.Path, terrain.Point{Y: 0, X: 1})
	assert.InDelta(t, 4.0, res.Cost, 1e-9)
}

func TestFindPathCrossesDangerWhenDetourIsWorse(t *testing.T) {
	g := mustGrid(t, []string{
		"#~#",
		"#.#",
	})
	p := New(g, false)

	res, err := p.FindPath(terrain.Point{Y: 1, X: 1}, terrain.Point{Y: 0, X: 1})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, res.Cost, 1e-9)
}

func TestFindPathDiagonal(t *testing.T) {
	g := mustGrid(t, []string{
		"...",
		"...",
		"...",
	})
	p := New(g, true)

	res, err := p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 2, X: 2})
	require.NoError(t, err)

	// Two diagonal steps beat any orthogonal route.
	assert.Len(t, res.Path, 3)
	assert.InDelta(t, 2*math.Sqrt2, res.Cost, 1e-9)
}

func TestFindPathDiagonalNoCornerCutting(t *testing.T) {
	g := mustGrid(t, []string{
		".#",
		"#.",
	})
	p := New(g, true)

	// The only diagonal move would squeeze between two obstacles.
	_, err := p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 1, X: 1})
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestFindPathDiagonalAroundCorner(t *testing.T) {
	g := mustGrid(t, []string{
		"..",
		"#.",
		"..",
	})
	p := New(g, true)

	res, err := p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 2, X: 0})
	require.NoError(t, err)

	// (1,0) is blocked; the route goes through column one. Every step must
	// stay within king-move distance of the previous one.
	assert.Equal(t, terrain.Point{Y: 2, X: 0}, res.Path[len(res.Path)-1])
	for i := 1; i < len(res.Path); i++ {
		prev, cur := res.Path[i-1], res.Path[i]
		assert.LessOrEqual(t, abs(prev.Y-cur.Y), 1)
		assert.LessOrEqual(t, abs(prev.X-cur.X), 1)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestFindPathStepCostUsesDestinationCell(t *testing.T) {
	g := mustGrid(t, []string{"~."})
	p := New(g, false)

	// Leaving a danger cell is free; only entering one is charged.
	res, err := p.FindPath(terrain.Point{Y: 0, X: 0}, terrain.Point{Y: 0, X: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Cost, 1e-9)
}
