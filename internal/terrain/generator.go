// SPDX-License-Identifier: MIT

package terrain

import (
	"fmt"
	"math/rand"
)

// GeneratorOptions control random map generation.
type GeneratorOptions struct {
	Width        int
	Height       int
	ObstacleProb float64 // probability a cell becomes an obstacle
	DangerProb   float64 // probability a cell becomes a danger zone
	Survivors    int     // survivors placed on random free cells
	Seed         int64   // 0 means non-deterministic
}

// DefaultGeneratorOptions are the standard map parameters.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Width:        20,
		Height:       20,
		ObstacleProb: 0.15,
		DangerProb:   0.10,
		Survivors:    5,
	}
}

// Validate checks generator options for basic sanity.
func (o GeneratorOptions) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid map dimensions %dx%d", o.Width, o.Height)
	}
	if o.ObstacleProb < 0 || o.ObstacleProb > 1 {
		return fmt.Errorf("obstacle probability %.2f out of range [0,1]", o.ObstacleProb)
	}
	if o.DangerProb < 0 || o.DangerProb > 1 {
		return fmt.Errorf("danger probability %.2f out of range [0,1]", o.DangerProb)
	}
	if o.ObstacleProb+o.DangerProb >= 1 {
		return fmt.Errorf("obstacle+danger probability %.2f leaves no open terrain", o.ObstacleProb+o.DangerProb)
	}
	if o.Survivors < 0 {
		return fmt.Errorf("negative survivor count %d", o.Survivors)
	}
	return nil
}

// Generate builds a random grid: terrain first, then survivors on free cells.
// The same seed always produces the same map.
func Generate(opts GeneratorOptions) (*Grid, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	g, err := NewGrid(opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			r := rng.Float64()
			switch {
			case r < opts.ObstacleProb:
				g.Set(Point{Y: y, X: x}, CellObstacle)
			case r < opts.ObstacleProb+opts.DangerProb:
				g.Set(Point{Y: y, X: x}, CellDanger)
			}
		}
	}

	free := g.FreeCells()
	if len(free) < opts.Survivors {
		return nil, fmt.Errorf("map has %d free cells, need %d for survivors", len(free), opts.Survivors)
	}

	for i := 0; i < opts.Survivors; i++ {
		p, err := findFreeCell(g, rng)
		if err != nil {
			return nil, err
		}
		g.Set(p, CellSurvivor)
	}

	return g, nil
}

// findFreeCell picks a uniformly random normal cell.
func findFreeCell(g *Grid, rng *rand.Rand) (Point, error) {
	// Rejection sampling with a bounded number of misses so a nearly full
	// map cannot spin forever.
	for i := 0; i < g.Width*g.Height*10; i++ {
		p := Point{Y: rng.Intn(g.Height), X: rng.Intn(g.Width)}
		if g.At(p) == CellNormal {
			return p, nil
		}
	}
	return Point{}, fmt.Errorf("no free cell found after sampling")
}
