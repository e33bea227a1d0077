// SPDX-License-Identifier: MIT

package terrain

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a reproducible mission map described in YAML. Fixed scenarios
// complement random generation for regression runs and demos.
type Scenario struct {
	Name        string  `yaml:"name"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Obstacles   []Point `yaml:"obstacles,omitempty"`
	DangerZones []Point `yaml:"dangerZones,omitempty"`
	Survivors   []Point `yaml:"survivors,omitempty"`
	Hidden      []Point `yaml:"hidden,omitempty"`
	Spawn       *Point  `yaml:"spawn,omitempty"`
}

// ParseScenario decodes a YAML scenario with strict field checking.
func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenario reads and decodes a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied scenario path
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	sc, err := ParseScenario(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Validate checks that every listed position fits the declared map size and
// that markers do not collide.
func (sc *Scenario) Validate() error {
	if sc.Width <= 0 || sc.Height <= 0 {
		return fmt.Errorf("invalid scenario dimensions %dx%d", sc.Width, sc.Height)
	}

	in := func(p Point) bool {
		return p.Y >= 0 && p.Y < sc.Height && p.X >= 0 && p.X < sc.Width
	}

	seen := make(map[Point]string)
	check := func(kind string, pts []Point) error {
		for _, p := range pts {
			if !in(p) {
				return fmt.Errorf("%s position %s outside %dx%d map", kind, p, sc.Width, sc.Height)
			}
			if prev, ok := seen[p]; ok && prev != kind {
				return fmt.Errorf("position %s declared as both %s and %s", p, prev, kind)
			}
			seen[p] = kind
		}
		return nil
	}

	if err := check("obstacle", sc.Obstacles); err != nil {
		return err
	}
	if err := check("danger", sc.DangerZones); err != nil {
		return err
	}
	if err := check("survivor", sc.Survivors); err != nil {
		return err
	}
	if err := check("survivor", sc.Hidden); err != nil {
		return err
	}
	if sc.Spawn != nil {
		if !in(*sc.Spawn) {
			return fmt.Errorf("spawn position %s outside %dx%d map", *sc.Spawn, sc.Width, sc.Height)
		}
		if kind, ok := seen[*sc.Spawn]; ok && kind == "obstacle" {
			return fmt.Errorf("spawn position %s is an obstacle", *sc.Spawn)
		}
	}
	return nil
}

// Build materializes the scenario into a grid. Hidden survivors are marked
// on the grid like regular ones; keeping them unknown is the coordinator's
// concern.
func (sc *Scenario) Build() (*Grid, error) {
	g, err := NewGrid(sc.Width, sc.Height)
	if err != nil {
		return nil, err
	}
	for _, p := range sc.Obstacles {
		g.Set(p, CellObstacle)
	}
	for _, p := range sc.DangerZones {
		g.Set(p, CellDanger)
	}
	for _, p := range sc.Survivors {
		g.Set(p, CellSurvivor)
	}
	for _, p := range sc.Hidden {
		g.Set(p, CellSurvivor)
	}
	return g, nil
}
