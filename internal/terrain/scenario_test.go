// SPDX-License-Identifier: MIT

package terrain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScenario = `
name: canyon
width: 6
height: 4
obstacles:
  - {y: 1, x: 2}
  - {y: 2, x: 2}
dangerZones:
  - {y: 0, x: 4}
survivors:
  - {y: 3, x: 5}
hidden:
  - {y: 0, x: 5}
spawn: {y: 0, x: 0}
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario(strings.NewReader(sampleScenario))
	require.NoError(t, err)

	assert.Equal(t, "canyon", sc.Name)
	assert.Equal(t, 6, sc.Width)
	assert.Equal(t, 4, sc.Height)
	assert.Len(t, sc.Obstacles, 2)
	assert.Len(t, sc.DangerZones, 1)
	assert.Equal(t, []Point{{Y: 3, X: 5}}, sc.Survivors)
	assert.Equal(t, []Point{{Y: 0, X: 5}}, sc.Hidden)
	require.NotNil(t, sc.Spawn)
	assert.Equal(t, Point{Y: 0, X: 0}, *sc.Spawn)
}

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario(strings.NewReader("name: x\nwidth: 3\nheight: 3\nbogus: true\n"))
	assert.Error(t, err)
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name    string
		sc      Scenario
		wantErr string
	}{
		{
			name:    "zero dimensions",
			sc:      Scenario{Width: 0, Height: 5},
			wantErr: "invalid scenario dimensions",
		},
		{
			name: "obstacle out of bounds",
			sc: Scenario{
				Width: 3, Height: 3,
				Obstacles: []Point{{Y: 3, X: 0}},
			},
			wantErr: "outside",
		},
		{
			name: "marker collision",
			sc: Scenario{
				Width: 3, Height: 3,
				Obstacles: []Point{{Y: 1, X: 1}},
				Survivors: []Point{{Y: 1, X: 1}},
			},
			wantErr: "declared as both",
		},
		{
			name: "spawn on obstacle",
			sc: Scenario{
				Width: 3, Height: 3,
				Obstacles: []Point{{Y: 0, X: 0}},
				Spawn:     &Point{Y: 0, X: 0},
			},
			wantErr: "spawn position",
		},
		{
			name: "valid",
			sc: Scenario{
				Width: 3, Height: 3,
				Survivors: []Point{{Y: 2, X: 2}},
				Spawn:     &Point{Y: 0, X: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sc.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScenarioBuild(t *testing.T) {
	sc, err := ParseScenario(strings.NewReader(sampleScenario))
	require.NoError(t, err)

	g, err := sc.Build()
	require.NoError(t, err)

	assert.Equal(t, CellObstacle, g.At(Point{Y: 1, X: 2}))
	assert.Equal(t, CellDanger, g.At(Point{Y: 0, X: 4}))
	assert.Equal(t, CellSurvivor, g.At(Point{Y: 3, X: 5}))
	// Hidden survivors are marked on the grid like regular ones.
	assert.Equal(t, CellSurvivor, g.At(Point{Y: 0, X: 5}))
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScenario), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "canyon", sc.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
