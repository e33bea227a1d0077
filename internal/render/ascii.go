// SPDX-License-Identifier: MIT

// Package render turns recorded mission frames into ASCII, PNG and GIF
// artifacts.
package render

import (
	"strings"

	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

// ASCII renders one frame as a text grid, drones drawn as 'D' on top of
// the terrain.
func ASCII(f *sim.Frame) string {
	occupied := make(map[terrain.Point]struct{}, len(f.Drones))
	for _, d := range f.Drones {
		occupied[d.Pos] = struct{}{}
	}

	var b strings.Builder
	b.Grow((f.Width*2 + 1) * f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			p := terrain.Point{Y: y, X: x}
			if _, ok := occupied[p]; ok {
				b.WriteByte('D')
				continue
			}
			b.WriteByte(f.Cells[y*f.Width+x].Symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
