// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

// DefaultCellSize is the edge length in pixels of one grid cell.
const DefaultCellSize = 12

var (
	colorNormal   = color.RGBA{R: 0xf2, G: 0xf2, B: 0xee, A: 0xff}
	colorObstacle = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	colorDanger   = color.RGBA{R: 0xf0, G: 0xa0, B: 0x30, A: 0xff}
	colorSurvivor = color.RGBA{R: 0xd8, G: 0x30, B: 0x30, A: 0xff}
	colorDrone    = color.RGBA{R: 0x20, G: 0x60, B: 0xc8, A: 0xff}
	colorPath     = color.RGBA{R: 0xa8, G: 0xc4, B: 0xe8, A: 0xff}
	colorGridLine = color.RGBA{R: 0xd0, G: 0xd0, B: 0xca, A: 0xff}
)

func cellColor(c terrain.CellType) color.RGBA {
	switch c {
	case terrain.CellObstacle:
		return colorObstacle
	case terrain.CellDanger:
		return colorDanger
	case terrain.CellSurvivor:
		return colorSurvivor
	default:
		return colorNormal
	}
}

// DrawFrame rasterizes one frame. cellSize <= 0 selects DefaultCellSize.
func DrawFrame(f *sim.Frame, cellSize int) *image.RGBA {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width*cellSize, f.Height*cellSize))

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			fillCell(img, x, y, cellSize, cellColor(f.Cells[y*f.Width+x]))
		}
	}

	// Planned paths go under the drones so the markers stay visible.
	for _, d := range f.Drones {
		for _, p := range d.Path {
			if f.Cells[p.Y*f.Width+p.X] == terrain.CellNormal {
				fillCell(img, p.X, p.Y, cellSize, colorPath)
			}
		}
	}
	for _, d := range f.Drones {
		fillCell(img, d.Pos.X, d.Pos.Y, cellSize, colorDrone)
	}

	if cellSize >= 4 {
		drawGridLines(img, f.Width, f.Height, cellSize)
	}
	return img
}

func fillCell(img *image.RGBA, x, y, size int, c color.RGBA) {
	for py := y * size; py < (y+1)*size; py++ {
		for px := x * size; px < (x+1)*size; px++ {
			img.SetRGBA(px, py, c)
		}
	}
}

func drawGridLines(img *image.RGBA, w, h, size int) {
	for y := 0; y <= h; y++ {
		py := y * size
		if py >= img.Rect.Max.Y {
			py = img.Rect.Max.Y - 1
		}
		for px := 0; px < img.Rect.Max.X; px++ {
			img.SetRGBA(px, py, colorGridLine)
		}
	}
	for x := 0; x <= w; x++ {
		px := x * size
		if px >= img.Rect.Max.X {
			px = img.Rect.Max.X - 1
		}
		for py := 0; py < img.Rect.Max.Y; py++ {
			img.SetRGBA(px, py, colorGridLine)
		}
	}
}

// WritePNG renders a frame and encodes it as PNG.
func WritePNG(w io.Writer, f *sim.Frame, cellSize int) error {
	if err := png.Encode(w, DrawFrame(f, cellSize)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
