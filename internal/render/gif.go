// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/NEPXiss/rescue-mission/internal/sim"
)

// GIFOptions tune animation output.
type GIFOptions struct {
	CellSize int
	// DelayCs is the per-frame delay in hundredths of a second.
	DelayCs int
	// Stride keeps every Nth frame to bound output size; <= 1 keeps all.
	Stride int
}

// DefaultGIFOptions render at the default cell size, 10 fps, all frames.
func DefaultGIFOptions() GIFOptions {
	return GIFOptions{CellSize: DefaultCellSize, DelayCs: 10, Stride: 1}
}

var gifPalette = color.Palette{
	colorNormal,
	colorObstacle,
	colorDanger,
	colorSurvivor,
	colorDrone,
	colorPath,
	colorGridLine,
	color.RGBA{A: 0xff},
}

// WriteGIF encodes the recorded frames as an animated GIF.
func WriteGIF(w io.Writer, frames []sim.Frame, opts GIFOptions) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultCellSize
	}
	if opts.DelayCs <= 0 {
		opts.DelayCs = 10
	}
	if opts.Stride <= 0 {
		opts.Stride = 1
	}

	anim := &gif.GIF{}
	for i := range frames {
		if i%opts.Stride != 0 && i != len(frames)-1 {
			continue
		}
		rgba := DrawFrame(&frames[i], opts.CellSize)
		pal := image.NewPaletted(rgba.Rect, gifPalette)
		draw.Draw(pal, rgba.Rect, rgba, image.Point{}, draw.Src)
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, opts.DelayCs)
	}
	// Linger on the final frame so the end state is readable.
	anim.Delay[len(anim.Delay)-1] = opts.DelayCs * 10

	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}
