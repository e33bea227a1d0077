// SPDX-License-Identifier: MIT

package render

import (
	"bytes"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

func testFrame() *sim.Frame {
	return &sim.Frame{
		Seq:    0,
		Time:   4,
		Width:  3,
		Height: 2,
		Cells: []terrain.CellType{
			terrain.CellNormal, terrain.CellObstacle, terrain.CellSurvivor,
			terrain.CellDanger, terrain.CellNormal, terrain.CellNormal,
		},
		Drones: []sim.DroneSnapshot{
			{ID: 0, Pos: terrain.Point{Y: 1, X: 2}},
		},
	}
}

func TestASCII(t *testing.T) {
	out := ASCII(testFrame())
	assert.Equal(t, ". # S\n~ . D\n", out)
}

func TestDrawFrameDimensions(t *testing.T) {
	f := testFrame()
	img := DrawFrame(f, 10)

	assert.Equal(t, 30, img.Rect.Dx())
	assert.Equal(t, 20, img.Rect.Dy())
}

func TestDrawFramePaintsDrone(t *testing.T) {
	f := testFrame()
	img := DrawFrame(f, 8)

	// Sample the center of the drone's cell.
	got := img.RGBAAt(2*8+4, 1*8+4)
	assert.Equal(t, colorDrone, got)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, testFrame(), 6))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 18, img.Bounds().Dx())
	assert.Equal(t, 12, img.Bounds().Dy())
}

func TestWriteGIF(t *testing.T) {
	frames := []sim.Frame{*testFrame(), *testFrame(), *testFrame()}
	frames[1].Seq, frames[1].Time = 1, 5
	frames[2].Seq, frames[2].Time = 2, 6

	var buf bytes.Buffer
	require.NoError(t, WriteGIF(&buf, frames, DefaultGIFOptions()))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	// The final frame lingers.
	assert.Greater(t, anim.Delay[2], anim.Delay[0])
}

func TestWriteGIFStride(t *testing.T) {
	frames := make([]sim.Frame, 10)
	for i := range frames {
		frames[i] = *testFrame()
		frames[i].Seq = i
	}

	opts := DefaultGIFOptions()
	opts.Stride = 4

	var buf bytes.Buffer
	require.NoError(t, WriteGIF(&buf, frames, opts))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	// Frames 0, 4, 8 plus the forced final frame 9.
	assert.Len(t, anim.Image, 4)
}

func TestWriteGIFEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteGIF(&buf, nil, DefaultGIFOptions()))
}
