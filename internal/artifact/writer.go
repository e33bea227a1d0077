// SPDX-License-Identifier: MIT

// Package artifact writes mission output files (reports, map images,
// animations) with atomic replace semantics so consumers never observe a
// half-written file.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/render"
	"github.com/NEPXiss/rescue-mission/internal/sim"
)

// Writer places mission artifacts under a base directory, one
// subdirectory per mission.
type Writer struct {
	baseDir string
}

// NewWriter validates the output directory and returns a writer for it.
func NewWriter(baseDir string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("artifact directory must not be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

// BaseDir returns the configured output root.
func (w *Writer) BaseDir() string { return w.baseDir }

// MissionDir returns the artifact directory for one mission, creating it
// if needed.
func (w *Writer) MissionDir(missionID string) (string, error) {
	dir := filepath.Join(w.baseDir, missionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create mission directory: %w", err)
	}
	return dir, nil
}

// writeAtomic streams fn's output into a pending file and atomically
// replaces path on success.
func (w *Writer) writeAtomic(ctx context.Context, path string, fn func(io.Writer) error) error {
	logger := rmlog.FromContext(ctx)

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("cleanup pending artifact")
		}
	}()

	if err := fn(pending); err != nil {
		return err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteReport stores the mission report as pretty-printed JSON.
func (w *Writer) WriteReport(ctx context.Context, missionID string, report *sim.Report) (string, error) {
	dir, err := w.MissionDir(missionID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "report.json")
	err = w.writeAtomic(ctx, path, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteMapPNG stores a single frame as map.png.
func (w *Writer) WriteMapPNG(ctx context.Context, missionID string, frame *sim.Frame, cellSize int) (string, error) {
	dir, err := w.MissionDir(missionID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "map.png")
	err = w.writeAtomic(ctx, path, func(out io.Writer) error {
		return render.WritePNG(out, frame, cellSize)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteAnimationGIF stores the recorded frames as animation.gif.
func (w *Writer) WriteAnimationGIF(ctx context.Context, missionID string, frames []sim.Frame, opts render.GIFOptions) (string, error) {
	dir, err := w.MissionDir(missionID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "animation.gif")
	err = w.writeAtomic(ctx, path, func(out io.Writer) error {
		return render.WriteGIF(out, frames, opts)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
