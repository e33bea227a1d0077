// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NEPXiss/rescue-mission/internal/artifact"
	"github.com/NEPXiss/rescue-mission/internal/cache"
	"github.com/NEPXiss/rescue-mission/internal/history"
	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/metrics"
	"github.com/NEPXiss/rescue-mission/internal/mission"
	"github.com/NEPXiss/rescue-mission/internal/render"
	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/store"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
	"github.com/NEPXiss/rescue-mission/internal/types"
)

// ErrMissionFinished is returned when a terminal mission is advanced.
var ErrMissionFinished = errors.New("mission already finished")

// ErrMissionNotFound is returned for unknown mission ids.
var ErrMissionNotFound = errors.New("mission not found")

// CreateMissionRequest overrides the configured defaults field by field;
// nil fields keep the default.
type CreateMissionRequest struct {
	Name string `json:"name,omitempty"`

	Seed            *int64   `json:"seed,omitempty"`
	Width           *int     `json:"width,omitempty"`
	Height          *int     `json:"height,omitempty"`
	ObstacleProb    *float64 `json:"obstacleProb,omitempty"`
	DangerProb      *float64 `json:"dangerProb,omitempty"`
	Survivors       *int     `json:"survivors,omitempty"`
	HiddenSurvivors *int     `json:"hiddenSurvivors,omitempty"`
	DetectionRadius *int     `json:"detectionRadius,omitempty"`
	SpawnDelay      *int     `json:"spawnDelay,omitempty"`
	MaxDrones       *int     `json:"maxDrones,omitempty"`
	MaxSteps        *int     `json:"maxSteps,omitempty"`
	AllowDiagonal   *bool    `json:"allowDiagonal,omitempty"`
	DangerDecayProb *float64 `json:"dangerDecayProb,omitempty"`

	// ScenarioYAML builds the map from a fixed scenario instead of the
	// random generator.
	ScenarioYAML string `json:"scenarioYaml,omitempty"`
}

func (req *CreateMissionRequest) apply(opts sim.Options) sim.Options {
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	if req.Width != nil {
		opts.Width = *req.Width
	}
	if req.Height != nil {
		opts.Height = *req.Height
	}
	if req.ObstacleProb != nil {
		opts.ObstacleProb = *req.ObstacleProb
	}
	if req.DangerProb != nil {
		opts.DangerProb = *req.DangerProb
	}
	if req.Survivors != nil {
		opts.InitialSurvivors = *req.Survivors
	}
	if req.HiddenSurvivors != nil {
		opts.HiddenSurvivors = *req.HiddenSurvivors
	}
	if req.DetectionRadius != nil {
		opts.DetectionRadius = *req.DetectionRadius
	}
	if req.SpawnDelay != nil {
		opts.SpawnDelay = *req.SpawnDelay
	}
	if req.MaxDrones != nil {
		opts.MaxDrones = *req.MaxDrones
	}
	if req.MaxSteps != nil {
		opts.MaxSteps = *req.MaxSteps
	}
	if req.AllowDiagonal != nil {
		opts.AllowDiagonal = *req.AllowDiagonal
	}
	if req.DangerDecayProb != nil {
		opts.DangerDecayProb = *req.DangerDecayProb
	}
	// API missions are always queryable frame by frame.
	opts.RecordFrames = true
	opts.StepsPerSecond = 0
	return opts
}

// MissionView is the API representation of a mission.
type MissionView struct {
	ID        string              `json:"id"`
	Name      string              `json:"name,omitempty"`
	Status    types.MissionStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Options   sim.Options         `json:"options"`
	Summary   mission.Status      `json:"summary"`
	Report    *sim.Report         `json:"report,omitempty"`
}

type managedMission struct {
	mu sync.Mutex

	rec             store.MissionRecord
	runner          *sim.Runner
	persistedFrames int
}

// Manager owns live missions, their persistence and their artifacts.
type Manager struct {
	mu       sync.RWMutex
	missions map[string]*managedMission

	store     store.Store
	cache     cache.Cache
	history   *history.Archive
	artifacts *artifact.Writer
	defaults  sim.Options
}

// ManagerDeps wires the manager's collaborators. History and artifacts
// are optional.
type ManagerDeps struct {
	Store     store.Store
	Cache     cache.Cache
	History   *history.Archive
	Artifacts *artifact.Writer
	Defaults  sim.Options
}

// NewManager creates a mission manager.
func NewManager(deps ManagerDeps) *Manager {
	c := deps.Cache
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Manager{
		missions:  make(map[string]*managedMission),
		store:     deps.Store,
		cache:     c,
		history:   deps.History,
		artifacts: deps.Artifacts,
		defaults:  deps.Defaults,
	}
}

// Create builds a new mission and persists its initial state.
func (m *Manager) Create(ctx context.Context, req CreateMissionRequest) (*MissionView, error) {
	opts := req.apply(m.defaults)

	var (
		runner *sim.Runner
		err    error
	)
	if req.ScenarioYAML != "" {
		sc, perr := terrain.ParseScenario(strings.NewReader(req.ScenarioYAML))
		if perr != nil {
			return nil, fmt.Errorf("parse scenario: %w", perr)
		}
		runner, err = sim.NewRunnerFromScenario(opts, sc)
	} else {
		runner, err = sim.NewRunner(opts)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	mm := &managedMission{
		rec: store.MissionRecord{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Status:    types.MissionStatusPlanned,
			CreatedAt: now,
			UpdatedAt: now,
			Options:   runner.Options(),
			Summary:   runner.Coordinator().Status(),
		},
		runner: runner,
	}

	m.mu.Lock()
	m.missions[mm.rec.ID] = mm
	active := m.activeLocked()
	m.mu.Unlock()

	metrics.MissionStarted()
	metrics.SetActiveMissions(active)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	if err := m.persistLocked(ctx, mm); err != nil {
		return nil, err
	}

	logger := rmlog.WithComponentFromContext(ctx, "missions")
	logger.Info().
		Str(rmlog.FieldMissionID, mm.rec.ID).
		Int("width", mm.rec.Options.Width).
		Int("height", mm.rec.Options.Height).
		Int(rmlog.FieldSurvivors, mm.rec.Summary.TotalSurvivors).
		Msg("mission created")

	return viewLocked(mm), nil
}

// List returns all missions, live and archived.
func (m *Manager) List(ctx context.Context) ([]*MissionView, error) {
	recs, err := m.store.ListMissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*MissionView, 0, len(recs))
	for _, rec := range recs {
		if mm := m.lookup(rec.ID); mm != nil {
			mm.mu.Lock()
			out = append(out, viewLocked(mm))
			mm.mu.Unlock()
			continue
		}
		out = append(out, viewFromRecord(rec))
	}
	return out, nil
}

// Get returns one mission.
func (m *Manager) Get(ctx context.Context, id string) (*MissionView, error) {
	if mm := m.lookup(id); mm != nil {
		mm.mu.Lock()
		defer mm.mu.Unlock()
		return viewLocked(mm), nil
	}
	rec, err := m.store.GetMission(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("mission %s: %w", id, ErrMissionNotFound)
		}
		return nil, err
	}
	return viewFromRecord(rec), nil
}

// Advance steps a mission up to steps ticks, stopping early on a
// terminal condition.
func (m *Manager) Advance(ctx context.Context, id string, steps int) (*MissionView, error) {
	mm := m.lookup(id)
	if mm == nil {
		return nil, fmt.Errorf("mission %s: %w", id, ErrMissionNotFound)
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()

	if mm.rec.Status.IsTerminal() {
		return nil, fmt.Errorf("mission %s: %w", id, ErrMissionFinished)
	}

	for i := 0; i < steps && !mm.runner.Finished(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mm.runner.Step(ctx)
	}
	mm.rec.Status = types.MissionStatusRunning

	if mm.runner.Finished() {
		if err := m.finalizeLocked(ctx, mm); err != nil {
			return nil, err
		}
	} else if err := m.persistLocked(ctx, mm); err != nil {
		return nil, err
	}
	return viewLocked(mm), nil
}

// Run drives a mission to its terminal state.
func (m *Manager) Run(ctx context.Context, id string) (*MissionView, error) {
	mm := m.lookup(id)
	if mm == nil {
		return nil, fmt.Errorf("mission %s: %w", id, ErrMissionNotFound)
	}
	mm.mu.Lock()
	maxSteps := mm.runner.Options().MaxSteps
	mm.mu.Unlock()
	return m.Advance(ctx, id, maxSteps)
}

// Report returns the final report of a finished mission.
func (m *Manager) Report(ctx context.Context, id string) (*sim.Report, error) {
	view, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Report == nil {
		return nil, fmt.Errorf("mission %s has no report yet", id)
	}
	return view.Report, nil
}

// Frame returns one recorded frame, from the live recorder when the
// mission is in memory and from the store otherwise.
func (m *Manager) Frame(ctx context.Context, id string, seq int) (*sim.Frame, error) {
	if mm := m.lookup(id); mm != nil {
		mm.mu.Lock()
		frames := mm.runner.Recorder().Frames()
		mm.mu.Unlock()
		for i := range frames {
			if frames[i].Seq == seq {
				return &frames[i], nil
			}
		}
		return nil, fmt.Errorf("mission %s frame %d: %w", id, seq, store.ErrNotFound)
	}
	return m.store.GetFrame(ctx, id, seq)
}

// LatestFrame returns the most recent recorded frame.
func (m *Manager) LatestFrame(ctx context.Context, id string) (*sim.Frame, error) {
	mm := m.lookup(id)
	if mm == nil {
		rec, err := m.store.GetMission(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("mission %s: %w", id, ErrMissionNotFound)
			}
			return nil, err
		}
		return m.store.GetFrame(ctx, id, rec.Summary.Time)
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	frames := mm.runner.Recorder().Frames()
	if len(frames) == 0 {
		return nil, fmt.Errorf("mission %s has no frames", id)
	}
	f := frames[len(frames)-1]
	return &f, nil
}

// Frames returns every recorded frame of a live mission.
func (m *Manager) Frames(id string) ([]sim.Frame, error) {
	mm := m.lookup(id)
	if mm == nil {
		return nil, fmt.Errorf("mission %s: %w", id, ErrMissionNotFound)
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.runner.Recorder().Frames(), nil
}

// Delete removes a mission from memory and the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	_, live := m.missions[id]
	delete(m.missions, id)
	active := m.activeLocked()
	m.mu.Unlock()

	if live {
		metrics.SetActiveMissions(active)
	}
	m.cache.Delete(statusCacheKey(id))

	if err := m.store.DeleteMission(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if live {
				return nil
			}
			return fmt.Errorf("mission %s: %w", id, ErrMissionNotFound)
		}
		return err
	}
	return nil
}

// Close abandons all live missions without persisting further state.
func (m *Manager) Close() {
	m.mu.Lock()
	m.missions = make(map[string]*managedMission)
	m.mu.Unlock()
	metrics.SetActiveMissions(0)
}

func (m *Manager) lookup(id string) *managedMission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.missions[id]
}

// activeLocked counts live missions; callers hold m.mu.
func (m *Manager) activeLocked() int { return len(m.missions) }

func statusCacheKey(id string) string { return "status:" + id }

// persistLocked stores the record plus any frames recorded since the
// last persist. Callers hold mm.mu.
func (m *Manager) persistLocked(ctx context.Context, mm *managedMission) error {
	mm.rec.Summary = mm.runner.Coordinator().Status()
	mm.rec.UpdatedAt = time.Now().UTC()

	if err := m.store.PutMission(ctx, &mm.rec); err != nil {
		return err
	}

	frames := mm.runner.Recorder().Frames()
	for ; mm.persistedFrames < len(frames); mm.persistedFrames++ {
		if err := m.store.PutFrame(ctx, mm.rec.ID, &frames[mm.persistedFrames]); err != nil {
			return err
		}
	}

	m.cache.Delete(statusCacheKey(mm.rec.ID))
	return nil
}

// finalizeLocked settles a finished mission: report, archive, artifacts
// and metrics. Callers hold mm.mu.
func (m *Manager) finalizeLocked(ctx context.Context, mm *managedMission) error {
	report := mm.runner.BuildReport()
	mm.rec.Report = report
	mm.rec.Status = report.Outcome

	if err := m.persistLocked(ctx, mm); err != nil {
		return err
	}

	logger := rmlog.WithComponentFromContext(ctx, "missions")

	if m.history != nil {
		if err := m.history.Record(ctx, mm.rec.ID, mm.rec.Name, report, mm.rec.UpdatedAt); err != nil {
			logger.Error().Err(err).Str(rmlog.FieldMissionID, mm.rec.ID).Msg("archive mission history")
		}
	}

	if m.artifacts != nil {
		if _, err := m.artifacts.WriteReport(ctx, mm.rec.ID, report); err != nil {
			logger.Error().Err(err).Str(rmlog.FieldMissionID, mm.rec.ID).Msg("write report artifact")
		}
		frames := mm.runner.Recorder().Frames()
		if len(frames) > 0 {
			last := frames[len(frames)-1]
			if _, err := m.artifacts.WriteMapPNG(ctx, mm.rec.ID, &last, 0); err != nil {
				logger.Error().Err(err).Str(rmlog.FieldMissionID, mm.rec.ID).Msg("write map artifact")
			}
			if _, err := m.artifacts.WriteAnimationGIF(ctx, mm.rec.ID, frames, render.DefaultGIFOptions()); err != nil {
				logger.Error().Err(err).Str(rmlog.FieldMissionID, mm.rec.ID).Msg("write animation artifact")
			}
		}
	}

	metrics.MissionFinished(report.Outcome.String())

	logger.Info().
		Str(rmlog.FieldMissionID, mm.rec.ID).
		Str("outcome", report.Outcome.String()).
		Int(rmlog.FieldRescued, report.Status.RescuedSurvivors).
		Msg("mission finished")
	return nil
}

func viewLocked(mm *managedMission) *MissionView {
	rec := mm.rec
	rec.Summary = mm.runner.Coordinator().Status()
	return viewFromRecord(&rec)
}

func viewFromRecord(rec *store.MissionRecord) *MissionView {
	return &MissionView{
		ID:        rec.ID,
		Name:      rec.Name,
		Status:    rec.Status,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Options:   rec.Options,
		Summary:   rec.Summary,
		Report:    rec.Report,
	}
}
