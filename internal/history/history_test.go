// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NEPXiss/rescue-mission/internal/mission"
	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/types"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func testReport(outcome types.MissionStatus, steps, rescued int) *sim.Report {
	return &sim.Report{
		Outcome: outcome,
		Status: mission.Status{
			Time:             steps,
			DronesDeployed:   4,
			TotalSurvivors:   10,
			RescuedSurvivors: rescued,
		},
		SuccessRate:   float64(rescued) * 10,
		TotalDistance: 120.5,
	}
}

func TestRecordAndGet(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	finished := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	report := testReport(types.MissionStatusCompleted, 85, 10)
	require.NoError(t, a.Record(ctx, "m-1", "alpine rescue", report, finished))

	e, err := a.Get(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", e.MissionID)
	assert.Equal(t, "alpine rescue", e.Name)
	assert.Equal(t, types.MissionStatusCompleted, e.Outcome)
	assert.Equal(t, finished, e.FinishedAt)
	assert.Equal(t, 85, e.Steps)
	assert.Equal(t, 4, e.Drones)
	assert.Equal(t, 10, e.Total)
	assert.Equal(t, 10, e.Rescued)
	assert.InDelta(t, 100.0, e.SuccessRate, 1e-9)
	assert.InDelta(t, 120.5, e.TotalDistance, 1e-9)
}

func TestGetMissing(t *testing.T) {
	a := openTestArchive(t)

	_, err := a.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordOverwritesSameMission(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, a.Record(ctx, "m-1", "run", testReport(types.MissionStatusExhausted, 200, 6), now))
	require.NoError(t, a.Record(ctx, "m-1", "run", testReport(types.MissionStatusCompleted, 150, 10), now.Add(time.Minute)))

	e, err := a.Get(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, types.MissionStatusCompleted, e.Outcome)
	assert.Equal(t, 150, e.Steps)

	entries, err := a.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordRejectsNonTerminalOutcome(t *testing.T) {
	a := openTestArchive(t)

	// The outcome column is constrained to terminal states.
	err := a.Record(context.Background(), "m-x", "", testReport(types.MissionStatusRunning, 10, 0), time.Now())
	assert.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"m-old", "m-mid", "m-new"} {
		report := testReport(types.MissionStatusCompleted, 100+i, 10)
		require.NoError(t, a.Record(ctx, id, "", report, base.Add(time.Duration(i)*time.Hour)))
	}

	entries, err := a.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "m-new", entries[0].MissionID)
	assert.Equal(t, "m-old", entries[2].MissionID)

	limited, err := a.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAggregateStats(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Empty archive yields zeroes.
	s, err := a.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Missions)

	require.NoError(t, a.Record(ctx, "m-1", "", testReport(types.MissionStatusCompleted, 100, 10), now))
	require.NoError(t, a.Record(ctx, "m-2", "", testReport(types.MissionStatusExhausted, 200, 5), now))

	s, err = a.AggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Missions)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 15, s.TotalRescued)
	assert.InDelta(t, 75.0, s.AvgSuccessRate, 1e-9)
	assert.InDelta(t, 150.0, s.AvgSteps, 1e-9)
	assert.InDelta(t, 241.0, s.TotalDistance, 1e-9)
	assert.InDelta(t, 4.0, s.AvgDronesPerRun, 1e-9)
}
