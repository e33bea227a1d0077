// SPDX-License-Identifier: MIT

// Package history archives finished mission reports in SQLite for
// long-term querying and aggregate statistics.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)

	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/types"
)

// ErrNotFound is returned when a mission has no archived entry.
var ErrNotFound = errors.New("history entry not found")

// Entry is one archived mission outcome.
type Entry struct {
	MissionID     string              `json:"mission_id"`
	Name          string              `json:"name,omitempty"`
	Outcome       types.MissionStatus `json:"outcome"`
	FinishedAt    time.Time           `json:"finished_at"`
	Steps         int                 `json:"steps"`
	Drones        int                 `json:"drones"`
	Total         int                 `json:"total_survivors"`
	Rescued       int                 `json:"rescued"`
	SuccessRate   float64             `json:"success_rate"`
	TotalDistance float64             `json:"total_distance"`
}

// Stats aggregates the archive.
type Stats struct {
	Missions        int     `json:"missions"`
	Completed       int     `json:"completed"`
	TotalRescued    int     `json:"total_rescued"`
	AvgSuccessRate  float64 `json:"avg_success_rate"`
	AvgSteps        float64 `json:"avg_steps"`
	TotalDistance   float64 `json:"total_distance"`
	AvgDronesPerRun float64 `json:"avg_drones_per_run"`
}

// Archive provides SQLite persistence for mission history.
type Archive struct {
	db *sql.DB
}

// Open initializes the archive and runs migrations. WAL mode and
// busy_timeout keep concurrent readers from tripping over writers.
func Open(dbPath string) (*Archive, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error { return a.db.Close() }

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mission_history (
		mission_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL CHECK(outcome IN ('completed', 'aborted', 'exhausted')),
		finished_at TEXT NOT NULL,
		steps INTEGER NOT NULL,
		drones INTEGER NOT NULL,
		total_survivors INTEGER NOT NULL,
		rescued INTEGER NOT NULL,
		success_rate REAL NOT NULL,
		total_distance REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mission_history_finished ON mission_history(finished_at);
	CREATE INDEX IF NOT EXISTS idx_mission_history_outcome ON mission_history(outcome);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Record archives a finished mission, overwriting any previous entry for
// the same mission id.
func (a *Archive) Record(ctx context.Context, missionID, name string, report *sim.Report, finishedAt time.Time) error {
	query := `
	INSERT INTO mission_history
		(mission_id, name, outcome, finished_at, steps, drones, total_survivors, rescued, success_rate, total_distance)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(mission_id) DO UPDATE SET
		outcome = excluded.outcome,
		finished_at = excluded.finished_at,
		steps = excluded.steps,
		drones = excluded.drones,
		total_survivors = excluded.total_survivors,
		rescued = excluded.rescued,
		success_rate = excluded.success_rate,
		total_distance = excluded.total_distance`

	st := report.Status
	_, err := a.db.ExecContext(ctx, query,
		missionID, name, report.Outcome.String(), finishedAt.UTC().Format(time.RFC3339),
		st.Time, st.DronesDeployed, st.TotalSurvivors, st.RescuedSurvivors,
		report.SuccessRate, report.TotalDistance)
	if err != nil {
		return fmt.Errorf("record mission %s: %w", missionID, err)
	}
	return nil
}

// Get returns the archived entry for one mission.
func (a *Archive) Get(ctx context.Context, missionID string) (*Entry, error) {
	query := `
	SELECT mission_id, name, outcome, finished_at, steps, drones, total_survivors, rescued, success_rate, total_distance
	FROM mission_history WHERE mission_id = ?`

	e, err := scanEntry(a.db.QueryRowContext(ctx, query, missionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("mission %s: %w", missionID, ErrNotFound)
		}
		return nil, fmt.Errorf("get history for mission %s: %w", missionID, err)
	}
	return e, nil
}

// List returns archived entries, newest first, capped at limit
// (limit <= 0 means no cap).
func (a *Archive) List(ctx context.Context, limit int) ([]*Entry, error) {
	query := `
	SELECT mission_id, name, outcome, finished_at, steps, drones, total_survivors, rescued, success_rate, total_distance
	FROM mission_history ORDER BY finished_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}

// AggregateStats computes archive-wide statistics.
func (a *Archive) AggregateStats(ctx context.Context) (*Stats, error) {
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN outcome = 'completed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(rescued), 0),
		COALESCE(AVG(success_rate), 0),
		COALESCE(AVG(steps), 0),
		COALESCE(SUM(total_distance), 0),
		COALESCE(AVG(drones), 0)
	FROM mission_history`

	var s Stats
	err := a.db.QueryRowContext(ctx, query).Scan(
		&s.Missions, &s.Completed, &s.TotalRescued,
		&s.AvgSuccessRate, &s.AvgSteps, &s.TotalDistance, &s.AvgDronesPerRun)
	if err != nil {
		return nil, fmt.Errorf("aggregate history stats: %w", err)
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var outcome, finished string
	err := row.Scan(&e.MissionID, &e.Name, &outcome, &finished,
		&e.Steps, &e.Drones, &e.Total, &e.Rescued, &e.SuccessRate, &e.TotalDistance)
	if err != nil {
		return nil, err
	}
	e.Outcome = types.MissionStatus(outcome)
	if t, err := time.Parse(time.RFC3339, finished); err == nil {
		e.FinishedAt = t
	}
	return &e, nil
}
