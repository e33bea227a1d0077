// SPDX-License-Identifier: MIT

// Package store persists mission records and recorded frames so the API
// can list, resume and replay missions across daemon restarts.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/NEPXiss/rescue-mission/internal/mission"
	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/types"
)

// ErrNotFound is returned when a mission or frame does not exist.
var ErrNotFound = errors.New("not found")

// MissionRecord is the persisted shape of a mission.
type MissionRecord struct {
	ID        string              `json:"id"`
	Name      string              `json:"name,omitempty"`
	Status    types.MissionStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`

	Options sim.Options    `json:"options"`
	Summary mission.Status `json:"summary"`
	Report  *sim.Report    `json:"report,omitempty"`
}

// Store is the persistence boundary for missions and frames.
type Store interface {
	PutMission(ctx context.Context, rec *MissionRecord) error
	GetMission(ctx context.Context, id string) (*MissionRecord, error)
	ListMissions(ctx context.Context) ([]*MissionRecord, error)
	// DeleteMission removes the record and all of its frames.
	DeleteMission(ctx context.Context, id string) error

	PutFrame(ctx context.Context, missionID string, f *sim.Frame) error
	GetFrame(ctx context.Context, missionID string, seq int) (*sim.Frame, error)

	// Ping verifies the backend is reachable, for readiness checks.
	Ping(ctx context.Context) error
	Close() error
}
