// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/NEPXiss/rescue-mission/internal/sim"
)

// MemoryStore keeps records in process memory. It backs tests and
// ephemeral deployments where durability is not required.
type MemoryStore struct {
	mu       sync.RWMutex
	missions map[string]*MissionRecord
	frames   map[string]map[int]*sim.Frame
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		missions: make(map[string]*MissionRecord),
		frames:   make(map[string]map[int]*sim.Frame),
	}
}

func (s *MemoryStore) PutMission(_ context.Context, rec *MissionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("mission record has empty id")
	}
	cp := *rec
	s.mu.Lock()
	s.missions[rec.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetMission(_ context.Context, id string) (*MissionRecord, error) {
	s.mu.RLock()
	rec, ok := s.missions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("mission %s: %w", id, ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) ListMissions(_ context.Context) ([]*MissionRecord, error) {
	s.mu.RLock()
	out := make([]*MissionRecord, 0, len(s.missions))
	for _, rec := range s.missions {
		cp := *rec
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) DeleteMission(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.missions[id]; !ok {
		return fmt.Errorf("mission %s: %w", id, ErrNotFound)
	}
	delete(s.missions, id)
	delete(s.frames, id)
	return nil
}

func (s *MemoryStore) PutFrame(_ context.Context, missionID string, f *sim.Frame) error {
	cp := *f
	s.mu.Lock()
	m, ok := s.frames[missionID]
	if !ok {
		m = make(map[int]*sim.Frame)
		s.frames[missionID] = m
	}
	m[f.Seq] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetFrame(_ context.Context, missionID string, seq int) (*sim.Frame, error) {
	s.mu.RLock()
	f, ok := s.frames[missionID][seq]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("mission %s frame %d: %w", missionID, seq, ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
