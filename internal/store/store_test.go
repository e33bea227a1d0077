// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
	"github.com/NEPXiss/rescue-mission/internal/types"
)

func testRecord(id string, created time.Time) *MissionRecord {
	return &MissionRecord{
		ID:        id,
		Name:      "test " + id,
		Status:    types.MissionStatusPlanned,
		CreatedAt: created,
		UpdatedAt: created,
		Options:   sim.DefaultOptions(),
	}
}

func testStoreFrame(seq int) *sim.Frame {
	return &sim.Frame{
		Seq:    seq,
		Time:   seq,
		Width:  2,
		Height: 1,
		Cells:  []terrain.CellType{terrain.CellNormal, terrain.CellSurvivor},
	}
}

// runStoreSuite exercises the Store contract against any implementation.
func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("get missing mission", func(t *testing.T) {
		_, err := s.GetMission(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put and get mission", func(t *testing.T) {
		rec := testRecord("m-1", now)
		require.NoError(t, s.PutMission(ctx, rec))

		got, err := s.GetMission(ctx, "m-1")
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.Name, got.Name)
		assert.Equal(t, rec.Status, got.Status)
	})

	t.Run("update mission", func(t *testing.T) {
		rec := testRecord("m-1", now)
		rec.Status = types.MissionStatusRunning
		require.NoError(t, s.PutMission(ctx, rec))

		got, err := s.GetMission(ctx, "m-1")
		require.NoError(t, err)
		assert.Equal(t, types.MissionStatusRunning, got.Status)
	})

	t.Run("list missions ordered by creation", func(t *testing.T) {
		require.NoError(t, s.PutMission(ctx, testRecord("m-0", now.Add(-time.Hour))))
		require.NoError(t, s.PutMission(ctx, testRecord("m-2", now.Add(time.Hour))))

		recs, err := s.ListMissions(ctx)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "m-0", recs[0].ID)
		assert.Equal(t, "m-1", recs[1].ID)
		assert.Equal(t, "m-2", recs[2].ID)
	})

	t.Run("frames", func(t *testing.T) {
		_, err := s.GetFrame(ctx, "m-1", 0)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.PutFrame(ctx, "m-1", testStoreFrame(0)))
		require.NoError(t, s.PutFrame(ctx, "m-1", testStoreFrame(1)))

		f, err := s.GetFrame(ctx, "m-1", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, f.Seq)
		assert.Equal(t, []terrain.CellType{terrain.CellNormal, terrain.CellSurvivor}, f.Cells)

		_, err = s.GetFrame(ctx, "m-1", 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete mission removes frames", func(t *testing.T) {
		require.NoError(t, s.DeleteMission(ctx, "m-1"))

		_, err := s.GetMission(ctx, "m-1")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetFrame(ctx, "m-1", 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete missing mission", func(t *testing.T) {
		err := s.DeleteMission(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	runStoreSuite(t, s)
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	defer s.Close()
	runStoreSuite(t, s)
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	ctx := context.Background()

	s, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.PutMission(ctx, testRecord("m-keep", time.Now())))
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetMission(ctx, "m-keep")
	require.NoError(t, err)
	assert.Equal(t, "m-keep", got.ID)
}

func TestFactory(t *testing.T) {
	s, err := New(BackendMemory, "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(BackendBadger, filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = New("cassandra", "")
	assert.Error(t, err)
}
