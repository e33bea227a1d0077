// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/NEPXiss/rescue-mission/internal/metrics"
	"github.com/NEPXiss/rescue-mission/internal/sim"
)

// BadgerStore persists missions and frames in an embedded badger
// database, JSON-encoded under prefixed keys:
//   - missions: "mission:<id>"
//   - frames:   "frame:<id>:<seq padded to 8 digits>"
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) the database at path. Badger's own
// logger is silenced; failures surface through the returned errors.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func missionKey(id string) []byte { return []byte("mission:" + id) }

func frameKey(missionID string, seq int) []byte {
	return []byte(fmt.Sprintf("frame:%s:%08d", missionID, seq))
}

func (s *BadgerStore) PutMission(_ context.Context, rec *MissionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("mission record has empty id")
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode mission %s: %w", rec.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(missionKey(rec.ID), buf)
	})
	if err != nil {
		metrics.StoreFailure("put_mission")
		return fmt.Errorf("put mission %s: %w", rec.ID, err)
	}
	return nil
}

func (s *BadgerStore) GetMission(_ context.Context, id string) (*MissionRecord, error) {
	var out MissionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(missionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("mission %s: %w", id, ErrNotFound)
		}
		metrics.StoreFailure("get_mission")
		return nil, fmt.Errorf("get mission %s: %w", id, err)
	}
	return &out, nil
}

func (s *BadgerStore) ListMissions(ctx context.Context) ([]*MissionRecord, error) {
	prefix := []byte("mission:")
	var out []*MissionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var rec MissionRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				continue
			}
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		metrics.StoreFailure("list_missions")
		return nil, fmt.Errorf("list missions: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *BadgerStore) DeleteMission(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(missionKey(id)); err != nil {
			return err
		}
		return txn.Delete(missionKey(id))
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("mission %s: %w", id, ErrNotFound)
		}
		metrics.StoreFailure("delete_mission")
		return fmt.Errorf("delete mission %s: %w", id, err)
	}
	if err := s.db.DropPrefix([]byte("frame:" + id + ":")); err != nil {
		metrics.StoreFailure("delete_frames")
		return fmt.Errorf("delete frames of mission %s: %w", id, err)
	}
	return nil
}

func (s *BadgerStore) PutFrame(_ context.Context, missionID string, f *sim.Frame) error {
	buf, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", f.Seq, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(frameKey(missionID, f.Seq), buf)
	})
	if err != nil {
		metrics.StoreFailure("put_frame")
		return fmt.Errorf("put frame %d of mission %s: %w", f.Seq, missionID, err)
	}
	return nil
}

func (s *BadgerStore) GetFrame(_ context.Context, missionID string, seq int) (*sim.Frame, error) {
	var out sim.Frame
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(frameKey(missionID, seq))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("mission %s frame %d: %w", missionID, seq, ErrNotFound)
		}
		metrics.StoreFailure("get_frame")
		return nil, fmt.Errorf("get frame %d of mission %s: %w", seq, missionID, err)
	}
	return &out, nil
}

func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

var _ Store = (*BadgerStore)(nil)
