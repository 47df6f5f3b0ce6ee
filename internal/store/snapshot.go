package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// snapshotKey is the fixed storage key for the single persisted snapshot.
const snapshotKey = "timerState"

// SaveSnapshot overwrites the persisted snapshot. Last write wins.
func (s *Store) SaveSnapshot(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO timer_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		snapshotKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the persisted snapshot, or nil when none exists.
// A stored value that fails to parse is treated as no snapshot rather
// than an error, so schema drift never blocks startup.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM timer_state WHERE key = ?`, snapshotKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		return nil, nil
	}
	if snap.TimeLeft < 0 || snap.LastUpdate < 0 {
		return nil, nil
	}
	return &snap, nil
}

// ClearSnapshot deletes the persisted snapshot so a future startup
// begins from defaults instead of reconciling stale state.
func (s *Store) ClearSnapshot() error {
	_, err := s.db.Exec(`DELETE FROM timer_state WHERE key = ?`, snapshotKey)
	return err
}
