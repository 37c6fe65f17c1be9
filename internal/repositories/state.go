package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// StateRepository persists per-owner sync bookkeeping (the last successful
// run timestamp) consumed by the periodic auto-sync check.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new StateRepository with the given database connection
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// LastRunAt returns the owner's last recorded sync time. A zero time and
// nil error means no run has been recorded yet.
func (r *StateRepository) LastRunAt(ownerID string) (time.Time, error) {
	var last time.Time
	err := r.db.QueryRow("SELECT last_run_at FROM sync_state WHERE owner_id = ?", ownerID).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query sync state: %w", err)
	}
	return last, nil
}

// MarkSynced records t as the owner's last sync time.
func (r *StateRepository) MarkSynced(ownerID string, t time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO sync_state (owner_id, last_run_at) VALUES (?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET last_run_at = excluded.last_run_at
	`, ownerID, t)
	if err != nil {
		return fmt.Errorf("failed to record sync state: %w", err)
	}
	return nil
}
