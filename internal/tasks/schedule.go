package tasks

import "time"

// DefaultSyncInterval is how long `sync --auto` waits between runs.
const DefaultSyncInterval = 6 * time.Hour

// Schedule is the small piece of state behind the "should I sync now" /
// "mark synced" convenience pair. Callers load LastRunAt from the state
// repository and persist it back after MarkSynced; the engine itself never
// reads ambient storage.
type Schedule struct {
	LastRunAt time.Time
	Interval  time.Duration
}

// Due reports whether a sync should run at the given time. A zero
// LastRunAt (no recorded run) is always due.
func (s Schedule) Due(now time.Time) bool {
	if s.LastRunAt.IsZero() {
		return true
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return now.Sub(s.LastRunAt) >= interval
}

// MarkSynced records a completed run at the given time.
func (s *Schedule) MarkSynced(now time.Time) {
	s.LastRunAt = now
}
