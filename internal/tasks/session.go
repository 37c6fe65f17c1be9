package tasks

import (
	"sync/atomic"

	"github.com/desertthunder/uptrack/internal/platforms"
)

// syncSession is the unit-of-work state for one RunSync call. Counters are
// mutated only by the scheduler's collector loop, which runs on a single
// goroutine; the cancel flag is the one field shared with the job feeder,
// hence atomic.
type syncSession struct {
	total         int
	completed     int
	fetched       int // creators whose fetch succeeded
	failed        int // creators skipped on error
	skipped       int // creators dequeued after cancellation, never fetched
	rateLimitHits int
	blocked       atomic.Bool // hard-block encountered
	cancelled     atomic.Bool // stop dequeuing new creators

	items []platforms.FetchedItem // accumulated, completion order
}

func newSession(total int) *syncSession {
	return &syncSession{total: total}
}

// cancel stops the feeder from dequeuing further creators. In-flight
// fetches always drain naturally.
func (s *syncSession) cancel() {
	s.cancelled.Store(true)
}

func (s *syncSession) isCancelled() bool {
	return s.cancelled.Load()
}

// block records a platform lockout, which also cancels the session.
func (s *syncSession) block() {
	s.blocked.Store(true)
	s.cancelled.Store(true)
}

func (s *syncSession) isBlocked() bool {
	return s.blocked.Load()
}
