package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/platforms"
)

// fetchOutcome records one settled adapter call.
type fetchOutcome struct {
	creator *models.Creator
	items   []platforms.FetchedItem
	err     error
	skipped bool // dequeued after cancellation, never fetched
}

// runFetchPool drives adapter fetches for one platform group under a
// concurrency ceiling. It is a self-refilling worker pool: workers pull the
// next pending creator the moment one settles, keeping the active set
// saturated at the ceiling until the queue drains.
//
// Cancellation is cooperative and checked between task starts only:
// the feeder re-checks the session cancel flag and the caller's
// shouldCancel switch before every dispatch, and each worker re-checks
// before starting a fetch. In-flight fetches always finish naturally.
// A hard-block flips the cancel flag inside the worker that saw it, before
// that worker can pick up another creator.
func (e *Engine) runFetchPool(
	ctx context.Context,
	session *syncSession,
	adapter platforms.Platform,
	creators []*models.Creator,
	ceiling int,
	progress chan<- ProgressUpdate,
	shouldCancel func() bool,
) {
	if len(creators) == 0 {
		return
	}
	if ceiling < 1 {
		ceiling = 1
	}
	if ceiling > len(creators) {
		ceiling = len(creators)
	}

	// Unbuffered: a send completes only when a worker is free, which is
	// what bounds the number of outstanding fetches to the ceiling.
	jobs := make(chan *models.Creator)
	results := make(chan fetchOutcome, len(creators))

	wantsCancel := func() bool {
		return session.isCancelled() || (shouldCancel != nil && shouldCancel())
	}

	var wg sync.WaitGroup
	for i := 0; i < ceiling; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for creator := range jobs {
				if wantsCancel() {
					session.cancel()
					results <- fetchOutcome{creator: creator, skipped: true}
					continue
				}

				items, err := adapter.FetchRecentItems(ctx, creator)
				if err != nil && Classify(err) == FailureBlocked {
					session.block()
				}
				results <- fetchOutcome{creator: creator, items: items, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, creator := range creators {
			if wantsCancel() {
				session.cancel()
				return
			}
			select {
			case <-ctx.Done():
				session.cancel()
				return
			case jobs <- creator:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		e.recordOutcome(session, outcome, progress)
	}
}

// recordOutcome classifies one settled fetch, updates session counters, and
// emits a progress tick. Runs on the collector goroutine only.
func (e *Engine) recordOutcome(session *syncSession, outcome fetchOutcome, progress chan<- ProgressUpdate) {
	if outcome.skipped {
		session.skipped++
		return
	}

	session.completed++

	if outcome.err != nil {
		session.failed++
		switch Classify(outcome.err) {
		case FailureRateLimited:
			session.rateLimitHits++
			e.logger.Warn("creator rate limited, skipping",
				"creator", outcome.creator.DisplayName, "platform", outcome.creator.Platform)
		case FailureBlocked:
			e.logger.Error("platform lockout, aborting session",
				"creator", outcome.creator.DisplayName, "platform", outcome.creator.Platform,
				"err", outcome.err)
		default:
			e.logger.Warn("creator fetch failed, skipping",
				"creator", outcome.creator.DisplayName, "err", outcome.err)
		}
		e.sendProgress(progress, creatorDoneUpdate(session.completed, session.total, outcome.creator, outcome.err))
		return
	}

	session.fetched++
	today := e.now()
	for _, item := range outcome.items {
		if sameDay(item.PublishedAt, today) {
			session.items = append(session.items, item)
		}
	}
	e.sendProgress(progress, creatorDoneUpdate(session.completed, session.total, outcome.creator, nil))
}

// sameDay reports whether a and b fall on the same calendar day in a's location.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
