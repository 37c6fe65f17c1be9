// package tasks implements the multi-platform creator sync engine.
//
// The core abstraction is [Engine], which fetches each tracked creator's
// newest uploads from the matching platform under per-platform concurrency
// ceilings, filters them to the current day, deduplicates against the
// store, and writes only genuinely new rows in bounded batches.
// Runs emit progress updates via channels for non-blocking status reporting
// to CLI/UI layers and support cooperative mid-run cancellation.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/platforms"
	"github.com/desertthunder/uptrack/internal/shared"
)

// defaultConcurrency is the Bilibili fetch ceiling when none is configured.
// YouTube is always serial; its daily quota leaves no headroom for parallel
// creators.
const defaultConcurrency = 8

// CreatorProvider supplies the tracked-creator list. Implemented by
// repositories.CreatorRepository.
type CreatorProvider interface {
	ListTracked(ownerID string) ([]*models.Creator, error)
}

// VideoStore is the persisted-item store the writer talks to. Implemented
// by repositories.VideoRepository.
type VideoStore interface {
	// ExistingKeys reports which of the video IDs already have rows for
	// the owner and platform.
	ExistingKeys(ownerID, platform string, videoIDs []string) (map[string]struct{}, error)

	// UpsertBatch idempotently writes rows keyed on (owner, platform, video).
	UpsertBatch(videos []*models.Video) error
}

// SyncResult summarizes one RunSync call. Never persisted.
type SyncResult struct {
	Success        bool
	Message        string
	ItemsAdded     int
	Cancelled      bool
	RateLimitHits  int
	CreatorsSynced int
	CreatorsFailed int
	SampleNewItems []platforms.FetchedItem // capped at 50
}

// EngineOpts contains configuration for creating an Engine.
type EngineOpts struct {
	Bilibili    platforms.Platform
	YouTube     platforms.Platform
	Store       VideoStore
	Logger      *log.Logger
	Concurrency int              // Bilibili fetch ceiling (default 8)
	BatchSize   int              // Rows per store write (default 200)
	Now         func() time.Time // Injectable clock for the current-day filter
}

// Engine orchestrates sync runs across both platforms.
type Engine struct {
	bilibili    platforms.Platform
	youtube     platforms.Platform
	store       VideoStore
	logger      *log.Logger
	concurrency int
	batchSize   int
	now         func() time.Time
}

// NewEngine creates a new Engine with the provided adapters and store.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		bilibili:    opts.Bilibili,
		youtube:     opts.YouTube,
		store:       opts.Store,
		logger:      opts.Logger,
		concurrency: opts.Concurrency,
		batchSize:   opts.BatchSize,
		now:         opts.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// RunSync fetches, deduplicates, and persists today's uploads for the given
// creators. The sole public sync operation.
//
// Bilibili creators are fetched under the configured concurrency ceiling;
// YouTube creators are fetched one at a time. shouldCancel is polled
// between task starts; a true result stops dequeuing while in-flight
// fetches drain, and everything fetched before the cancel point is still
// deduplicated and written. A platform lockout aborts the same way but
// yields Success false with a lockout message.
//
// Every recoverable failure path resolves into the returned SyncResult;
// the error return is reserved for precondition and store failures.
func (e *Engine) RunSync(
	ctx context.Context,
	creators []*models.Creator,
	progress chan<- ProgressUpdate,
	shouldCancel func() bool,
) (*SyncResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: engine has no store", shared.ErrStoreUnavailable)
	}
	if len(creators) == 0 {
		return nil, shared.ErrNoCreators
	}

	session := newSession(len(creators))

	var bilibili, youtube []*models.Creator
	for _, creator := range creators {
		switch creator.Platform {
		case models.PlatformBilibili:
			bilibili = append(bilibili, creator)
		case models.PlatformYouTube:
			youtube = append(youtube, creator)
		default:
			session.completed++
			session.failed++
			e.logger.Warn("skipping creator on unknown platform",
				"creator", creator.DisplayName, "platform", creator.Platform)
		}
	}
	if len(bilibili) > 0 && e.bilibili == nil {
		return nil, fmt.Errorf("%w: bilibili adapter not configured", shared.ErrPlatformUnavailable)
	}
	if len(youtube) > 0 && e.youtube == nil {
		return nil, fmt.Errorf("%w: youtube adapter not configured", shared.ErrPlatformUnavailable)
	}

	e.sendProgress(progress, fetchStartUpdate(session.total))

	e.runFetchPool(ctx, session, e.bilibili, bilibili, e.concurrency, progress, shouldCancel)

	// Quota discipline: the YouTube group always runs with ceiling 1.
	e.runFetchPool(ctx, session, e.youtube, youtube, 1, progress, shouldCancel)

	// Best-effort persistence: whatever settled before a cancel or lockout
	// is still deduplicated and written.
	e.sendProgress(progress, dedupeUpdate(len(session.items)))

	report, err := e.dedupeAndWrite(creators, session.items, progress)
	if err != nil {
		return &SyncResult{
			Success:        false,
			Message:        fmt.Sprintf("Sync failed while writing: %v", err),
			Cancelled:      session.isCancelled() && !session.isBlocked(),
			RateLimitHits:  session.rateLimitHits,
			CreatorsSynced: session.fetched,
			CreatorsFailed: session.failed,
		}, nil
	}

	result := &SyncResult{
		ItemsAdded:     report.itemsAdded,
		RateLimitHits:  session.rateLimitHits,
		CreatorsSynced: session.fetched,
		CreatorsFailed: session.failed,
		SampleNewItems: report.sample,
	}

	switch {
	case session.isBlocked():
		result.Success = false
		result.Message = "Sync aborted: platform access blocked (risk control); try again later"
	case session.isCancelled():
		result.Success = true
		result.Cancelled = true
		result.Message = fmt.Sprintf("Sync cancelled after %d/%d creators; %d new videos saved",
			session.completed, session.total, result.ItemsAdded)
	default:
		result.Success = true
		result.Message = fmt.Sprintf("Synced %d/%d creators; %d new videos",
			session.fetched, session.total, result.ItemsAdded)
	}

	if report.failedBatches > 0 {
		e.logger.Warn("some batches failed to write; next run will self-heal",
			"failed", report.failedBatches, "total", report.batches)
	}

	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}
