package tasks

import (
	"fmt"
	"sync"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/platforms"
)

const (
	// defaultBatchSize bounds rows per store write.
	defaultBatchSize = 200

	// sampleCap bounds SyncResult.SampleNewItems, purely to keep the
	// result small for display.
	sampleCap = 50
)

// writeReport summarizes the dedupe/write phase of one run.
type writeReport struct {
	itemsAdded    int
	batches       int
	failedBatches int
	sample        []platforms.FetchedItem
}

// dedupeAndWrite turns the run's accumulated items into the minimal correct
// set of store writes.
//
// Dedup cost is one existence query per platform regardless of creator
// count. All surviving rows are upserted, not just new ones, so stats
// refresh for items seen again the same day; itemsAdded still counts only
// keys the store had never seen. Items from creators no longer in the
// tracked set are dropped before batching. An individual batch failure is
// logged and does not roll back the other batches; the next run's
// existence check self-heals whatever was lost.
func (e *Engine) dedupeAndWrite(
	creators []*models.Creator,
	items []platforms.FetchedItem,
	progress chan<- ProgressUpdate,
) (writeReport, error) {
	report := writeReport{}
	if len(items) == 0 {
		return report, nil
	}

	ownerID := creators[0].OwnerID

	tracked := make(map[string]struct{}, len(creators))
	for _, c := range creators {
		tracked[c.Platform+"/"+c.ExternalID] = struct{}{}
	}

	kept := make([]platforms.FetchedItem, 0, len(items))
	byPlatform := make(map[string][]string)
	for _, item := range items {
		if _, ok := tracked[item.Platform+"/"+item.CreatorExternalID]; !ok {
			e.logger.Debug("dropping item from untracked creator",
				"video", item.VideoID, "creator", item.CreatorExternalID)
			continue
		}
		kept = append(kept, item)
		byPlatform[item.Platform] = append(byPlatform[item.Platform], item.VideoID)
	}
	if len(kept) == 0 {
		return report, nil
	}

	existing := make(map[string]struct{})
	for platform, ids := range byPlatform {
		keys, err := e.store.ExistingKeys(ownerID, platform, ids)
		if err != nil {
			return report, fmt.Errorf("existence check failed: %w", err)
		}
		for id := range keys {
			existing[platform+"/"+id] = struct{}{}
		}
	}

	rows := make([]*models.Video, 0, len(kept))
	seen := make(map[string]struct{}, len(kept))
	for _, item := range kept {
		key := item.Platform + "/" + item.VideoID
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, ok := existing[key]; !ok {
			report.itemsAdded++
			if len(report.sample) < sampleCap {
				report.sample = append(report.sample, item)
			}
		}

		rows = append(rows, &models.Video{
			OwnerID:           ownerID,
			Platform:          item.Platform,
			VideoID:           item.VideoID,
			CreatorExternalID: item.CreatorExternalID,
			Title:             item.Title,
			ThumbnailURL:      item.ThumbnailURL,
			PublishedAt:       item.PublishedAt,
			Views:             item.Views,
			Comments:          item.Comments,
			Duration:          item.Duration,
		})
	}

	batchSize := e.batchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var batches [][]*models.Video
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		batches = append(batches, rows[start:end])
	}
	report.batches = len(batches)

	e.sendProgress(progress, writeStartUpdate(len(batches)))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for i, batch := range batches {
		wg.Add(1)
		go func(n int, batch []*models.Video) {
			defer wg.Done()
			if err := e.store.UpsertBatch(batch); err != nil {
				e.logger.Error("batch write failed", "batch", n, "rows", len(batch), "err", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(i, batch)
	}
	wg.Wait()
	report.failedBatches = failed

	return report, nil
}
