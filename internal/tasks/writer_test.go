package tasks

import (
	"fmt"
	"testing"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/platforms"
)

func TestDedupeAndWrite_DropsUntrackedCreators(t *testing.T) {
	creator := biliCreator(1)
	store := newMemStore()
	engine := NewEngine(EngineOpts{Store: store, Now: testNow})

	items := itemsFor(creator, 2)
	orphan := platforms.FetchedItem{
		VideoID:           "orphan-video",
		CreatorExternalID: "9999", // untracked mid-run
		Platform:          models.PlatformBilibili,
		PublishedAt:       testDay,
	}

	report, err := engine.dedupeAndWrite([]*models.Creator{creator}, append(items, orphan), nil)
	if err != nil {
		t.Fatalf("dedupeAndWrite() error = %v", err)
	}

	if report.itemsAdded != 2 {
		t.Errorf("itemsAdded = %d, want 2", report.itemsAdded)
	}
	if _, ok := store.rows["local/"+models.PlatformBilibili+"/orphan-video"]; ok {
		t.Error("orphaned item must be dropped before batching")
	}
}

func TestDedupeAndWrite_BatchPartitioning(t *testing.T) {
	creator := biliCreator(1)
	store := newMemStore()
	engine := NewEngine(EngineOpts{Store: store, BatchSize: 2, Now: testNow})

	report, err := engine.dedupeAndWrite([]*models.Creator{creator}, itemsFor(creator, 5), nil)
	if err != nil {
		t.Fatalf("dedupeAndWrite() error = %v", err)
	}

	if report.batches != 3 {
		t.Errorf("batches = %d, want 3 (5 rows, batch size 2)", report.batches)
	}
	if len(store.batches) != 3 {
		t.Errorf("store saw %d batch calls, want 3", len(store.batches))
	}
	if store.rowCount() != 5 {
		t.Errorf("store rows = %d, want 5", store.rowCount())
	}
}

func TestDedupeAndWrite_PartialBatchFailure(t *testing.T) {
	creator := biliCreator(1)
	store := newMemStore()
	store.failBatch = 2
	engine := NewEngine(EngineOpts{Store: store, BatchSize: 2, Now: testNow})

	report, err := engine.dedupeAndWrite([]*models.Creator{creator}, itemsFor(creator, 6), nil)
	if err != nil {
		t.Fatalf("one failed batch must not fail the write phase: %v", err)
	}

	if report.failedBatches != 1 {
		t.Errorf("failedBatches = %d, want 1", report.failedBatches)
	}
	// The other batches still landed.
	if store.rowCount() != 4 {
		t.Errorf("store rows = %d, want 4 (one batch of 2 lost)", store.rowCount())
	}
}

func TestDedupeAndWrite_SampleCap(t *testing.T) {
	creator := biliCreator(1)
	store := newMemStore()
	engine := NewEngine(EngineOpts{Store: store, Now: testNow})

	report, err := engine.dedupeAndWrite([]*models.Creator{creator}, itemsFor(creator, 80), nil)
	if err != nil {
		t.Fatalf("dedupeAndWrite() error = %v", err)
	}

	if report.itemsAdded != 80 {
		t.Errorf("itemsAdded = %d, want 80", report.itemsAdded)
	}
	if len(report.sample) != sampleCap {
		t.Errorf("sample length = %d, want %d", len(report.sample), sampleCap)
	}
}

func TestDedupeAndWrite_ExistingKeysNotCounted(t *testing.T) {
	creator := biliCreator(1)
	items := itemsFor(creator, 3)

	store := newMemStore()
	// Pre-seed one of the keys.
	store.rows["local/"+models.PlatformBilibili+"/"+items[1].VideoID] = &models.Video{
		OwnerID:  "local",
		Platform: models.PlatformBilibili,
		VideoID:  items[1].VideoID,
	}

	engine := NewEngine(EngineOpts{Store: store, Now: testNow})

	report, err := engine.dedupeAndWrite([]*models.Creator{creator}, items, nil)
	if err != nil {
		t.Fatalf("dedupeAndWrite() error = %v", err)
	}

	if report.itemsAdded != 2 {
		t.Errorf("itemsAdded = %d, want 2 (pre-existing key excluded)", report.itemsAdded)
	}
	// All three rows are still upserted so stats refresh.
	if store.rowCount() != 3 {
		t.Errorf("store rows = %d, want 3", store.rowCount())
	}
}

func TestDedupeAndWrite_DeduplicatesWithinRun(t *testing.T) {
	creator := biliCreator(1)
	item := itemsFor(creator, 1)[0]

	store := newMemStore()
	engine := NewEngine(EngineOpts{Store: store, Now: testNow})

	report, err := engine.dedupeAndWrite([]*models.Creator{creator},
		[]platforms.FetchedItem{item, item, item}, nil)
	if err != nil {
		t.Fatalf("dedupeAndWrite() error = %v", err)
	}

	if report.itemsAdded != 1 {
		t.Errorf("itemsAdded = %d, want 1 for a triplicated item", report.itemsAdded)
	}
	if store.rowCount() != 1 {
		t.Errorf("store rows = %d, want 1", store.rowCount())
	}
}

func TestDedupeAndWrite_ExistenceCheckError(t *testing.T) {
	creator := biliCreator(1)
	store := newMemStore()
	store.existingErr = fmt.Errorf("database is locked")
	engine := NewEngine(EngineOpts{Store: store, Now: testNow})

	_, err := engine.dedupeAndWrite([]*models.Creator{creator}, itemsFor(creator, 2), nil)
	if err == nil {
		t.Fatal("a failed existence check must surface an error")
	}
}
