package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// In-memory SQLite scopes the database to a single connection.
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	first, err := NextSequence(db, "creators")
	if err != nil {
		t.Fatalf("NextSequence() error = %v", err)
	}
	second, err := NextSequence(db, "creators")
	if err != nil {
		t.Fatalf("NextSequence() error = %v", err)
	}

	if second != first+1 {
		t.Errorf("sequence did not increment: %d then %d", first, second)
	}
}

func TestCreatorRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCreatorRepository(db)

	creator := models.NewCreator("local", models.PlatformBilibili, "some uploader", "12345")
	if err := repo.Create(creator); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if creator.RowID == "" {
		t.Error("Create() should assign an ID")
	}
	if creator.Sequence == 0 {
		t.Error("Create() should assign a sequence")
	}

	got, err := repo.Get(creator.RowID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.DisplayName != "some uploader" || got.ExternalID != "12345" {
		t.Errorf("Get() = %+v", got)
	}

	got.DisplayName = "renamed"
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err = repo.Get(creator.RowID)
	if err != nil {
		t.Fatalf("Get() after update error = %v", err)
	}
	if got.DisplayName != "renamed" {
		t.Errorf("DisplayName = %s, want renamed", got.DisplayName)
	}

	if err := repo.Delete(creator.RowID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(creator.RowID); err == nil {
		t.Error("Get() should not return a soft-deleted creator")
	}
	if err := repo.Delete(creator.RowID); err == nil {
		t.Error("double Delete() should fail")
	}
}

func TestCreatorRepository_Validation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCreatorRepository(db)

	if err := repo.Create(models.NewCreator("local", "myspace", "x", "1")); err == nil {
		t.Error("Create() should reject an unknown platform")
	}
	if err := repo.Create(models.NewCreator("", models.PlatformBilibili, "x", "1")); err == nil {
		t.Error("Create() should reject a missing owner")
	}
	if err := repo.Create(models.NewCreator("local", models.PlatformBilibili, "x", "")); err == nil {
		t.Error("Create() should reject a missing external ID")
	}
}

func TestCreatorRepository_ListTracked(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCreatorRepository(db)

	seed := []*models.Creator{
		models.NewCreator("local", models.PlatformBilibili, "a", "100"),
		models.NewCreator("local", models.PlatformYouTube, "b", "UC01"),
		models.NewCreator("other", models.PlatformBilibili, "c", "200"),
	}
	for _, c := range seed {
		if err := repo.Create(c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	// Soft-deleted creators are excluded.
	if err := repo.Delete(seed[1].RowID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	tracked, err := repo.ListTracked("local")
	if err != nil {
		t.Fatalf("ListTracked() error = %v", err)
	}
	if len(tracked) != 1 {
		t.Fatalf("ListTracked() = %d creators, want 1", len(tracked))
	}
	if tracked[0].ExternalID != "100" {
		t.Errorf("ListTracked()[0].ExternalID = %s", tracked[0].ExternalID)
	}

	byPlatform, err := repo.List(map[string]any{"owner_id": "other", "platform": models.PlatformBilibili})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(byPlatform) != 1 || byPlatform[0].DisplayName != "c" {
		t.Errorf("List() by platform = %+v", byPlatform)
	}
}

func TestCreatorRepository_GetByExternalID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCreatorRepository(db)

	creator := models.NewCreator("local", models.PlatformYouTube, "channel", "UC99")
	if err := repo.Create(creator); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByExternalID("local", models.PlatformYouTube, "UC99")
	if err != nil {
		t.Fatalf("GetByExternalID() error = %v", err)
	}
	if got.RowID != creator.RowID {
		t.Errorf("GetByExternalID() = %s, want %s", got.RowID, creator.RowID)
	}

	if _, err := repo.GetByExternalID("local", models.PlatformBilibili, "UC99"); err == nil {
		t.Error("GetByExternalID() should miss on the wrong platform")
	}
}

func testVideo(videoID string, views int64) *models.Video {
	return &models.Video{
		OwnerID:           "local",
		Platform:          models.PlatformBilibili,
		VideoID:           videoID,
		CreatorExternalID: "12345",
		Title:             "upload " + videoID,
		PublishedAt:       time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC),
		Views:             views,
	}
}

func TestVideoRepository_UpsertBatchAndExistingKeys(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVideoRepository(db)

	batch := []*models.Video{testVideo("BV1", 10), testVideo("BV2", 20)}
	if err := repo.UpsertBatch(batch); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	existing, err := repo.ExistingKeys("local", models.PlatformBilibili, []string{"BV1", "BV2", "BV3"})
	if err != nil {
		t.Fatalf("ExistingKeys() error = %v", err)
	}
	if len(existing) != 2 {
		t.Errorf("ExistingKeys() = %d keys, want 2", len(existing))
	}
	if _, ok := existing["BV3"]; ok {
		t.Error("ExistingKeys() reported an absent key")
	}

	// Re-upserting refreshes stats without creating a second row.
	if err := repo.UpsertBatch([]*models.Video{testVideo("BV1", 999)}); err != nil {
		t.Fatalf("second UpsertBatch() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM videos WHERE video_id = 'BV1'").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 1 {
		t.Errorf("row count for BV1 = %d, want 1", count)
	}

	var views int64
	if err := db.QueryRow("SELECT views FROM videos WHERE video_id = 'BV1'").Scan(&views); err != nil {
		t.Fatalf("views query error = %v", err)
	}
	if views != 999 {
		t.Errorf("views = %d, want 999 after upsert refresh", views)
	}
}

func TestVideoRepository_ExistingKeysScopedByOwnerAndPlatform(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVideoRepository(db)

	if err := repo.UpsertBatch([]*models.Video{testVideo("BV1", 1)}); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	other, err := repo.ExistingKeys("someone-else", models.PlatformBilibili, []string{"BV1"})
	if err != nil {
		t.Fatalf("ExistingKeys() error = %v", err)
	}
	if len(other) != 0 {
		t.Error("ExistingKeys() leaked rows across owners")
	}

	wrongPlatform, err := repo.ExistingKeys("local", models.PlatformYouTube, []string{"BV1"})
	if err != nil {
		t.Fatalf("ExistingKeys() error = %v", err)
	}
	if len(wrongPlatform) != 0 {
		t.Error("ExistingKeys() leaked rows across platforms")
	}
}

func TestVideoRepository_ListRecentAndCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVideoRepository(db)

	older := testVideo("BV-old", 5)
	older.PublishedAt = older.PublishedAt.Add(-48 * time.Hour)
	newer := testVideo("BV-new", 6)

	yt := testVideo("yt-1", 7)
	yt.Platform = models.PlatformYouTube

	if err := repo.UpsertBatch([]*models.Video{older, newer, yt}); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	recent, err := repo.ListRecent("local", 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("ListRecent() = %d rows, want 2", len(recent))
	}
	if recent[0].VideoID == "BV-old" {
		t.Error("ListRecent() should order by published_at descending")
	}

	counts, err := repo.CountByPlatform("local")
	if err != nil {
		t.Fatalf("CountByPlatform() error = %v", err)
	}
	if counts[models.PlatformBilibili] != 2 || counts[models.PlatformYouTube] != 1 {
		t.Errorf("CountByPlatform() = %v", counts)
	}
}

func TestVideoRepository_EmptyBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVideoRepository(db)

	if err := repo.UpsertBatch(nil); err != nil {
		t.Errorf("UpsertBatch(nil) error = %v", err)
	}
}

func TestStateRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStateRepository(db)

	last, err := repo.LastRunAt("local")
	if err != nil {
		t.Fatalf("LastRunAt() error = %v", err)
	}
	if !last.IsZero() {
		t.Errorf("LastRunAt() before any run = %v, want zero", last)
	}

	first := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	if err := repo.MarkSynced("local", first); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}

	second := first.Add(6 * time.Hour)
	if err := repo.MarkSynced("local", second); err != nil {
		t.Fatalf("second MarkSynced() error = %v", err)
	}

	last, err = repo.LastRunAt("local")
	if err != nil {
		t.Fatalf("LastRunAt() error = %v", err)
	}
	if !last.Equal(second) {
		t.Errorf("LastRunAt() = %v, want %v", last, second)
	}
}
