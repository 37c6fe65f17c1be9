package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/shared"
)

// existingKeysChunk keeps IN-clauses under SQLite's default variable limit.
const existingKeysChunk = 500

// VideoRepository persists synced videos. It is the persisted-item store
// consumed by the sync engine's dedup/batch writer: ExistingKeys answers
// the run's single existence check and UpsertBatch performs idempotent
// writes on the (owner_id, platform, video_id) natural key.
type VideoRepository struct {
	db *sql.DB
}

// NewVideoRepository creates a new VideoRepository with the given database connection
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// ExistingKeys reports which of the given video IDs already have rows for
// the owner and platform. One query per chunk of IDs, never one per item.
func (r *VideoRepository) ExistingKeys(ownerID, platform string, videoIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(videoIDs))

	for start := 0; start < len(videoIDs); start += existingKeysChunk {
		end := min(start+existingKeysChunk, len(videoIDs))
		chunk := videoIDs[start:end]

		query := "SELECT video_id FROM videos WHERE owner_id = ? AND platform = ? AND video_id IN ("
		args := make([]any, 0, len(chunk)+2)
		args = append(args, ownerID, platform)
		for i, id := range chunk {
			if i > 0 {
				query += ","
			}
			query += "?"
			args = append(args, id)
		}
		query += ")"

		rows, err := r.db.Query(query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query existing keys: %w", err)
		}

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan video id: %w", err)
			}
			existing[id] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("row iteration error: %w", err)
		}
		rows.Close()
	}

	return existing, nil
}

// UpsertBatch writes all rows in one transaction, inserting new videos and
// refreshing stats (views, comments, title, thumbnail) on existing ones.
// The upsert is keyed on the natural key, so replaying the same batch is a
// no-op apart from stat refreshes.
func (r *VideoRepository) UpsertBatch(videos []*models.Video) error {
	if len(videos) == 0 {
		return nil
	}

	for _, v := range videos {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	// Reserve a sequence block up front; conflicting rows burn their
	// reserved value, which leaves gaps but keeps ordering stable.
	start, err := nextSequenceBlock(r.db, "videos", len(videos))
	if err != nil {
		return fmt.Errorf("failed to reserve sequence block: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO videos (id, sequence, owner_id, platform, video_id, creator_external_id,
			title, thumbnail_url, published_at, views, comments, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, platform, video_id) DO UPDATE SET
			title = excluded.title,
			thumbnail_url = excluded.thumbnail_url,
			views = excluded.views,
			comments = excluded.comments,
			duration = excluded.duration,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, v := range videos {
		if v.RowID == "" {
			v.RowID = shared.GenerateID()
		}
		v.Sequence = start + i
		if v.Created.IsZero() {
			v.Created = now
		}
		v.Updated = now

		_, err := stmt.Exec(
			v.RowID,
			v.Sequence,
			v.OwnerID,
			v.Platform,
			v.VideoID,
			v.CreatorExternalID,
			v.Title,
			v.ThumbnailURL,
			v.PublishedAt,
			v.Views,
			v.Comments,
			v.Duration,
			v.Created,
			v.Updated,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert video %s: %w", v.VideoID, err)
		}
	}

	return tx.Commit()
}

// ListRecent retrieves the owner's most recently published videos.
func (r *VideoRepository) ListRecent(ownerID string, limit int) ([]*models.Video, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, sequence, owner_id, platform, video_id, creator_external_id,
			title, thumbnail_url, published_at, views, comments, duration, created_at, updated_at
		FROM videos
		WHERE owner_id = ?
		ORDER BY published_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		var v models.Video
		err := rows.Scan(
			&v.RowID, &v.Sequence, &v.OwnerID, &v.Platform, &v.VideoID, &v.CreatorExternalID,
			&v.Title, &v.ThumbnailURL, &v.PublishedAt, &v.Views, &v.Comments, &v.Duration,
			&v.Created, &v.Updated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return videos, nil
}

// CountByPlatform returns the number of stored videos per platform for the owner.
func (r *VideoRepository) CountByPlatform(ownerID string) (map[string]int, error) {
	rows, err := r.db.Query("SELECT platform, COUNT(*) FROM videos WHERE owner_id = ? GROUP BY platform", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var platform string
		var n int
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[platform] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// nextSequenceBlock atomically reserves n consecutive sequence values and
// returns the first one.
func nextSequenceBlock(db *sql.DB, table string, n int) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + ? WHERE id = 1", sequenceTable), n); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var last int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return last - n + 1, nil
}
