package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/uptrack/internal/models"
	"github.com/desertthunder/uptrack/internal/shared"
)

// CreatorRepository implements models.Repository[*models.Creator] and acts
// as the creator-list provider for the sync engine.
type CreatorRepository struct {
	db *sql.DB
}

// NewCreatorRepository creates a new CreatorRepository with the given database connection
func NewCreatorRepository(db *sql.DB) *CreatorRepository {
	return &CreatorRepository{db: db}
}

// Create inserts a new [models.Creator] into the database with generated ID and sequence
func (r *CreatorRepository) Create(creator *models.Creator) error {
	if err := creator.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "creators")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	creator.RowID = shared.GenerateID()
	creator.Sequence = sequence

	query := `
		INSERT INTO creators (id, sequence, owner_id, platform, display_name, external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		creator.RowID,
		creator.Sequence,
		creator.OwnerID,
		creator.Platform,
		creator.DisplayName,
		creator.ExternalID,
		creator.Created,
		creator.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert creator: %w", err)
	}

	return nil
}

// Get retrieves a creator by ID, excluding soft-deleted creators
func (r *CreatorRepository) Get(id string) (*models.Creator, error) {
	query := selectCreators + " WHERE id = ? AND deleted_at IS NULL"
	return scanCreator(r.db.QueryRow(query, id))
}

// GetByExternalID retrieves a creator by owner, platform and external ID
func (r *CreatorRepository) GetByExternalID(ownerID, platform, externalID string) (*models.Creator, error) {
	query := selectCreators + " WHERE owner_id = ? AND platform = ? AND external_id = ? AND deleted_at IS NULL"
	return scanCreator(r.db.QueryRow(query, ownerID, platform, externalID))
}

// Update modifies an existing creator in the database
func (r *CreatorRepository) Update(creator *models.Creator) error {
	if err := creator.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	creator.Updated = now

	query := `
		UPDATE creators
		SET display_name = ?, external_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, creator.DisplayName, creator.ExternalID, now, creator.RowID)
	if err != nil {
		return fmt.Errorf("failed to update creator: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrCreatorNotFound, creator.RowID)
	}

	return nil
}

// Delete soft-deletes a creator by ID. Synced videos are kept.
func (r *CreatorRepository) Delete(id string) error {
	query := `
		UPDATE creators
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete creator: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrCreatorNotFound, id)
	}

	return nil
}

// List retrieves all creators matching the given criteria, excluding soft-deleted creators
func (r *CreatorRepository) List(criteria map[string]any) ([]*models.Creator, error) {
	query := selectCreators + " WHERE deleted_at IS NULL"
	args := []any{}

	if ownerID, ok := criteria["owner_id"].(string); ok && ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}

	if platform, ok := criteria["platform"].(string); ok && platform != "" {
		query += " AND platform = ?"
		args = append(args, platform)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query creators: %w", err)
	}
	defer rows.Close()

	var creators []*models.Creator
	for rows.Next() {
		creator, err := scanCreator(rows)
		if err != nil {
			return nil, err
		}
		creators = append(creators, creator)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return creators, nil
}

// ListTracked retrieves every tracked creator for the given owner.
func (r *CreatorRepository) ListTracked(ownerID string) ([]*models.Creator, error) {
	return r.List(map[string]any{"owner_id": ownerID})
}

const selectCreators = `
	SELECT id, sequence, owner_id, platform, display_name, external_id, created_at, updated_at, deleted_at
	FROM creators
`

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// scanCreator scans one row into a [models.Creator]
func scanCreator(row scanner) (*models.Creator, error) {
	var (
		creator   models.Creator
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&creator.RowID,
		&creator.Sequence,
		&creator.OwnerID,
		&creator.Platform,
		&creator.DisplayName,
		&creator.ExternalID,
		&creator.Created,
		&creator.Updated,
		&deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, shared.ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan creator: %w", err)
	}

	if deletedAt.Valid {
		creator.Deleted = &deletedAt.Time
	}

	return &creator, nil
}
