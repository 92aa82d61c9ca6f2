package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

// MutationLogRepository records bulk mutation outcomes. It implements tasks.Recorder.
type MutationLogRepository struct {
	db *sql.DB
}

// NewMutationLogRepository creates a new [MutationLogRepository] with the given database connection
func NewMutationLogRepository(db *sql.DB) *MutationLogRepository {
	return &MutationLogRepository{db: db}
}

// RecordMutation inserts rec, generating an ID and timestamp when missing.
func (r *MutationLogRepository) RecordMutation(ctx context.Context, rec models.MutationRecord) error {
	if rec.PlaylistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrInvalidInput)
	}
	if rec.ID == "" {
		rec.ID = shared.GenerateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO mutation_log (id, playlist_id, op, requested, applied, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.PlaylistID, rec.Op.String(), rec.Requested, rec.Applied, rec.Error, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record mutation: %w", err)
	}
	return nil
}

// Recent returns the newest records first. An empty playlistID lists every playlist.
func (r *MutationLogRepository) Recent(playlistID string, limit int) ([]models.MutationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, playlist_id, op, requested, applied, error, created_at
		FROM mutation_log
		WHERE (? = '' OR playlist_id = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, playlistID, playlistID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mutation log: %w", err)
	}
	defer rows.Close()

	var records []models.MutationRecord
	for rows.Next() {
		var (
			rec models.MutationRecord
			op  string
		)
		if err := rows.Scan(&rec.ID, &rec.PlaylistID, &op, &rec.Requested, &rec.Applied, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mutation record: %w", err)
		}
		parsed, ok := models.ParseMutationOp(op)
		if !ok {
			return nil, fmt.Errorf("%w: unknown mutation op %q", shared.ErrMalformedResponse, op)
		}
		rec.Op = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mutation log: %w", err)
	}
	return records, nil
}
