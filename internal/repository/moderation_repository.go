package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/waypost/backend/internal/database"
	"github.com/waypost/backend/internal/models"
)

type ModerationRepository struct {
	db *database.DB
}

func NewModerationRepository(db *database.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// Insert appends a new entry to the review queue.
func (r *ModerationRepository) Insert(entry *models.ModerationLogEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid moderation log entry: %w", err)
	}

	query := `
		INSERT INTO moderation_log (id, user_id, content_type, related_entity_id, flag_reason, content_preview, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(
		query,
		entry.ID,
		entry.UserID,
		entry.ContentType,
		entry.RelatedEntityID,
		entry.FlagReason,
		entry.ContentPreview,
		entry.Status,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert moderation log entry: %w", err)
	}
	return nil
}

// GetByID retrieves a single queue entry.
func (r *ModerationRepository) GetByID(id uuid.UUID) (*models.ModerationLogEntry, error) {
	query := `
		SELECT id, user_id, content_type, related_entity_id, flag_reason, content_preview, status, created_at, reviewed_at, reviewed_by
		FROM moderation_log
		WHERE id = $1
	`
	entry := &models.ModerationLogEntry{}
	err := r.db.QueryRow(query, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ContentType,
		&entry.RelatedEntityID,
		&entry.FlagReason,
		&entry.ContentPreview,
		&entry.Status,
		&entry.CreatedAt,
		&entry.ReviewedAt,
		&entry.ReviewedBy,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("moderation log entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation log entry: %w", err)
	}
	return entry, nil
}

// List returns queue entries, newest first, optionally filtered by status.
func (r *ModerationRepository) List(status models.ModerationStatus, limit, offset int) ([]models.ModerationLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, user_id, content_type, related_entity_id, flag_reason, content_preview, status, created_at, reviewed_at, reviewed_by
		FROM moderation_log
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation log: %w", err)
	}
	defer rows.Close()

	entries := []models.ModerationLogEntry{}
	for rows.Next() {
		var entry models.ModerationLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ContentType,
			&entry.RelatedEntityID,
			&entry.FlagReason,
			&entry.ContentPreview,
			&entry.Status,
			&entry.CreatedAt,
			&entry.ReviewedAt,
			&entry.ReviewedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan moderation log entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Review resolves a single entry unconditionally and stamps the reviewer.
func (r *ModerationRepository) Review(id uuid.UUID, status models.ModerationStatus, reviewedBy uuid.UUID) error {
	query := `
		UPDATE moderation_log
		SET status = $1, reviewed_at = $2, reviewed_by = $3
		WHERE id = $4
	`
	result, err := r.db.Exec(query, status, time.Now(), reviewedBy, id)
	if err != nil {
		return fmt.Errorf("failed to update moderation log entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("moderation log entry not found")
	}
	return nil
}

// BulkReview resolves a batch of entries, but only those still pending: the
// status predicate keeps a concurrent reviewer from clobbering entries that
// were already resolved. Returns the number of entries updated.
func (r *ModerationRepository) BulkReview(ids []uuid.UUID, status models.ModerationStatus, reviewedBy uuid.UUID) (int64, error) {
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return 0, nil
	}

	query := `
		UPDATE moderation_log
		SET status = $1, reviewed_at = $2, reviewed_by = $3
		WHERE id = ANY($4) AND status = 'pending'
	`
	result, err := r.db.Exec(query, status, time.Now(), reviewedBy, pq.Array(unique))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update moderation log: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

// MarkActionTaken transitions an entry after a successful enforcement side
// effect. Guarded by the pending predicate like bulk updates.
func (r *ModerationRepository) MarkActionTaken(id uuid.UUID, reviewedBy uuid.UUID) error {
	query := `
		UPDATE moderation_log
		SET status = 'action_taken', reviewed_at = $1, reviewed_by = $2
		WHERE id = $3 AND status = 'pending'
	`
	result, err := r.db.Exec(query, time.Now(), reviewedBy, id)
	if err != nil {
		return fmt.Errorf("failed to mark action taken: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("moderation log entry not pending")
	}
	return nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
