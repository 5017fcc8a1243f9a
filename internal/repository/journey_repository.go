package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/waypost/backend/internal/database"
	"github.com/waypost/backend/internal/models"
)

type JourneyRepository struct {
	db *database.DB
}

func NewJourneyRepository(db *database.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

// Create creates a new journey
func (r *JourneyRepository) Create(journey *models.Journey) error {
	query := `
		INSERT INTO journeys (id, owner_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		journey.ID,
		journey.OwnerID,
		journey.Title,
		journey.Description,
		journey.CreatedAt,
		journey.UpdatedAt,
	).Scan(&journey.CreatedAt, &journey.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create journey: %w", err)
	}
	return nil
}

// GetByID retrieves a journey by ID
func (r *JourneyRepository) GetByID(id uuid.UUID) (*models.Journey, error) {
	query := `
		SELECT id, owner_id, title, description, created_at, updated_at
		FROM journeys
		WHERE id = $1
	`
	journey := &models.Journey{}
	err := r.db.QueryRow(query, id).Scan(
		&journey.ID,
		&journey.OwnerID,
		&journey.Title,
		&journey.Description,
		&journey.CreatedAt,
		&journey.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("journey not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}
	return journey, nil
}

// ListByOwner lists a user's journeys, newest first.
func (r *JourneyRepository) ListByOwner(ownerID uuid.UUID, limit int) ([]models.Journey, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, owner_id, title, description, created_at, updated_at
		FROM journeys
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journeys: %w", err)
	}
	defer rows.Close()

	journeys := []models.Journey{}
	for rows.Next() {
		var j models.Journey
		if err := rows.Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journey: %w", err)
		}
		journeys = append(journeys, j)
	}
	return journeys, nil
}

// Update updates journey title and description.
func (r *JourneyRepository) Update(journey *models.Journey) error {
	query := `
		UPDATE journeys
		SET title = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`
	err := r.db.QueryRow(query, journey.Title, journey.Description, journey.ID).Scan(&journey.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update journey: %w", err)
	}
	return nil
}

// Delete deletes a journey and, via cascade, its posts.
func (r *JourneyRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM journeys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("journey not found")
	}
	return nil
}

// DeleteByOwner removes all journeys owned by a user.
func (r *JourneyRepository) DeleteByOwner(ownerID uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM journeys WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete journeys: %w", err)
	}
	return nil
}
