package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/waypost/backend/internal/database"
	"github.com/waypost/backend/internal/models"
)

type PostRepository struct {
	db *database.DB
}

func NewPostRepository(db *database.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post
func (r *PostRepository) Create(post *models.Post) error {
	content, err := json.Marshal(post.Content)
	if err != nil {
		return fmt.Errorf("failed to encode post content: %w", err)
	}

	query := `
		INSERT INTO posts (id, journey_id, author_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRow(
		query,
		post.ID,
		post.JourneyID,
		post.AuthorID,
		post.Title,
		content,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(id uuid.UUID) (*models.Post, error) {
	query := `
		SELECT id, journey_id, author_id, title, content, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	post := &models.Post{}
	var content []byte
	err := r.db.QueryRow(query, id).Scan(
		&post.ID,
		&post.JourneyID,
		&post.AuthorID,
		&post.Title,
		&content,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if err := json.Unmarshal(content, &post.Content); err != nil {
		return nil, fmt.Errorf("failed to decode post content: %w", err)
	}
	return post, nil
}

// ListByJourney lists posts in a journey, newest first.
func (r *PostRepository) ListByJourney(journeyID uuid.UUID, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, journey_id, author_id, title, content, created_at, updated_at
		FROM posts
		WHERE journey_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(query, journeyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		var content []byte
		if err := rows.Scan(&p.ID, &p.JourneyID, &p.AuthorID, &p.Title, &content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		if err := json.Unmarshal(content, &p.Content); err != nil {
			return nil, fmt.Errorf("failed to decode post content: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// Update updates post title and content.
func (r *PostRepository) Update(post *models.Post) error {
	content, err := json.Marshal(post.Content)
	if err != nil {
		return fmt.Errorf("failed to encode post content: %w", err)
	}

	query := `
		UPDATE posts
		SET title = $1, content = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`
	err = r.db.QueryRow(query, post.Title, content, post.ID).Scan(&post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// Delete deletes a post
func (r *PostRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// DeleteByAuthor removes all posts written by a user.
func (r *PostRepository) DeleteByAuthor(authorID uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM posts WHERE author_id = $1`, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}
	return nil
}
