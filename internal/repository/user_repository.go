package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/waypost/backend/internal/database"
	"github.com/waypost/backend/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, username, bio, avatar_url, password_hash, is_admin, is_banned, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Bio,
		&user.AvatarURL,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsBanned,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, bio, avatar_url, password_hash, is_admin, is_banned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		user.ID,
		user.Email,
		user.Username,
		user.Bio,
		user.AvatarURL,
		user.PasswordHash,
		user.IsAdmin,
		user.IsBanned,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return scanUser(r.db.QueryRow(query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	return scanUser(r.db.QueryRow(query, email))
}

// UpdateProfile updates the mutable profile fields.
func (r *UserRepository) UpdateProfile(user *models.User) error {
	query := `
		UPDATE users
		SET username = $1, bio = $2, avatar_url = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRow(query, user.Username, user.Bio, user.AvatarURL, user.ID).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetBanned flips the ban flag.
func (r *UserRepository) SetBanned(id uuid.UUID, banned bool) error {
	result, err := r.db.Exec(`UPDATE users SET is_banned = $1, updated_at = NOW() WHERE id = $2`, banned, id)
	if err != nil {
		return fmt.Errorf("failed to update ban flag: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// SetAdmin flips the admin flag.
func (r *UserRepository) SetAdmin(id uuid.UUID, isAdmin bool) error {
	result, err := r.db.Exec(`UPDATE users SET is_admin = $1, updated_at = NOW() WHERE id = $2`, isAdmin, id)
	if err != nil {
		return fmt.Errorf("failed to update admin flag: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// CountActiveAdmins counts admins that are not banned. Used by the
// last-admin guard.
func (r *UserRepository) CountActiveAdmins() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE is_admin = true AND is_banned = false`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// RedactBio clears a user's bio.
func (r *UserRepository) RedactBio(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE users SET bio = NULL, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to redact bio: %w", err)
	}
	return nil
}

// ReplaceUsername overwrites a flagged username.
func (r *UserRepository) ReplaceUsername(id uuid.UUID, username string) error {
	_, err := r.db.Exec(`UPDATE users SET username = $1, updated_at = NOW() WHERE id = $2`, username, id)
	if err != nil {
		return fmt.Errorf("failed to replace username: %w", err)
	}
	return nil
}

// Delete deletes a user
func (r *UserRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
