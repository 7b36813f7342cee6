package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"campuscore/internal/models"
)

type PasswordResetRepository interface {
	Create(userID int, token string, expiresAt time.Time) (int, error)
	GetByToken(token string) (*models.PasswordReset, error)
	MarkUsed(id int) error
}

type passwordResetRepository struct {
	DB *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{DB: db}
}

func (r *passwordResetRepository) Create(userID int, token string, expiresAt time.Time) (int, error) {
	const q = `
		INSERT INTO password_resets (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`
	var id int
	if err := r.DB.QueryRow(q, userID, token, expiresAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("password reset create: %w", err)
	}
	return id, nil
}

func (r *passwordResetRepository) GetByToken(token string) (*models.PasswordReset, error) {
	const q = `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM password_resets
		WHERE token = $1
	`
	pr := &models.PasswordReset{}
	var usedAt sql.NullTime
	err := r.DB.QueryRow(q, token).Scan(&pr.ID, &pr.UserID, &pr.Token, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("password reset get: %w", err)
	}
	if usedAt.Valid {
		t := usedAt.Time
		pr.UsedAt = &t
	}
	return pr, nil
}

func (r *passwordResetRepository) MarkUsed(id int) error {
	_, err := r.DB.Exec(`UPDATE password_resets SET used_at=NOW() WHERE id=$1`, id)
	return err
}
