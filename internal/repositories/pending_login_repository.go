package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"campuscore/internal/models"
)

// PendingLoginRepository keeps the "password verified, OTP outstanding" markers
// for the staff login bridge. One marker per user, replaced on every password login.
type PendingLoginRepository struct {
	DB *sql.DB
}

func NewPendingLoginRepository(db *sql.DB) *PendingLoginRepository {
	return &PendingLoginRepository{DB: db}
}

func (r *PendingLoginRepository) Upsert(userID int, expiresAt time.Time) (*models.PendingLogin, error) {
	const q = `
		INSERT INTO pending_logins (user_id, created_at, expires_at)
		VALUES ($1, NOW(), $2)
		ON CONFLICT (user_id) DO UPDATE
		SET created_at = NOW(), expires_at = EXCLUDED.expires_at
		RETURNING id, created_at
	`
	p := &models.PendingLogin{UserID: userID, ExpiresAt: expiresAt}
	if err := r.DB.QueryRow(q, userID, expiresAt).Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("pending login upsert: %w", err)
	}
	return p, nil
}

func (r *PendingLoginRepository) GetByUserID(userID int) (*models.PendingLogin, error) {
	const q = `
		SELECT id, user_id, created_at, expires_at
		FROM pending_logins
		WHERE user_id = $1
	`
	p := &models.PendingLogin{}
	err := r.DB.QueryRow(q, userID).Scan(&p.ID, &p.UserID, &p.CreatedAt, &p.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pending login get: %w", err)
	}
	return p, nil
}

func (r *PendingLoginRepository) Delete(userID int) error {
	if _, err := r.DB.Exec(`DELETE FROM pending_logins WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("pending login delete: %w", err)
	}
	return nil
}
