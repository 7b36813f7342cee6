package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"campuscore/internal/models"
)

type OTPRepository struct {
	DB *sql.DB
}

func NewOTPRepository(db *sql.DB) *OTPRepository {
	return &OTPRepository{DB: db}
}

// Upsert — replace-on-issue. otps.user_id is UNIQUE, so a second issuance for
// the same user overwrites the previous code in one statement; two concurrent
// issuances cannot leave two live rows.
func (r *OTPRepository) Upsert(userID int, code string, issuedAt, expiresAt time.Time) (*models.OTP, error) {
	const q = `
		INSERT INTO otps (user_id, code, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET code = EXCLUDED.code, issued_at = EXCLUDED.issued_at, expires_at = EXCLUDED.expires_at
		RETURNING id
	`
	o := &models.OTP{UserID: userID, Code: code, IssuedAt: issuedAt, ExpiresAt: expiresAt}
	if err := r.DB.QueryRow(q, userID, code, issuedAt, expiresAt).Scan(&o.ID); err != nil {
		return nil, fmt.Errorf("otp upsert: %w", err)
	}
	return o, nil
}

func (r *OTPRepository) GetByUserID(userID int) (*models.OTP, error) {
	const q = `
		SELECT id, user_id, code, issued_at, expires_at
		FROM otps
		WHERE user_id = $1
	`
	o := &models.OTP{}
	err := r.DB.QueryRow(q, userID).Scan(&o.ID, &o.UserID, &o.Code, &o.IssuedAt, &o.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("otp get: %w", err)
	}
	return o, nil
}

// ConsumeMatching — single-use semantics. Deletes the entry only if the stored
// code still matches; returns false when another request consumed (or a re-issue
// replaced) it first. One statement, so two concurrent verifications with the
// same code cannot both succeed.
func (r *OTPRepository) ConsumeMatching(userID int, code string) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM otps WHERE user_id = $1 AND code = $2`, userID, code)
	if err != nil {
		return false, fmt.Errorf("otp consume: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("otp consume rows: %w", err)
	}
	return n > 0, nil
}

func (r *OTPRepository) DeleteByUserID(userID int) error {
	if _, err := r.DB.Exec(`DELETE FROM otps WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("otp delete: %w", err)
	}
	return nil
}
