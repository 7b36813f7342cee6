package models

import "time"

// PasswordReset — a single-use reset token mailed to the account owner.
// Redeeming it once sets UsedAt; the row is kept for audit.
type PasswordReset struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether the window to redeem the token has passed.
func (p *PasswordReset) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
