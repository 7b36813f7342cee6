package models

import "time"

// OTP — a single pending login challenge. The user_id column is UNIQUE,
// so there is at most one outstanding code per user; re-issuing replaces it.
type OTP struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Code      string    `json:"-"` // 6-digit, zero-padded
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Valid reports whether the code can still be accepted at the given instant.
func (o *OTP) Valid(now time.Time) bool {
	return now.Before(o.ExpiresAt)
}
