package models

import "time"

// PendingLogin — server-side marker set after a staff password check passes
// but before the OTP step completes. Keyed by user, short-lived.
type PendingLogin struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
