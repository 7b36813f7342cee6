package models

import "time"

type User struct {
	ID             int        `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Role           string     `json:"role"` // ADMIN | STUDENT | TEACHING_STAFF | NON_TEACHING_STAFF
	Contact        string     `json:"contact,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Address        string     `json:"address,omitempty"`
	Nationality    string     `json:"nationality,omitempty"`
	GovernmentID   string     `json:"government_id,omitempty"`
	EmailVerified  bool       `json:"email_verified"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	PasswordHash   string     `json:"-"`

	// refresh-token storage, rotated on every /refresh
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
