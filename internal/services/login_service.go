package services

import (
	"errors"
	"log"
	"time"

	"campuscore/internal/authz"
	"campuscore/internal/models"
	"campuscore/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoPendingLogin     = errors.New("no pending login")
)

const defaultPendingTTL = 10 * time.Minute

// PendingLoginStore is what the bridge needs from the pending_logins table.
// Satisfied by repositories.PendingLoginRepository.
type PendingLoginStore interface {
	Upsert(userID int, expiresAt time.Time) (*models.PendingLogin, error)
	GetByUserID(userID int) (*models.PendingLogin, error)
	Delete(userID int) error
}

// LoginResult — outcome of the password step. For staff accounts OTPRequired is
// set and no session may be granted until CompleteLogin succeeds.
type LoginResult struct {
	User        *models.User
	OTPRequired bool
}

// LoginService drives the password login and the staff OTP bridge:
// password ok + staff -> pending marker + OTP issued; the session is granted
// only after the code verifies while the marker is still alive.
type LoginService struct {
	Users      repositories.UserRepository
	Auth       AuthService
	OTP        *OTPService
	Pending    PendingLoginStore
	PendingTTL time.Duration
	Alerts     *TelegramService // optional
	Now        func() time.Time
}

func NewLoginService(users repositories.UserRepository, auth AuthService, otp *OTPService, pending PendingLoginStore, alerts *TelegramService) *LoginService {
	return &LoginService{
		Users:      users,
		Auth:       auth,
		OTP:        otp,
		Pending:    pending,
		PendingTTL: defaultPendingTTL,
		Alerts:     alerts,
		Now:        time.Now,
	}
}

// PasswordLogin checks credentials. Non-staff users are fully authenticated on
// success. Staff users get a pending marker and an OTP email instead; a
// delivery failure still leaves the marker and the stored code in place and is
// reported alongside the result.
func (s *LoginService) PasswordLogin(email, password string) (*LoginResult, error) {
	user, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if !s.Auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !authz.IsStaff(user.Role) {
		return &LoginResult{User: user}, nil
	}

	if _, err := s.Pending.Upsert(user.ID, s.Now().Add(s.PendingTTL)); err != nil {
		return nil, err
	}
	res := &LoginResult{User: user, OTPRequired: true}
	if err := s.OTP.IssueForUser(user); err != nil {
		return res, err
	}
	log.Printf("[login][password] staff user_id=%d pending otp", user.ID)
	return res, nil
}

// CompleteLogin finishes the staff bridge. A missing or expired pending marker
// means the login must be restarted from the password step; a wrong or expired
// code leaves the marker in place so the user may retry.
func (s *LoginService) CompleteLogin(email, code string) (*models.User, error) {
	user, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	pending, err := s.Pending.GetByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ErrNoPendingLogin
	}
	if !s.Now().Before(pending.ExpiresAt) {
		_ = s.Pending.Delete(user.ID)
		return nil, ErrNoPendingLogin
	}

	if err := s.OTP.VerifyForUser(user.ID, code); err != nil {
		return nil, err
	}

	if err := s.Pending.Delete(user.ID); err != nil {
		return nil, err
	}
	log.Printf("[login][complete] staff user_id=%d fully authenticated", user.ID)

	s.Alerts.NotifyStaffLogin(user)
	return user, nil
}
