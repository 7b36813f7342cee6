package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"campuscore/internal/repositories"
	"campuscore/internal/utils"
)

var (
	ErrResetTokenInvalid = errors.New("reset token invalid")
	ErrResetTokenExpired = errors.New("reset token expired")
	ErrPasswordTooShort  = errors.New("password too short")
)

const (
	resetTokenTTL     = time.Hour
	minPasswordLength = 6
)

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(token, newPassword string) error
}

type passwordResetService struct {
	users  repositories.UserRepository
	repo   repositories.PasswordResetRepository
	emails EmailService
	auth   AuthService
	now    func() time.Time
}

func NewPasswordResetService(users repositories.UserRepository, repo repositories.PasswordResetRepository, emails EmailService, auth AuthService) PasswordResetService {
	return &passwordResetService{
		users:  users,
		repo:   repo,
		emails: emails,
		auth:   auth,
		now:    time.Now,
	}
}

// RequestReset mails a fresh reset token to the account behind email. The
// answer is the same whether or not the account exists, so the endpoint cannot
// be used to probe for registered addresses.
func (s *passwordResetService) RequestReset(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		log.Printf("[reset][request] no account for email=%q", email)
		return nil
	}

	token, err := utils.NewRefreshToken(32)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(user.ID, token, s.now().Add(resetTokenTTL)); err != nil {
		return err
	}
	log.Printf("[reset][request] token issued for user_id=%d expires_in=%s", user.ID, resetTokenTTL)

	if s.emails != nil {
		// token is stored; a lost mail only means the user requests again
		if err := s.emails.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Printf("[reset][request] delivery failed for user_id=%d: %v", user.ID, err)
		}
	}
	return nil
}

// ResetPassword redeems a token. An unknown or already used token reads as
// invalid; expiry is reported separately so the user knows to request again.
func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" {
		return ErrResetTokenInvalid
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	pr, err := s.repo.GetByToken(token)
	if err != nil {
		return err
	}
	if pr == nil || pr.UsedAt != nil {
		return ErrResetTokenInvalid
	}
	if pr.Expired(s.now()) {
		return ErrResetTokenExpired
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(pr.UserID, hash); err != nil {
		return err
	}
	if err := s.repo.MarkUsed(pr.ID); err != nil {
		return err
	}
	log.Printf("[reset][redeem] password changed for user_id=%d", pr.UserID)
	return nil
}
