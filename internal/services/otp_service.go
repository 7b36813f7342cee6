package services

import (
	"errors"
	"log"
	"time"

	"campuscore/internal/models"
	"campuscore/internal/repositories"
	"campuscore/internal/utils"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrOTPNotFound    = errors.New("otp not found")
	ErrCodeMismatch   = errors.New("code mismatch")
	ErrCodeExpired    = errors.New("code expired")
	ErrDeliveryFailed = errors.New("otp delivery failed")
)

const defaultOTPTTL = 10 * time.Minute

// OTPStore is what the service needs from the otps table. Satisfied by
// repositories.OTPRepository.
type OTPStore interface {
	Upsert(userID int, code string, issuedAt, expiresAt time.Time) (*models.OTP, error)
	GetByUserID(userID int) (*models.OTP, error)
	ConsumeMatching(userID int, code string) (bool, error)
}

// OTPService issues and verifies one-time login codes. A user has at most one
// outstanding code; issuing again replaces it, verifying consumes it.
type OTPService struct {
	Users  repositories.UserRepository
	Store  OTPStore
	Emails EmailService
	TTL    time.Duration
	Now    func() time.Time // overridable in tests
}

func NewOTPService(users repositories.UserRepository, store OTPStore, emails EmailService, ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	return &OTPService{
		Users:  users,
		Store:  store,
		Emails: emails,
		TTL:    ttl,
		Now:    time.Now,
	}
}

// Issue generates a fresh code for the user behind email, stores it (replacing
// any previous one) and mails it. The code is durably stored before dispatch is
// attempted: a delivery failure is reported as ErrDeliveryFailed but leaves the
// entry usable.
func (s *OTPService) Issue(email string) (*models.User, error) {
	user, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.IssueForUser(user); err != nil {
		return user, err
	}
	return user, nil
}

func (s *OTPService) IssueForUser(user *models.User) error {
	code, err := utils.NewOTPCode()
	if err != nil {
		return err
	}
	now := s.Now()
	if _, err := s.Store.Upsert(user.ID, code, now, now.Add(s.TTL)); err != nil {
		return err
	}
	log.Printf("[otp][issue] user_id=%d expires_in=%s", user.ID, s.TTL)

	if err := s.Emails.SendOTPEmail(user.Email, user.Username, code, int(s.TTL.Minutes())); err != nil {
		// the entry stays valid; the caller is told delivery failed
		log.Printf("[otp][issue] delivery failed for user_id=%d: %v", user.ID, err)
		return ErrDeliveryFailed
	}
	return nil
}

// Verify checks the submitted code for the user behind email and, on success,
// consumes the entry (single use) and returns the user for a session grant.
// Check order is fixed: existence, then exact code match, then expiry.
func (s *OTPService) Verify(email, code string) (*models.User, error) {
	user, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.VerifyForUser(user.ID, code); err != nil {
		return nil, err
	}
	// a consumed code proves the mailbox is reachable
	if !user.EmailVerified {
		if err := s.Users.MarkEmailVerified(user.ID); err != nil {
			log.Printf("[otp][verify] mark email verified failed for user_id=%d: %v", user.ID, err)
		} else {
			user.EmailVerified = true
		}
	}
	return user, nil
}

func (s *OTPService) VerifyForUser(userID int, code string) error {
	entry, err := s.Store.GetByUserID(userID)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrOTPNotFound
	}
	// exact byte comparison, no trimming or zero-stripping
	if entry.Code != code {
		return ErrCodeMismatch
	}
	if !entry.Valid(s.Now()) {
		return ErrCodeExpired
	}
	// conditional delete: loses the race against a concurrent verify or re-issue
	ok, err := s.Store.ConsumeMatching(userID, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOTPNotFound
	}
	log.Printf("[otp][verify] OK user_id=%d", userID)
	return nil
}
