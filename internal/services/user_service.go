package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"campuscore/internal/authz"
	"campuscore/internal/models"
	"campuscore/internal/repositories"
)

type UserService interface {
	CreateUserWithPassword(user *models.User, plainPassword string) error
	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id int) error
	ListUsers(limit, offset int) ([]*models.User, error)
	GetUserCount() (int, error)
	GetUserCountByRole(role string) (int, error)
	UpdateProfilePicture(userID int, path string) error

	// refresh helpers
	UpdateRefresh(userID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(token string) (*models.User, error)
	ClearRefresh(userID int) error
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
	alerts       *TelegramService
}

func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService, alerts *TelegramService) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
		alerts:       alerts,
	}
}

// CreateUserWithPassword hashes the password, creates the account and mails the
// credentials to the new user. The account stays created when the mail cannot
// be sent; that condition is reported as ErrDeliveryFailed.
func (s *userService) CreateUserWithPassword(user *models.User, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return fmt.Errorf("password is required")
	}
	if user.Role == "" {
		user.Role = authz.RoleStudent
	}
	if !authz.IsKnownRole(user.Role) {
		return fmt.Errorf("unknown role %q", user.Role)
	}

	hashedPassword, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword

	if err := s.repo.Create(user); err != nil {
		return err
	}

	s.alerts.NotifyUserCreated(user)

	if s.emailService != nil {
		if err := s.emailService.SendCredentialsEmail(user.Email, user.Username, plainPassword); err != nil {
			// account exists; only the mail failed
			log.Printf("CreateUserWithPassword: failed to send credentials to %s: %v", user.Email, err)
			return ErrDeliveryFailed
		}
	}

	return nil
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *userService) UpdateUser(user *models.User) error {
	if user.Role != "" && !authz.IsKnownRole(user.Role) {
		return fmt.Errorf("unknown role %q", user.Role)
	}
	return s.repo.Update(user)
}

func (s *userService) DeleteUser(id int) error {
	return s.repo.Delete(id)
}

func (s *userService) ListUsers(limit, offset int) ([]*models.User, error) {
	return s.repo.List(limit, offset)
}

func (s *userService) GetUserCount() (int, error) {
	return s.repo.GetCount()
}

func (s *userService) GetUserCountByRole(role string) (int, error) {
	return s.repo.GetCountByRole(role)
}

func (s *userService) UpdateProfilePicture(userID int, path string) error {
	return s.repo.UpdateProfilePicture(userID, path)
}

func (s *userService) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(userID, token, expiresAt)
}

func (s *userService) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(oldToken, newToken, newExpiresAt)
}

func (s *userService) GetByRefreshToken(token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(token)
}

func (s *userService) ClearRefresh(userID int) error {
	return s.repo.ClearRefresh(userID)
}
