package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"campuscore/internal/authz"
	"campuscore/internal/models"
	"campuscore/internal/pdf"
	"campuscore/internal/repositories"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists for user")
	ErrRoleMismatch    = errors.New("profile role does not match route")
)

const defaultTuitionFee = 10000.00

type ProfileService interface {
	Create(p *models.Profile) error
	GetByID(id int64, role string) (*models.Profile, error)
	Update(p *models.Profile) error
	Delete(id int64, role string) error
	List(role, search string, limit, offset int) ([]*models.Profile, error)
	CountByRole(role string) (int, error)
	GenerateAdmissionLetter(id int64) (string, error)
	GenerateEmploymentLetter(id int64) (string, error)
	SetProfileImage(id int64, role, path string) error
}

type profileService struct {
	repo    repositories.ProfileRepository
	users   repositories.UserRepository
	letters pdf.Generator
	now     func() time.Time
}

func NewProfileService(repo repositories.ProfileRepository, users repositories.UserRepository, letters pdf.Generator) ProfileService {
	return &profileService{
		repo:    repo,
		users:   users,
		letters: letters,
		now:     time.Now,
	}
}

// applyDefaults fills the fields the old system defaulted on first save:
// admission/employment dates become today, intake becomes "YYYY-Month",
// tuition gets the standard figure, staff assignments start as "Not Assigned".
func (s *profileService) applyDefaults(p *models.Profile) {
	today := s.now()
	switch p.Role {
	case authz.RoleStudent:
		if p.DateOfAdmission == nil {
			d := today
			p.DateOfAdmission = &d
		}
		if p.Intake == "" {
			p.Intake = fmt.Sprintf("%d-%s", today.Year(), today.Month().String())
		}
		if p.TuitionFee == 0 {
			p.TuitionFee = defaultTuitionFee
		}
	case authz.RoleTeachingStaff:
		if p.SubjectTaught == "" {
			p.SubjectTaught = "Not Assigned"
		}
		if p.DateOfEmployment == nil {
			d := today
			p.DateOfEmployment = &d
		}
	case authz.RoleNonTeachingStaff:
		if p.Department == "" {
			p.Department = "Not Assigned"
		}
		if p.DateOfEmployment == nil {
			d := today
			p.DateOfEmployment = &d
		}
	}
}

func (s *profileService) Create(p *models.Profile) error {
	if !authz.IsKnownRole(p.Role) || p.Role == authz.RoleAdmin {
		return fmt.Errorf("profile role %q is not allowed", p.Role)
	}
	user, err := s.users.GetByID(p.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if existing, err := s.repo.GetByUserID(p.UserID); err != nil {
		return err
	} else if existing != nil {
		return ErrProfileExists
	}

	s.applyDefaults(p)
	if err := s.repo.Create(p); err != nil {
		return err
	}
	log.Printf("[profile][create] id=%d user_id=%d role=%s", p.ID, p.UserID, p.Role)
	return nil
}

// GetByID loads a profile and enforces that it belongs to the role the route
// serves, so /teachers/:id cannot read a student record.
func (s *profileService) GetByID(id int64, role string) (*models.Profile, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	if role != "" && p.Role != role {
		return nil, ErrRoleMismatch
	}
	return p, nil
}

func (s *profileService) Update(p *models.Profile) error {
	existing, err := s.repo.GetByID(p.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProfileNotFound
	}
	if p.Role != "" && p.Role != existing.Role {
		return ErrRoleMismatch
	}
	p.UserID = existing.UserID
	p.Role = existing.Role
	return s.repo.Update(p)
}

func (s *profileService) Delete(id int64, role string) error {
	if _, err := s.GetByID(id, role); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *profileService) List(role, search string, limit, offset int) ([]*models.Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByRole(role, search, limit, offset)
}

func (s *profileService) CountByRole(role string) (int, error) {
	return s.repo.CountByRole(role)
}

func (s *profileService) GenerateAdmissionLetter(id int64) (string, error) {
	p, err := s.GetByID(id, authz.RoleStudent)
	if err != nil {
		return "", err
	}
	user, err := s.users.GetByID(p.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	admitted := s.now()
	if p.DateOfAdmission != nil {
		admitted = *p.DateOfAdmission
	}
	path, err := s.letters.GenerateAdmissionLetter(pdf.AdmissionLetterData{
		StudentName: user.Name,
		ProfileID:   p.ID,
		Program:     p.Program,
		Level:       p.Level,
		Intake:      p.Intake,
		TuitionFee:  p.TuitionFee,
		AdmittedAt:  admitted,
	})
	if err != nil {
		return "", err
	}
	if err := s.repo.SetDocumentPath(p.ID, "admission_letter", path); err != nil {
		return "", err
	}
	return path, nil
}

func (s *profileService) GenerateEmploymentLetter(id int64) (string, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", ErrProfileNotFound
	}
	if p.Role != authz.RoleTeachingStaff && p.Role != authz.RoleNonTeachingStaff {
		return "", ErrRoleMismatch
	}
	user, err := s.users.GetByID(p.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	employed := s.now()
	if p.DateOfEmployment != nil {
		employed = *p.DateOfEmployment
	}
	position := p.SubjectTaught
	if p.Role == authz.RoleNonTeachingStaff {
		position = p.Department
	}
	return s.letters.GenerateEmploymentLetter(pdf.EmploymentLetterData{
		StaffName:  user.Name,
		ProfileID:  p.ID,
		Position:   position,
		Degree:     p.CollegeDegree,
		EmployedAt: employed,
	})
}

func (s *profileService) SetProfileImage(id int64, role, path string) error {
	if _, err := s.GetByID(id, role); err != nil {
		return err
	}
	return s.repo.SetDocumentPath(id, "profile_image", path)
}
