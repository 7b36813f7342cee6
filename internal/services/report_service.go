package services

import (
	"fmt"
	"time"

	"campuscore/internal/authz"
	"campuscore/internal/repositories"
)

// PersonnelSummary — headcount snapshot for the admin dashboard.
type PersonnelSummary struct {
	TotalUsers       int            `json:"total_users"`
	ByRole           map[string]int `json:"by_role"`
	CurrentIntake    string         `json:"current_intake"`
	IntakeAdmissions int            `json:"intake_admissions"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

type ReportService interface {
	PersonnelSummary() (*PersonnelSummary, error)
}

type reportService struct {
	users    repositories.UserRepository
	profiles repositories.ProfileRepository
	now      func() time.Time
}

func NewReportService(users repositories.UserRepository, profiles repositories.ProfileRepository) ReportService {
	return &reportService{users: users, profiles: profiles, now: time.Now}
}

func (s *reportService) PersonnelSummary() (*PersonnelSummary, error) {
	total, err := s.users.GetCount()
	if err != nil {
		return nil, err
	}

	byRole := make(map[string]int, 4)
	for _, role := range []string{authz.RoleAdmin, authz.RoleStudent, authz.RoleTeachingStaff, authz.RoleNonTeachingStaff} {
		c, err := s.users.GetCountByRole(role)
		if err != nil {
			return nil, err
		}
		byRole[role] = c
	}

	now := s.now()
	intake := fmt.Sprintf("%d-%s", now.Year(), now.Month().String())
	admitted, err := s.profiles.CountAdmittedSince(authz.RoleStudent, intake)
	if err != nil {
		return nil, err
	}

	return &PersonnelSummary{
		TotalUsers:       total,
		ByRole:           byRole,
		CurrentIntake:    intake,
		IntakeAdmissions: admitted,
		GeneratedAt:      now,
	}, nil
}
