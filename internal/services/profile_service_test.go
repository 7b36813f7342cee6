package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campuscore/internal/authz"
	"campuscore/internal/models"
)

func newTestProfileService(t *testing.T) (*profileService, *fakeProfileRepo, *fakeUserRepo, *fakeLetterGen) {
	t.Helper()
	profiles := newFakeProfileRepo()
	users := newFakeUserRepo()
	letters := &fakeLetterGen{}
	svc := NewProfileService(profiles, users, letters).(*profileService)
	return svc, profiles, users, letters
}

func TestCreateStudentDefaults(t *testing.T) {
	svc, _, users, _ := newTestProfileService(t)
	u := seedUser(t, users, "s@example.com", authz.RoleStudent)

	today := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return today }

	p := &models.Profile{UserID: u.ID, Role: authz.RoleStudent, Program: "Computer Science"}
	require.NoError(t, svc.Create(p))

	require.NotNil(t, p.DateOfAdmission)
	require.Equal(t, today, *p.DateOfAdmission)
	require.Equal(t, "2026-August", p.Intake)
	require.Equal(t, 10000.00, p.TuitionFee)
}

func TestCreateStaffDefaults(t *testing.T) {
	svc, _, users, _ := newTestProfileService(t)
	teacher := seedUser(t, users, "t@example.com", authz.RoleTeachingStaff)
	clerk := seedUser(t, users, "c@example.com", authz.RoleNonTeachingStaff)

	tp := &models.Profile{UserID: teacher.ID, Role: authz.RoleTeachingStaff}
	require.NoError(t, svc.Create(tp))
	require.Equal(t, "Not Assigned", tp.SubjectTaught)
	require.NotNil(t, tp.DateOfEmployment)

	cp := &models.Profile{UserID: clerk.ID, Role: authz.RoleNonTeachingStaff}
	require.NoError(t, svc.Create(cp))
	require.Equal(t, "Not Assigned", cp.Department)
	require.NotNil(t, cp.DateOfEmployment)
}

func TestCreateRejectsAdminAndUnknownUser(t *testing.T) {
	svc, _, users, _ := newTestProfileService(t)
	u := seedUser(t, users, "a@example.com", authz.RoleAdmin)

	require.Error(t, svc.Create(&models.Profile{UserID: u.ID, Role: authz.RoleAdmin}))
	require.ErrorIs(t, svc.Create(&models.Profile{UserID: 999, Role: authz.RoleStudent}), ErrUserNotFound)
}

func TestCreateRejectsSecondProfile(t *testing.T) {
	svc, _, users, _ := newTestProfileService(t)
	u := seedUser(t, users, "s@example.com", authz.RoleStudent)

	require.NoError(t, svc.Create(&models.Profile{UserID: u.ID, Role: authz.RoleStudent}))
	require.ErrorIs(t, svc.Create(&models.Profile{UserID: u.ID, Role: authz.RoleStudent}), ErrProfileExists)
}

func TestGetByIDEnforcesRouteRole(t *testing.T) {
	svc, _, users, _ := newTestProfileService(t)
	u := seedUser(t, users, "s@example.com", authz.RoleStudent)

	p := &models.Profile{UserID: u.ID, Role: authz.RoleStudent}
	require.NoError(t, svc.Create(p))

	got, err := svc.GetByID(p.ID, authz.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	// the teachers route cannot read a student record
	_, err = svc.GetByID(p.ID, authz.RoleTeachingStaff)
	require.ErrorIs(t, err, ErrRoleMismatch)

	_, err = svc.GetByID(999, authz.RoleStudent)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdatePreservesOwnerAndRole(t *testing.T) {
	svc, profiles, users, _ := newTestProfileService(t)
	u := seedUser(t, users, "s@example.com", authz.RoleStudent)

	p := &models.Profile{UserID: u.ID, Role: authz.RoleStudent, Level: "100"}
	require.NoError(t, svc.Create(p))

	upd := &models.Profile{ID: p.ID, Level: "200", UserID: 777}
	require.NoError(t, svc.Update(upd))

	got, err := profiles.GetByID(p.ID)
	require.NoError(t, err)
	require.Equal(t, "200", got.Level)
	require.Equal(t, u.ID, got.UserID)
	require.Equal(t, authz.RoleStudent, got.Role)
}

func TestListFiltersBySearch(t *testing.T) {
	svc, _, users, _ := newTestProfileService(t)
	cs := seedUser(t, users, "cs@example.com", authz.RoleStudent)
	nursing := seedUser(t, users, "n@example.com", authz.RoleStudent)

	require.NoError(t, svc.Create(&models.Profile{UserID: cs.ID, Role: authz.RoleStudent, Program: "Computer Science"}))
	require.NoError(t, svc.Create(&models.Profile{UserID: nursing.ID, Role: authz.RoleStudent, Program: "Nursing"}))

	// case-insensitive partial match on the searchable fields
	got, err := svc.List(authz.RoleStudent, "nurs", 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Nursing", got[0].Program)

	got, err = svc.List(authz.RoleStudent, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = svc.List(authz.RoleStudent, "physics", 20, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAdmissionLetterStoredOnProfile(t *testing.T) {
	svc, profiles, users, letters := newTestProfileService(t)
	u := seedUser(t, users, "s@example.com", authz.RoleStudent)

	p := &models.Profile{UserID: u.ID, Role: authz.RoleStudent, Program: "Nursing"}
	require.NoError(t, svc.Create(p))

	path, err := svc.GenerateAdmissionLetter(p.ID)
	require.NoError(t, err)
	require.NotEmpty(t, path)
	require.Equal(t, 1, letters.admission)

	got, err := profiles.GetByID(p.ID)
	require.NoError(t, err)
	require.Equal(t, path, got.AdmissionLetter)
}

func TestEmploymentLetterOnlyForStaff(t *testing.T) {
	svc, _, users, letters := newTestProfileService(t)
	student := seedUser(t, users, "s@example.com", authz.RoleStudent)
	teacher := seedUser(t, users, "t@example.com", authz.RoleTeachingStaff)

	sp := &models.Profile{UserID: student.ID, Role: authz.RoleStudent}
	require.NoError(t, svc.Create(sp))
	tp := &models.Profile{UserID: teacher.ID, Role: authz.RoleTeachingStaff, SubjectTaught: "Physics"}
	require.NoError(t, svc.Create(tp))

	_, err := svc.GenerateEmploymentLetter(sp.ID)
	require.ErrorIs(t, err, ErrRoleMismatch)

	path, err := svc.GenerateEmploymentLetter(tp.ID)
	require.NoError(t, err)
	require.NotEmpty(t, path)
	require.Equal(t, 1, letters.employment)
}
