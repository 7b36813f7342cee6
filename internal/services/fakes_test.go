package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"campuscore/internal/models"
	"campuscore/internal/pdf"
)

// in-memory stand-ins for the Postgres repositories

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]*models.User{}}
}

func (r *fakeUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return errors.New("no such user")
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var out []*models.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		cp := *r.users[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) GetCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *fakeUserRepo) GetCountByRole(role string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return errors.New("no such user")
	}
	u.RefreshToken = &token
	u.RefreshExpiresAt = &expiresAt
	u.RefreshRevoked = false
	return nil
}

func (r *fakeUserRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken && !u.RefreshRevoked {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &newExpiresAt
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ClearRefresh(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.RefreshToken = nil
		u.RefreshExpiresAt = nil
	}
	return nil
}

func (r *fakeUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) MarkEmailVerified(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.EmailVerified = true
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(userID int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) UpdateProfilePicture(userID int, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.ProfilePicture = path
	}
	return nil
}

// fakeOTPStore mirrors the otps table: one row per user, replaced on upsert,
// removed by a conditional delete.
type fakeOTPStore struct {
	mu     sync.Mutex
	nextID int64
	byUser map[int]*models.OTP
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{nextID: 1, byUser: map[int]*models.OTP{}}
}

func (s *fakeOTPStore) Upsert(userID int, code string, issuedAt, expiresAt time.Time) (*models.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := &models.OTP{UserID: userID, Code: code, IssuedAt: issuedAt, ExpiresAt: expiresAt}
	if prev, ok := s.byUser[userID]; ok {
		entry.ID = prev.ID
	} else {
		entry.ID = s.nextID
		s.nextID++
	}
	s.byUser[userID] = entry
	cp := *entry
	return &cp, nil
}

func (s *fakeOTPStore) GetByUserID(userID int) (*models.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (s *fakeOTPStore) ConsumeMatching(userID int, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byUser[userID]
	if !ok || entry.Code != code {
		return false, nil
	}
	delete(s.byUser, userID)
	return true, nil
}

type fakePendingStore struct {
	mu     sync.Mutex
	nextID int64
	byUser map[int]*models.PendingLogin
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{nextID: 1, byUser: map[int]*models.PendingLogin{}}
}

func (s *fakePendingStore) Upsert(userID int, expiresAt time.Time) (*models.PendingLogin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := &models.PendingLogin{UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	if prev, ok := s.byUser[userID]; ok {
		entry.ID = prev.ID
	} else {
		entry.ID = s.nextID
		s.nextID++
	}
	s.byUser[userID] = entry
	cp := *entry
	return &cp, nil
}

func (s *fakePendingStore) GetByUserID(userID int) (*models.PendingLogin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (s *fakePendingStore) Delete(userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}

// fakeEmailService records sent mail and can be told to fail.
type fakeEmailService struct {
	mu        sync.Mutex
	fail      bool
	otpSent   []string // codes, in send order
	credSent  []string // recipient emails
	resetSent []string // reset tokens, in send order
}

func (e *fakeEmailService) SendOTPEmail(email, username, code string, ttlMinutes int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return errors.New("smtp unreachable")
	}
	e.otpSent = append(e.otpSent, code)
	return nil
}

func (e *fakeEmailService) SendCredentialsEmail(email, username, password string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return errors.New("smtp unreachable")
	}
	e.credSent = append(e.credSent, email)
	return nil
}

func (e *fakeEmailService) SendPasswordResetEmail(email, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return errors.New("smtp unreachable")
	}
	e.resetSent = append(e.resetSent, token)
	return nil
}

type fakeResetRepo struct {
	mu      sync.Mutex
	nextID  int
	byToken map[string]*models.PasswordReset
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{nextID: 1, byToken: map[string]*models.PasswordReset{}}
}

func (r *fakeResetRepo) Create(userID int, token string, expiresAt time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr := &models.PasswordReset{ID: r.nextID, UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	r.nextID++
	r.byToken[token] = pr
	return pr.ID, nil
}

func (r *fakeResetRepo) GetByToken(token string) (*models.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr, ok := r.byToken[token]
	if !ok {
		return nil, nil
	}
	cp := *pr
	return &cp, nil
}

func (r *fakeResetRepo) MarkUsed(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pr := range r.byToken {
		if pr.ID == id {
			t := time.Now()
			pr.UsedAt = &t
			return nil
		}
	}
	return errors.New("no such token")
}

type fakeProfileRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{nextID: 1, byID: map[int64]*models.Profile{}}
}

func (r *fakeProfileRepo) Create(p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByID(id int64) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) GetByUserID(userID int) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) Update(p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return errors.New("no such profile")
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

// matchesSearch mirrors the repository's ILIKE filter over the searchable columns.
func matchesSearch(p *models.Profile, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, field := range []string{p.Program, p.Level, p.SubjectTaught, p.Department} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (r *fakeProfileRepo) ListByRole(role, search string, limit, offset int) ([]*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.byID))
	for id, p := range r.byID {
		if p.Role != role || !matchesSearch(p, search) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*models.Profile
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		cp := *r.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProfileRepo) CountByRole(role string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.byID {
		if p.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeProfileRepo) CountAdmittedSince(role, intake string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.byID {
		if p.Role == role && p.Intake == intake {
			n++
		}
	}
	return n, nil
}

func (r *fakeProfileRepo) SetDocumentPath(id int64, column, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return errors.New("no such profile")
	}
	switch column {
	case "profile_image":
		p.ProfileImage = path
	case "admission_letter":
		p.AdmissionLetter = path
	default:
		return errors.New("unknown column")
	}
	return nil
}

// fakeLetterGen avoids touching the filesystem in service tests.
type fakeLetterGen struct {
	admission  int
	employment int
}

func (g *fakeLetterGen) GenerateAdmissionLetter(data pdf.AdmissionLetterData) (string, error) {
	g.admission++
	return fmt.Sprintf("/files/admission_letter_%d.pdf", data.ProfileID), nil
}

func (g *fakeLetterGen) GenerateEmploymentLetter(data pdf.EmploymentLetterData) (string, error) {
	g.employment++
	return fmt.Sprintf("/files/employment_letter_%d.pdf", data.ProfileID), nil
}
