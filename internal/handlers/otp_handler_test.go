package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"campuscore/internal/models"
	"campuscore/internal/repositories"
	"campuscore/internal/services"
)

// stubUsers resolves a single known account; everything else is unknown.
type stubUsers struct {
	repositories.UserRepository
	user *models.User
}

func (s *stubUsers) GetByEmail(email string) (*models.User, error) {
	if s.user != nil && strings.EqualFold(email, s.user.Email) {
		cp := *s.user
		return &cp, nil
	}
	return nil, nil
}

func (s *stubUsers) MarkEmailVerified(userID int) error {
	if s.user != nil && s.user.ID == userID {
		s.user.EmailVerified = true
	}
	return nil
}

type stubOTPStore struct {
	entry *models.OTP
}

func (s *stubOTPStore) Upsert(userID int, code string, issuedAt, expiresAt time.Time) (*models.OTP, error) {
	s.entry = &models.OTP{ID: 1, UserID: userID, Code: code, IssuedAt: issuedAt, ExpiresAt: expiresAt}
	return s.entry, nil
}

func (s *stubOTPStore) GetByUserID(userID int) (*models.OTP, error) {
	if s.entry == nil || s.entry.UserID != userID {
		return nil, nil
	}
	cp := *s.entry
	return &cp, nil
}

func (s *stubOTPStore) ConsumeMatching(userID int, code string) (bool, error) {
	if s.entry == nil || s.entry.UserID != userID || s.entry.Code != code {
		return false, nil
	}
	s.entry = nil
	return true, nil
}

type stubEmails struct {
	fail bool
	sent int
}

func (e *stubEmails) SendOTPEmail(email, username, code string, ttlMinutes int) error {
	if e.fail {
		return errors.New("smtp unreachable")
	}
	e.sent++
	return nil
}

func (e *stubEmails) SendCredentialsEmail(email, username, password string) error { return nil }
func (e *stubEmails) SendPasswordResetEmail(email, token string) error            { return nil }

// stubUserService only needs the refresh storage to issue a session.
type stubUserService struct {
	services.UserService
}

func (s *stubUserService) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	return nil
}

func newOTPTestRouter(t *testing.T) (*gin.Engine, *services.OTPService, *stubUsers, *stubOTPStore, *stubEmails) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &stubUsers{user: &models.User{ID: 7, Username: "jdoe", Email: "a@example.com", Role: "STUDENT"}}
	store := &stubOTPStore{}
	emails := &stubEmails{}
	svc := services.NewOTPService(users, store, emails, 10*time.Minute)

	h := NewOTPHandler(svc, &stubUserService{})
	r := gin.New()
	r.POST("/otp/request", h.RequestOTP)
	r.POST("/otp/verify", h.VerifyOTP)
	return r, svc, users, store, emails
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestOTPStatusMapping(t *testing.T) {
	r, _, _, store, emails := newOTPTestRouter(t)

	w := postJSON(t, r, "/otp/request", gin.H{"email": "a@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.entry)
	require.Equal(t, 1, emails.sent)

	w = postJSON(t, r, "/otp/request", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, r, "/otp/request", gin.H{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestOTPDeliveryFailureStillStoresCode(t *testing.T) {
	r, _, _, store, emails := newOTPTestRouter(t)
	emails.fail = true

	w := postJSON(t, r, "/otp/request", gin.H{"email": "a@example.com"})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// the entry is in place despite the 500
	require.NotNil(t, store.entry)
	require.Equal(t, 7, store.entry.UserID)
}

func TestVerifyOTPStatusMapping(t *testing.T) {
	r, svc, users, store, _ := newOTPTestRouter(t)

	// no outstanding code
	w := postJSON(t, r, "/otp/verify", gin.H{"email": "a@example.com", "otp": "482913"})
	require.Equal(t, http.StatusNotFound, w.Code)

	// unknown email
	w = postJSON(t, r, "/otp/verify", gin.H{"email": "nobody@example.com", "otp": "482913"})
	require.Equal(t, http.StatusNotFound, w.Code)

	now := time.Now()
	store.entry = &models.OTP{ID: 1, UserID: 7, Code: "482913", IssuedAt: now, ExpiresAt: now.Add(10 * time.Minute)}

	// wrong code
	w = postJSON(t, r, "/otp/verify", gin.H{"email": "a@example.com", "otp": "000000"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// expired code
	svc.Now = func() time.Time { return now.Add(11 * time.Minute) }
	w = postJSON(t, r, "/otp/verify", gin.H{"email": "a@example.com", "otp": "482913"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// fresh again: success carries tokens and consumes the code
	svc.Now = func() time.Time { return now }
	w = postJSON(t, r, "/otp/verify", gin.H{"email": "a@example.com", "otp": "482913"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Tokens.AccessToken)
	require.NotEmpty(t, resp.Tokens.RefreshToken)
	require.Nil(t, store.entry)
	// a consumed code marks the mailbox as verified
	require.True(t, users.user.EmailVerified)

	// single use
	w = postJSON(t, r, "/otp/verify", gin.H{"email": "a@example.com", "otp": "482913"})
	require.Equal(t, http.StatusNotFound, w.Code)
}
