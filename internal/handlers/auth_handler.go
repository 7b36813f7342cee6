package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"campuscore/internal/models"
	"campuscore/internal/services"
)

type AuthHandler struct {
	loginService *services.LoginService
	userService  services.UserService
	resetService services.PasswordResetService
}

func NewAuthHandler(loginService *services.LoginService, userService services.UserService, resetService services.PasswordResetService) *AuthHandler {
	return &AuthHandler{
		loginService: loginService,
		userService:  userService,
		resetService: resetService,
	}
}

// issueSession signs an access token and stores a fresh refresh token.
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User, message string) {
	accessToken, err := newAccessToken(user)
	if err != nil {
		log.Printf("[auth][session] sign access token failed for user_id=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	rt, rtExp, err := newRefreshToken()
	if err != nil {
		log.Printf("[auth][session] new refresh token failed for user_id=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}
	if err := h.userService.UpdateRefresh(user.ID, rt, rtExp); err != nil {
		log.Printf("[auth][session] store refresh token failed for user_id=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"user":    user, // PasswordHash is json:"-", it never leaves
		"tokens": gin.H{
			"access_token":  accessToken,
			"refresh_token": rt,
		},
	})
}

// @Summary      Password login
// @Description  Authenticates by email and password. Staff accounts receive an OTP email and must call /login/verify before a session is granted.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", email)

	res, err := h.loginService.PasswordLogin(email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	case errors.Is(err, services.ErrDeliveryFailed):
		// code is stored, mail did not go out; the client may retry /login/verify once mail recovers
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OTP could not be sent", "otp_required": true})
		return
	case err != nil:
		log.Printf("[auth][login] service error for email=%q: err=%v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if res.OTPRequired {
		log.Printf("[auth][login] staff user_id=%d needs otp took=%s", res.User.ID, time.Since(start).Truncate(time.Millisecond))
		c.JSON(http.StatusOK, gin.H{
			"message":      "OTP sent to your email.",
			"otp_required": true,
		})
		return
	}

	log.Printf("[auth][login] success user_id=%d role=%s took=%s", res.User.ID, res.User.Role, time.Since(start).Truncate(time.Millisecond))
	h.issueSession(c, res.User, "Login successful")
}

// @Summary      Complete staff login
// @Description  Verifies the OTP for a pending staff login and grants the session.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /login/verify [post]
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.loginService.CompleteLogin(strings.TrimSpace(req.Email), req.Code)
	switch {
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrOTPNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid email or OTP."})
		return
	case errors.Is(err, services.ErrNoPendingLogin):
		// session bridge state is gone; restart from the password step
		c.JSON(http.StatusNotFound, gin.H{"error": "Login session expired, please login again."})
		return
	case errors.Is(err, services.ErrCodeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP."})
		return
	case errors.Is(err, services.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP has expired."})
		return
	case err != nil:
		log.Printf("[auth][login-verify] service error: err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	h.issueSession(c, user, "Login successful")
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	old := strings.TrimSpace(req.RefreshToken)
	user, err := h.userService.GetByRefreshToken(old)
	if err != nil || user == nil || user.RefreshToken == nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	// rotate refresh
	newRT, newExp, err := newRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	rotatedUser, err := h.userService.RotateRefresh(old, newRT, newExp)
	if err != nil || rotatedUser == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessToken, err := newAccessToken(rotatedUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": newRT, // rotated value
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.userService.ClearRefresh(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.resetService.RequestReset(req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
		return
	}
	// same answer whether or not the account exists
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset email has been sent."})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.resetService.ResetPassword(req.Token, req.Password)
	switch {
	case errors.Is(err, services.ErrResetTokenInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or already used token."})
		return
	case errors.Is(err, services.ErrResetTokenExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reset token has expired."})
		return
	case errors.Is(err, services.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters."})
		return
	case err != nil:
		log.Printf("[auth][password-reset] service error: err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully."})
}
