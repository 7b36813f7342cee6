package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campuscore/internal/services"
)

type OTPHandler struct {
	otpService  *services.OTPService
	userService services.UserService
}

func NewOTPHandler(otpService *services.OTPService, userService services.UserService) *OTPHandler {
	return &OTPHandler{otpService: otpService, userService: userService}
}

// @Summary      Request a one-time login code
// @Description  Generates a 6-digit code for the account behind the email, replaces any outstanding code and sends it by mail. The code is stored before dispatch, so a mail failure still leaves it verifiable.
// @Tags         OTP
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /otp/request [post]
func (h *OTPHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.otpService.Issue(strings.TrimSpace(req.Email))
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User with this email does not exist."})
		return
	case errors.Is(err, services.ErrDeliveryFailed):
		// the code is in the database; only the mail failed
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP email."})
		return
	case err != nil:
		log.Printf("[otp][request] service error: err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate OTP."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email."})
}

// @Summary      Verify a one-time login code
// @Description  Checks the submitted code; on success the code is consumed and a session is granted.
// @Tags         OTP
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /otp/verify [post]
func (h *OTPHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.otpService.Verify(strings.TrimSpace(req.Email), req.Code)
	switch {
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrOTPNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid email or OTP."})
		return
	case errors.Is(err, services.ErrCodeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP."})
		return
	case errors.Is(err, services.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP has expired."})
		return
	case err != nil:
		log.Printf("[otp][verify] service error: err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed."})
		return
	}

	accessToken, err := newAccessToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	rt, rtExp, err := newRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}
	if err := h.userService.UpdateRefresh(user.ID, rt, rtExp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "OTP verified successfully.",
		"user":    user,
		"tokens": gin.H{
			"access_token":  accessToken,
			"refresh_token": rt,
		},
	})
}
