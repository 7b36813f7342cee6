package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"campuscore/internal/middleware"
	"campuscore/internal/models"
	"campuscore/internal/utils"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// tolerant to value types placed in the context (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID int, role string) {
	if id, ok := getIntFromCtx(c, "user_id"); ok {
		userID = id
	}
	if v, ok := c.Get("role"); ok {
		role, _ = v.(string)
	}
	return
}

// newAccessToken signs a short-lived HS256 token carrying user id and role.
func newAccessToken(user *models.User) (string, error) {
	claims := &middleware.Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(middleware.JWTKey)
}

// newRefreshToken returns an opaque token and its expiry for DB storage.
func newRefreshToken() (string, time.Time, error) {
	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		return "", time.Time{}, err
	}
	return rt, time.Now().Add(refreshTokenTTL), nil
}
