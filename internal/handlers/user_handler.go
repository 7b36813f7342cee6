package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"campuscore/internal/authz"
	"campuscore/internal/models"
	"campuscore/internal/services"
)

const maxPictureSize = 5 << 20 // 5 MiB

type UserHandler struct {
	userService services.UserService
	filesRoot   string
}

func NewUserHandler(userService services.UserService, filesRoot string) *UserHandler {
	return &UserHandler{userService: userService, filesRoot: filesRoot}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Contact  string `json:"contact"`
}

// @Summary      Create a user account
// @Description  Creates an account and mails the credentials to the new user. The account stays created even when the mail cannot be sent.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Role:     req.Role,
		Contact:  req.Contact,
	}

	err := h.userService.CreateUserWithPassword(user, req.Password)
	switch {
	case errors.Is(err, services.ErrDeliveryFailed):
		// account exists; warn the caller about the mail
		c.JSON(http.StatusCreated, gin.H{
			"user":    user,
			"warning": "Account created but the credentials email could not be sent.",
		})
		return
	case err != nil:
		log.Printf("[user][create] failed for email=%q: err=%v", user.Email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	user, err := h.userService.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Me returns the account of the authenticated caller.
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	user, err := h.userService.GetUserByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	existing, err := h.userService.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user.ID = id
	if user.Role == "" {
		user.Role = existing.Role
	}
	if err := h.userService.UpdateUser(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.userService.DeleteUser(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	users, err := h.userService.ListUsers(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *UserHandler) GetUserCount(c *gin.Context) {
	total, err := h.userService.GetUserCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total})
}

func (h *UserHandler) GetUserCountByRole(c *gin.Context) {
	role := c.Param("role")
	if !authz.IsKnownRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	n, err := h.userService.GetUserCountByRole(role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role, "count": n})
}

// UploadProfilePicture stores the uploaded image under the files root and
// records its path on the user row.
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	user, err := h.userService.GetUserByID(id)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	file, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picture file is required"})
		return
	}
	if file.Size > maxPictureSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "picture must be 5MB or smaller"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "only jpg and png images are accepted"})
		return
	}

	name := fmt.Sprintf("user_%d_picture%s", id, ext)
	dst := filepath.Join(h.filesRoot, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		log.Printf("[user][picture] save failed for user_id=%d: err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store picture"})
		return
	}
	if err := h.userService.UpdateProfilePicture(id, "/files/"+name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record picture"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Picture uploaded", "path": "/files/" + name})
}
