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

// ProfileHandler serves one role's record collection. The same handler type is
// mounted three times: /students, /teachers and /non-teaching-staff.
type ProfileHandler struct {
	profileService services.ProfileService
	role           string
	filesRoot      string
}

func NewProfileHandler(profileService services.ProfileService, role, filesRoot string) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, role: role, filesRoot: filesRoot}
}

func (h *ProfileHandler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProfileNotFound), errors.Is(err, services.ErrRoleMismatch):
		// a mismatched role reads the same as not found from this route
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, services.ErrProfileExists):
		c.JSON(http.StatusConflict, gin.H{"error": "A record already exists for this user"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		log.Printf("[profile][%s] service error: err=%v", h.role, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
	}
}

func (h *ProfileHandler) Create(c *gin.Context) {
	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.Role = h.role
	if p.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if err := h.profileService.Create(&p); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.profileService.GetByID(id, h.role)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	// the record must belong to this route's role before any write
	if _, err := h.profileService.GetByID(id, h.role); err != nil {
		h.respondErr(c, err)
		return
	}

	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = id
	p.Role = h.role
	if err := h.profileService.Update(&p); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record updated"})
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.profileService.Delete(id, h.role); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted"})
}

func (h *ProfileHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	search := strings.TrimSpace(c.Query("search"))

	items, err := h.profileService.List(h.role, search, limit, offset)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	total, err := h.profileService.CountByRole(h.role)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items), "total": total})
}

// GenerateLetter produces the admission letter for students and the employment
// letter for staff routes, and returns the served path of the PDF.
func (h *ProfileHandler) GenerateLetter(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var path string
	if h.role == authz.RoleStudent {
		path, err = h.profileService.GenerateAdmissionLetter(id)
	} else {
		path, err = h.profileService.GenerateEmploymentLetter(id)
	}
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Letter generated", "path": path})
}

func (h *ProfileHandler) UploadImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if file.Size > maxPictureSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be 5MB or smaller"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "only jpg and png images are accepted"})
		return
	}

	name := fmt.Sprintf("profile_%d_image%s", id, ext)
	if err := c.SaveUploadedFile(file, filepath.Join(h.filesRoot, name)); err != nil {
		log.Printf("[profile][%s] image save failed for id=%d: err=%v", h.role, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}
	if err := h.profileService.SetProfileImage(id, h.role, "/files/"+name); err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded", "path": "/files/" + name})
}
