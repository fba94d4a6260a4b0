package api

import (
	"errors"
	"log"
	"net/http"
	"os"

	"mediverse/internal/auth"
	"mediverse/internal/post"
	"mediverse/internal/profile"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileHandlers struct {
	profiles    *profile.ProfileService
	posts       *post.PostService
	authService *auth.AuthService
}

func NewProfileHandlers(db *gorm.DB, profiles *profile.ProfileService) *ProfileHandlers {
	return &ProfileHandlers{
		profiles:    profiles,
		posts:       post.NewPostService(db),
		authService: auth.NewAuthService(db),
	}
}

// GetMyProfileHandler returns the caller's profile
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Success 200 {object} mediverse.Profile
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /api/profile/me [get]
func (h *ProfileHandlers) GetMyProfileHandler(c *gin.Context) {
	found, err := h.profiles.Get(c.GetString("user_id"))
	if err != nil {
		c.JSON(404, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(200, found)
}

// UpdateMyProfileHandler creates or replaces the caller's profile
// @Summary Upsert own profile
// @Tags Profile
// @Router /api/profile/me [put]
func (h *ProfileHandlers) UpdateMyProfileHandler(c *gin.Context) {
	var input profile.UpsertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.profiles.Upsert(c.GetString("user_id"), input)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to create/update profile"})
		return
	}

	c.JSON(200, updated)
}

// GetProfileByIDHandler returns another user's profile
// @Summary Get a profile by user id
// @Tags Profile
// @Router /api/profile/{userId} [get]
func (h *ProfileHandlers) GetProfileByIDHandler(c *gin.Context) {
	found, err := h.profiles.Get(c.Param("userId"))
	if err != nil {
		c.JSON(404, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(200, found)
}

// DeleteMyAccountHandler removes the account, its profile, posts and images
// @Summary Delete own account
// @Tags Profile
// @Router /api/profile/me [delete]
func (h *ProfileHandlers) DeleteMyAccountHandler(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.profiles.Delete(userID); err != nil {
		c.JSON(500, gin.H{"error": "Failed to delete profile"})
		return
	}

	images, err := h.posts.DeleteAllByUser(userID)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to delete posts"})
		return
	}
	for _, image := range images {
		if err := os.Remove(image); err != nil {
			log.Printf("failed to remove image %s: %v", image, err)
		}
	}

	if err := h.authService.DeleteUser(userID); err != nil {
		c.JSON(500, gin.H{"error": "Failed to delete account"})
		return
	}

	c.SetCookie("token", "", -1, "/", "", true, true)
	c.SetCookie("refresh_token", "", -1, "/", "", true, true)

	c.JSON(200, gin.H{"message": "Account, profile, and posts deleted successfully"})
}

// RefreshStatsHandler pulls fresh competitive-programming ratings
// @Summary Refresh CP stats
// @Tags Profile
// @Router /api/profile/me/stats/refresh [post]
func (h *ProfileHandlers) RefreshStatsHandler(c *gin.Context) {
	updated, err := h.profiles.RefreshStats(c.GetString("user_id"))
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		case errors.Is(err, profile.ErrNoHandle):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(200, updated)
}
