package api

import (
	"net/http"

	. "mediverse/internal/auth"
	"mediverse/internal/profile"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandlers struct {
	authService *AuthService
	profiles    *profile.ProfileService
}

func NewAuthHandlers(db *gorm.DB, profiles *profile.ProfileService) *AuthHandlers {
	return &AuthHandlers{
		authService: NewAuthService(db),
		profiles:    profiles,
	}
}

type UserRegisterInput struct {
	Username string `json:"username" binding:"required" example:"john_doe"`
	Email    string `json:"email" binding:"required" example:"john@example.com"`
	Password string `json:"password" binding:"required" example:"securePassword123"`

	// Optional profile seed, filled in during onboarding.
	Batch            string   `json:"batch"`
	Department       string   `json:"department"`
	CGPA             float64  `json:"cgpa"`
	Skills           []string `json:"skills"`
	Interests        []string `json:"interests"`
	Github           string   `json:"github"`
	Linkedin         string   `json:"linkedin"`
	Portfolio        string   `json:"portfolio"`
	Achievements     []string `json:"achievements"`
	Certifications   []string `json:"certifications"`
	Hackathons       []string `json:"hackathons"`
	Publications     []string `json:"publications"`
	Extracurriculars []string `json:"extracurriculars"`
	Leetcode         string   `json:"leetcode"`
	Codeforces       string   `json:"codeforces"`
}

type UserResponse struct {
	ID       string `json:"id" example:"a1b2c3d4"`
	Username string `json:"username" example:"john_doe"`
	Email    string `json:"email" example:"john@example.com"`
}

type AuthResponse struct {
	Message string       `json:"message" example:"Register successful"`
	User    UserResponse `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"email already in use"`
}

// RegisterHandler registers a new user
// @Summary Register a new user
// @Description Register a new user and seed their profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body UserRegisterInput true "Registration request"
// @Success 201 {object} AuthResponse "User registered successfully"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/auth/register [post]
func (h *AuthHandlers) RegisterHandler(c *gin.Context) {
	var input UserRegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(input.Username, input.Email, input.Password)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.profiles.Upsert(user.ID, profile.UpsertInput{
		Batch:            input.Batch,
		Department:       input.Department,
		CGPA:             input.CGPA,
		Skills:           input.Skills,
		Interests:        input.Interests,
		Github:           input.Github,
		Linkedin:         input.Linkedin,
		Portfolio:        input.Portfolio,
		Achievements:     input.Achievements,
		Certifications:   input.Certifications,
		Hackathons:       input.Hackathons,
		Publications:     input.Publications,
		Extracurriculars: input.Extracurriculars,
		Leetcode:         input.Leetcode,
		Codeforces:       input.Codeforces,
	}); err != nil {
		c.JSON(500, gin.H{"error": "User created but profile creation failed"})
		return
	}

	token, err := GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(500, gin.H{"error": "User created but token generation failed"})
		return
	}

	refreshToken, err := h.authService.CreateRefreshToken(user.ID)
	if err != nil {
		c.JSON(500, gin.H{"error": "User created but refresh token generation failed"})
		return
	}

	c.SetCookie("token", token, 3600*24, "/", "", true, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", true, true)

	c.JSON(201, gin.H{
		"message": "Register successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

type UserLoginInput struct {
	Email    string `json:"email" binding:"required" example:"john@example.com"`
	Password string `json:"password" binding:"required" example:"securePassword123"`
}

// LoginHandler authenticates a user
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body UserLoginInput true "Login request"
// @Success 200 {object} AuthResponse "User logged in successfully"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/auth/login [post]
func (h *AuthHandlers) LoginHandler(c *gin.Context) {
	var input UserLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Login(input.Email, input.Password)
	if err != nil {
		c.JSON(401, gin.H{"error": err.Error()})
		return
	}

	token, err := GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(500, gin.H{"error": "Token generation failed"})
		return
	}

	refreshToken, err := h.authService.CreateRefreshToken(user.ID)
	if err != nil {
		c.JSON(500, gin.H{"error": "Refresh token generation failed"})
		return
	}

	c.SetCookie("token", token, 3600*24, "/", "", true, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", true, true)

	c.JSON(200, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// MeHandler returns the authenticated user
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /api/auth/me [get]
func (h *AuthHandlers) MeHandler(c *gin.Context) {
	user, err := h.authService.GetUser(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(200, user)
}

// LogoutHandler clears the session cookies and revokes the refresh token
// @Summary Logout user
// @Tags Authentication
// @Produce json
// @Success 200 {object} AuthResponse "Logged out"
// @Router /api/auth/logout [post]
func (h *AuthHandlers) LogoutHandler(c *gin.Context) {
	if refreshToken, err := c.Cookie("refresh_token"); err == nil {
		h.authService.RevokeRefreshToken(refreshToken)
	}

	c.SetCookie("token", "", -1, "/", "", true, true)
	c.SetCookie("refresh_token", "", -1, "/", "", true, true)

	c.JSON(200, gin.H{"message": "Logged out successfully"})
}

// RefreshTokenHandler rotates the access token
// @Summary Refresh the session token
// @Tags Authentication
// @Produce json
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse "Invalid refresh token"
// @Router /api/auth/refresh_token [post]
func (h *AuthHandlers) RefreshTokenHandler(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token cookie is missing"})
		return
	}

	user, err := h.authService.ValidateRefreshToken(refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	token, err := GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(500, gin.H{"error": "Token generation failed"})
		return
	}

	c.SetCookie("token", token, 3600*24, "/", "", true, true)

	c.JSON(200, gin.H{
		"message": "Token refreshed",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
