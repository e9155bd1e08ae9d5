package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/http/middleware"
)

// AuthHandlers handles account HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc}
}

// SignupRequest carries the account password for an already verified email.
// Name, college and role come from the verified code and are accepted here
// only so older clients keep working.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	College  string `json:"college"`
	Role     string `json:"role" binding:"omitempty,role"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileRequest represents a profile update
type ProfileRequest struct {
	Name            string `json:"name" binding:"required"`
	College         string `json:"college"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Signup creates the account for a verified email
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "All fields are required", err)
		return
	}

	user, err := h.authSvc.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required", err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      result.AccessToken,
		"token_type": "Bearer",
		"expires_in": result.ExpiresIn,
		"user": gin.H{
			"id":      result.User.ID,
			"name":    result.User.Name,
			"email":   result.User.Email,
			"role":    result.User.Role,
			"college": result.User.College,
		},
	})
}

// Logout revokes the caller's session
func (h *AuthHandlers) Logout(c *gin.Context) {
	sessionID := c.GetString(middleware.KeySessionID)
	if sessionID == "" {
		badRequest(c, "Session ID not found", nil)
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), sessionID); err != nil {
		respondError(c, err, "Logout failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetProfile returns the profile named by the userId path parameter
func (h *AuthHandlers) GetProfile(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userView(user)})
}

// UpdateProfile edits name and college and optionally rotates the password
func (h *AuthHandlers) UpdateProfile(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Name is required", err)
		return
	}

	user, err := h.authSvc.UpdateProfile(c.Request.Context(), userID, domain.ProfileUpdate{
		Name:            req.Name,
		College:         req.College,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    userView(user),
	})
}
