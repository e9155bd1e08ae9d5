package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/festoofficial/festo/domain"
)

// EmailChangeHandlers serves the two-sided email change endpoints. The
// change always applies to the caller; a body userId naming anyone else is
// refused.
type EmailChangeHandlers struct {
	svc domain.EmailChangeService
}

func NewEmailChangeHandlers(svc domain.EmailChangeService) *EmailChangeHandlers {
	return &EmailChangeHandlers{svc: svc}
}

type emailChangeRequest struct {
	UserID   uint   `json:"userId" binding:"required"`
	NewEmail string `json:"newEmail" binding:"required,email"`
}

type emailChangeVerifyRequest struct {
	UserID uint   `json:"userId" binding:"required"`
	OTP    string `json:"otp" binding:"required,otp"`
}

// caller resolves the user the change applies to, writing 401/403 on failure
func caller(c *gin.Context, bodyUserID uint) (uint, bool) {
	a, ok := actor(c)
	if !ok {
		return 0, false
	}
	if bodyUserID != a.UserID {
		respondError(c, domain.ErrForbidden, "")
		return 0, false
	}
	return a.UserID, true
}

// Request sends codes to the current and the new address
func (h *EmailChangeHandlers) Request(c *gin.Context) {
	var req emailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "User ID and a valid new email are required", err)
		return
	}
	userID, ok := caller(c, req.UserID)
	if !ok {
		return
	}

	if err := h.svc.Request(c.Request.Context(), userID, req.NewEmail); err != nil {
		respondError(c, err, "Failed to start email change")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTPs sent to current and new email"})
}

// VerifyOld confirms the code sent to the current address
func (h *EmailChangeHandlers) VerifyOld(c *gin.Context) {
	var req emailChangeVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "User ID and a 6 digit OTP are required", err)
		return
	}
	userID, ok := caller(c, req.UserID)
	if !ok {
		return
	}

	if err := h.svc.VerifyOld(c.Request.Context(), userID, req.OTP); err != nil {
		respondError(c, err, "Failed to verify current email")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Current email verified. Please verify new email."})
}

// VerifyNew confirms the code sent to the new address and applies the change
func (h *EmailChangeHandlers) VerifyNew(c *gin.Context) {
	var req emailChangeVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "User ID and a 6 digit OTP are required", err)
		return
	}
	userID, ok := caller(c, req.UserID)
	if !ok {
		return
	}

	user, err := h.svc.VerifyNew(c.Request.Context(), userID, req.OTP)
	if err != nil {
		respondError(c, err, "Failed to verify new email")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email updated successfully",
		"user":    userView(user),
	})
}
