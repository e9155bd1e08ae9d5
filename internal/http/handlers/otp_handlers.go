package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/festoofficial/festo/domain"
)

// OTPHandlers serves the signup code endpoints
type OTPHandlers struct {
	signupSvc domain.SignupService
}

func NewOTPHandlers(signupSvc domain.SignupService) *OTPHandlers {
	return &OTPHandlers{signupSvc: signupSvc}
}

// SendOTPRequest carries the prospective account stored with the code
type SendOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name" binding:"required"`
	College string `json:"college" binding:"required"`
	Role    string `json:"role" binding:"required,role"`
}

// VerifyOTPRequest represents a signup code check
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,otp"`
}

// SendOTP issues a signup code
func (h *OTPHandlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email, name, college and role are required", err)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		respondError(c, err, "")
		return
	}

	confirmation, err := h.signupSvc.SendOTP(c.Request.Context(), domain.SignupPayload{
		Email:   req.Email,
		Name:    req.Name,
		College: req.College,
		Role:    role,
	})
	if err != nil {
		respondError(c, err, "Failed to send OTP")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "OTP sent successfully",
		"emailMessage": confirmation,
	})
}

// VerifyOTP checks a signup code and returns the stored account data
func (h *OTPHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and a 6 digit OTP are required", err)
		return
	}

	payload, err := h.signupSvc.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, err, "OTP verification failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "OTP verified successfully",
		"verified": true,
		"userData": payload,
	})
}
