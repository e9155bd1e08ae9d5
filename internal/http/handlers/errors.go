package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/festoofficial/festo/domain"
)

type errorResponse struct {
	status  int
	message string
}

// errorTable maps domain errors to their HTTP status and client message
var errorTable = []struct {
	err error
	errorResponse
}{
	// validation
	{domain.ErrInvalidRole, errorResponse{http.StatusBadRequest, "Invalid role"}},
	{domain.ErrInvalidEvent, errorResponse{http.StatusBadRequest, "Missing required fields"}},
	{domain.ErrInvalidPaymentStatus, errorResponse{http.StatusBadRequest, "Invalid payment status"}},
	{domain.ErrInvalidAmount, errorResponse{http.StatusBadRequest, "Amount must not be negative"}},
	{domain.ErrInvalidUpload, errorResponse{http.StatusBadRequest, "Only image uploads are allowed"}},
	{domain.ErrProofRequired, errorResponse{http.StatusBadRequest, "Payment proof is required for registration"}},
	{domain.ErrNameRequired, errorResponse{http.StatusBadRequest, "Name is required"}},
	{domain.ErrCurrentPasswordNeeded, errorResponse{http.StatusBadRequest, "Current password is required"}},
	{domain.ErrPasswordTooShort, errorResponse{http.StatusBadRequest, "New password must be at least 6 characters"}},
	{domain.ErrCurrentPasswordWrong, errorResponse{http.StatusBadRequest, "Current password is incorrect"}},
	{domain.ErrSignupNotVerified, errorResponse{http.StatusBadRequest, "Email has not been verified"}},
	{domain.ErrSameEmail, errorResponse{http.StatusBadRequest, "New email must be different from current email"}},
	{domain.ErrNoPendingRequest, errorResponse{http.StatusBadRequest, "No pending email change request found"}},
	{domain.ErrOldEmailNotVerified, errorResponse{http.StatusBadRequest, "Current email is not verified yet"}},

	// otp
	{domain.ErrOTPInvalidOrExpired, errorResponse{http.StatusBadRequest, "Invalid or expired OTP"}},
	{domain.ErrOTPExpired, errorResponse{http.StatusBadRequest, "OTP expired. Please request again."}},
	{domain.ErrOTPInvalid, errorResponse{http.StatusBadRequest, "Invalid OTP"}},
	{domain.ErrOTPResendTooSoon, errorResponse{http.StatusTooManyRequests, "OTP was sent recently. Please wait before requesting again."}},

	// not found
	{domain.ErrUserNotFound, errorResponse{http.StatusNotFound, "User not found"}},
	{domain.ErrEventNotFound, errorResponse{http.StatusNotFound, "Event not found"}},
	{domain.ErrRegistrationNotFound, errorResponse{http.StatusNotFound, "Registration not found"}},

	// conflict
	{domain.ErrEmailAlreadyRegistered, errorResponse{http.StatusConflict, "Email already registered"}},
	{domain.ErrEmailInUse, errorResponse{http.StatusConflict, "Email already registered"}},
	{domain.ErrAlreadyRegistered, errorResponse{http.StatusConflict, "Already registered for this event"}},

	// auth
	{domain.ErrInvalidCredentials, errorResponse{http.StatusUnauthorized, "Invalid credentials"}},
	{domain.ErrUnauthorized, errorResponse{http.StatusUnauthorized, "Unauthorized"}},
	{domain.ErrForbidden, errorResponse{http.StatusForbidden, "Access denied"}},

	// delivery
	{domain.ErrEmailDeliveryFailed, errorResponse{http.StatusInternalServerError, "Failed to send OTP email. Please try again."}},
}

// respondError writes {message, error?}. Unknown errors become 500 with the
// operation's fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			c.JSON(entry.status, gin.H{"message": entry.message})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": fallback, "error": err.Error()})
}

// badRequest reports a request that failed binding or validation
func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}
