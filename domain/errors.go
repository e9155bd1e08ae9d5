package domain

import "errors"

// Account errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidRole            = errors.New("invalid role")
	ErrSignupNotVerified      = errors.New("email has not been verified")
	ErrCurrentPasswordNeeded  = errors.New("current password is required")
	ErrCurrentPasswordWrong   = errors.New("current password is incorrect")
	ErrPasswordTooShort       = errors.New("new password must be at least 6 characters")
	ErrNameRequired           = errors.New("name is required")
)

// OTP errors
var (
	ErrOTPInvalidOrExpired = errors.New("invalid or expired otp")
	ErrOTPExpired          = errors.New("otp expired, please request again")
	ErrOTPInvalid          = errors.New("invalid otp code")
	ErrEmailDeliveryFailed = errors.New("failed to deliver otp email")
	ErrOTPResendTooSoon    = errors.New("otp was sent recently, please wait before requesting again")
)

// Email change errors
var (
	ErrSameEmail           = errors.New("new email must be different from current email")
	ErrEmailInUse          = errors.New("email already in use")
	ErrNoPendingRequest    = errors.New("no pending email change request found")
	ErrOldEmailNotVerified = errors.New("current email is not verified yet")
)

// Event and registration errors
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrInvalidEvent         = errors.New("event name, date and a positive participant limit are required")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrProofRequired        = errors.New("payment proof is required for registration")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidAmount        = errors.New("paid amount must not be negative")
	ErrInvalidUpload        = errors.New("uploaded file must be an image")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("operation not permitted for this user")
)
