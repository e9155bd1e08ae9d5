package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Signup verification events
	SignupOTPRequestEvent AuditEventType = "SIGNUP_OTP_REQUESTED"
	SignupOTPVerifyEvent  AuditEventType = "SIGNUP_OTP_VERIFIED"
	UserRegistrationEvent AuditEventType = "USER_REGISTERED"

	// Authentication events
	UserLoginEvent        AuditEventType = "USER_LOGIN"
	UserLoginFailureEvent AuditEventType = "USER_LOGIN_FAILED"
	UserLogoutEvent       AuditEventType = "USER_LOGOUT"

	// Email change events
	EmailChangeRequestEvent     AuditEventType = "EMAIL_CHANGE_REQUESTED"
	EmailChangeOldVerifiedEvent AuditEventType = "EMAIL_CHANGE_OLD_VERIFIED"
	EmailChangeAppliedEvent     AuditEventType = "EMAIL_CHANGE_APPLIED"

	// Registration ledger events
	RegistrationCreatedEvent   AuditEventType = "REGISTRATION_CREATED"
	RegistrationUpdatedEvent   AuditEventType = "REGISTRATION_UPDATED"
	RegistrationCancelledEvent AuditEventType = "REGISTRATION_CANCELLED"
	CountersReconciledEvent    AuditEventType = "EVENT_COUNTERS_RECONCILED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	UserID    uint                   `json:"user_id,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// AuditLogger records business events. Implementations must not fail the
// operation that produced the event.
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent) error
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType, userID uint) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}
