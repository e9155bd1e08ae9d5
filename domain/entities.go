package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies what a user may do on the platform
type Role string

const (
	RoleOrganizer   Role = "organizer"
	RoleParticipant Role = "participant"
)

// Capability is a single permission granted by a role
type Capability string

const (
	CapManageEvents     Capability = "manage_events"
	CapReviewPayments   Capability = "review_payments"
	CapRegisterForEvent Capability = "register_for_event"
)

var roleCapabilities = map[Role][]Capability{
	RoleOrganizer:   {CapManageEvents, CapReviewPayments},
	RoleParticipant: {CapRegisterForEvent},
}

// ParseRole converts a raw role string into a Role
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOrganizer:
		return RoleOrganizer, nil
	case RoleParticipant:
		return RoleParticipant, nil
	}
	return "", ErrInvalidRole
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// User represents a user in the system
type User struct {
	ID           uint
	Name         string
	Email        string
	PasswordHash string
	College      string
	Role         Role
	CreatedAt    time.Time
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID uint
	Role   Role
}

// SignupPayload is the prospective account data carried by a signup OTP
type SignupPayload struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	College string `json:"college"`
	Role    Role   `json:"role"`
}

// SignupOTP is a pending or verified one-time code for a signup email
type SignupOTP struct {
	ID        uint
	Email     string
	Code      string
	Name      string
	College   string
	Role      Role
	CreatedAt time.Time
	ExpiresAt time.Time
	Verified  bool
}

// Payload returns the signup data stored with the code
func (o *SignupOTP) Payload() SignupPayload {
	return SignupPayload{
		Email:   o.Email,
		Name:    o.Name,
		College: o.College,
		Role:    o.Role,
	}
}

// Expired reports whether the code can no longer be used at now
func (o *SignupOTP) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

// AuthRequest represents authentication credentials
type AuthRequest struct {
	Email    string
	Password string
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User        *User
	AccessToken string
	SessionID   string
	ExpiresIn   int64
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	Name            string
	College         string
	CurrentPassword string
	NewPassword     string
}

// Session represents a user session
type Session struct {
	ID        string
	UserID    uint
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Event is an organizer's event together with its payment counters
type Event struct {
	ID              uint
	OrganizerID     uint
	OrganizerName   string
	College         string
	Name            string
	Category        string
	Description     string
	Date            string
	Time            string
	Venue           string
	Fee             decimal.Decimal
	MaxParticipants int
	Registered      int
	Revenue         decimal.Decimal
	UPIID           string
	BankDetails     string
	QRCodeURL       string
	CreatedAt       time.Time
}

// Registration is a participant's registration for an event
type Registration struct {
	ID              uint
	EventID         uint
	ParticipantID   uint
	PaymentStatus   PaymentStatus
	PaidAmount      decimal.Decimal
	PaymentProofURL string
	TransactionRef  string
	CreatedAt       time.Time

	// populated by listing queries
	ParticipantName  string
	ParticipantEmail string
	Event            *Event
}

// Snapshot returns the registration's payment contribution
func (r *Registration) Snapshot() PaymentSnapshot {
	return PaymentSnapshot{Status: r.PaymentStatus, Amount: r.PaidAmount}
}

// RegistrationUpdate holds optional payment changes
type RegistrationUpdate struct {
	PaymentStatus *PaymentStatus
	PaidAmount    *decimal.Decimal
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
