package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Transactor runs fn as a single unit of work. Repositories called with the
// context passed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdateEmail(ctx context.Context, userID uint, email string) error
	EmailTaken(ctx context.Context, email string, exceptUserID uint) (bool, error)
}

// SignupOTPRepository is the ledger of signup codes, at most one unverified row per email
type SignupOTPRepository interface {
	Upsert(ctx context.Context, otp *SignupOTP) error
	DeleteUnverified(ctx context.Context, email string) error
	FindUnverified(ctx context.Context, email, code string) (*SignupOTP, error)
	MarkVerified(ctx context.Context, id uint) error
	FindVerified(ctx context.Context, email string) (*SignupOTP, error)
	DeleteVerified(ctx context.Context, email string) error
	DeleteByEmail(ctx context.Context, email string) error
}

// SendThrottle limits how often a code may be sent to one address
type SendThrottle interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// AttemptLimiter counts code checks per key. Hit reports whether the
// allowance is used up, counting the current check.
type AttemptLimiter interface {
	Hit(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// EmailChangeRepository stores at most one active email change request per user
type EmailChangeRepository interface {
	Replace(ctx context.Context, req *EmailChangeRequest) error
	FindAwaitingOld(ctx context.Context, userID uint) (*EmailChangeRequest, error)
	FindAwaitingNew(ctx context.Context, userID uint) (*EmailChangeRequest, error)
	SaveState(ctx context.Context, req *EmailChangeRequest) error
	Delete(ctx context.Context, id uint) error
}

// EventRepository defines event data access operations
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id uint) (*Event, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id uint) error
	SetQRCode(ctx context.Context, id uint, url string) error
	AdjustCounters(ctx context.Context, id uint, delta CounterDelta) error
	SetCounters(ctx context.Context, id uint, registered int, revenue decimal.Decimal) error
}

// RegistrationRepository defines registration data access operations
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	FindByID(ctx context.Context, id uint) (*Registration, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*Registration, error)
	Exists(ctx context.Context, eventID, participantID uint) (bool, error)
	UpdatePayment(ctx context.Context, reg *Registration) error
	Delete(ctx context.Context, id uint) error
	ListByEvent(ctx context.Context, eventID uint) ([]Registration, error)
	ListByParticipant(ctx context.Context, participantID uint) ([]Registration, error)
	PaidTotals(ctx context.Context, eventID uint) (int, decimal.Decimal, error)
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// SignupService issues and verifies signup codes
type SignupService interface {
	SendOTP(ctx context.Context, payload SignupPayload) (string, error)
	VerifyOTP(ctx context.Context, email, code string) (*SignupPayload, error)
}

// AuthService defines account business logic
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*User, error)
}

// EmailChangeService runs the two-sided email change flow
type EmailChangeService interface {
	Request(ctx context.Context, userID uint, newEmail string) error
	VerifyOld(ctx context.Context, userID uint, code string) error
	VerifyNew(ctx context.Context, userID uint, code string) (*User, error)
}

// EventService defines event business logic
type EventService interface {
	List(ctx context.Context) ([]Event, error)
	Get(ctx context.Context, id uint) (*Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]Event, error)
	Create(ctx context.Context, actor Actor, event *Event) error
	Update(ctx context.Context, actor Actor, event *Event) error
	Delete(ctx context.Context, actor Actor, id uint) error
	AttachQRCode(ctx context.Context, actor Actor, id uint, url string) error
	ReconcileCounters(ctx context.Context, actor Actor, id uint) (*Event, error)
}

// RegistrationService maintains registrations and their event counters
type RegistrationService interface {
	Register(ctx context.Context, actor Actor, reg *Registration) error
	ListByEvent(ctx context.Context, eventID uint) ([]Registration, error)
	ListByParticipant(ctx context.Context, participantID uint) ([]Registration, error)
	Update(ctx context.Context, actor Actor, id uint, update RegistrationUpdate) (*Registration, error)
	Cancel(ctx context.Context, actor Actor, id uint) error
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID uint, role string, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// NotificationService delivers one-time codes by email. It does not retry.
type NotificationService interface {
	SendSignupOTP(ctx context.Context, to, code string) (string, error)
	SendEmailChangeOTP(ctx context.Context, to, code, label string) error
}

// FileStore keeps uploaded bytes and returns the URL they are served at
type FileStore interface {
	Save(ctx context.Context, folder, filename string, data []byte) (string, error)
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
	SeedDefaults(policies [][]string) (int, error)
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
