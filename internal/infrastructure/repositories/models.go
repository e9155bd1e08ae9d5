package repositories

import (
	"time"

	"github.com/shopspring/decimal"
)

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"column:password;size:255;not null"`
	College      string `gorm:"size:255"`
	Role         string `gorm:"index;size:32;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (DBUser) TableName() string { return "users" }

// DBSignupOTP allows one unverified and one verified row per email
type DBSignupOTP struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_signup_email_verified,priority:1"`
	Code      string    `gorm:"column:otp;size:6;not null"`
	Name      string    `gorm:"size:255"`
	College   string    `gorm:"size:255"`
	Role      string    `gorm:"size:32"`
	Verified  bool      `gorm:"not null;uniqueIndex:idx_signup_email_verified,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func (DBSignupOTP) TableName() string { return "signup_otps" }

// DBEmailChangeRequest is unique per user so a second request replaces the first
type DBEmailChangeRequest struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"uniqueIndex;not null"`
	User        DBUser    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	OldEmail    string    `gorm:"size:255;not null"`
	NewEmail    string    `gorm:"size:255;not null"`
	OTPOld      string    `gorm:"column:otp_old;size:6;not null"`
	OTPNew      string    `gorm:"column:otp_new;size:6;not null"`
	VerifiedOld bool      `gorm:"not null"`
	VerifiedNew bool      `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

func (DBEmailChangeRequest) TableName() string { return "email_change_requests" }

type DBEvent struct {
	ID              uint            `gorm:"primaryKey"`
	OrganizerID     uint            `gorm:"index;not null"`
	Organizer       DBUser          `gorm:"foreignKey:OrganizerID;constraint:OnDelete:CASCADE"`
	Name            string          `gorm:"size:255;not null"`
	Category        string          `gorm:"size:100"`
	Description     string          `gorm:"type:text"`
	Date            string          `gorm:"size:32;index"`
	Time            string          `gorm:"size:32"`
	Venue           string          `gorm:"size:255"`
	Fee             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MaxParticipants int             `gorm:"not null"`
	Registered      int             `gorm:"not null"`
	Revenue         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UPIID           string          `gorm:"column:upi_id;size:255"`
	BankDetails     string          `gorm:"type:text"`
	QRCodeURL       string          `gorm:"column:qr_code_url;size:512"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (DBEvent) TableName() string { return "events" }

// DBRegistration is unique per (event, participant)
type DBRegistration struct {
	ID              uint            `gorm:"primaryKey"`
	EventID         uint            `gorm:"not null;uniqueIndex:idx_registration_event_participant,priority:1"`
	Event           DBEvent         `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	ParticipantID   uint            `gorm:"not null;index;uniqueIndex:idx_registration_event_participant,priority:2"`
	Participant     DBUser          `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
	PaymentStatus   string          `gorm:"size:16;not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentProofURL string          `gorm:"column:payment_proof_url;size:512"`
	TransactionRef  string          `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (DBRegistration) TableName() string { return "registrations" }
