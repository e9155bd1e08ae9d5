package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/database"
)

// SignupOTPRepositoryImpl implements domain.SignupOTPRepository using GORM
type SignupOTPRepositoryImpl struct {
	db *gorm.DB
}

// NewSignupOTPRepository creates a new signup OTP repository
func NewSignupOTPRepository(db *gorm.DB) domain.SignupOTPRepository {
	return &SignupOTPRepositoryImpl{db: db}
}

// Upsert inserts the unverified row for the email or overwrites its code,
// payload and expiry in a single statement.
func (r *SignupOTPRepositoryImpl) Upsert(ctx context.Context, otp *domain.SignupOTP) error {
	row := &DBSignupOTP{
		Email:     otp.Email,
		Code:      otp.Code,
		Name:      otp.Name,
		College:   otp.College,
		Role:      string(otp.Role),
		Verified:  false,
		CreatedAt: otp.CreatedAt,
		ExpiresAt: otp.ExpiresAt,
	}
	return database.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "verified"}},
		DoUpdates: clause.AssignmentColumns([]string{"otp", "name", "college", "role", "created_at", "expires_at"}),
	}).Create(row).Error
}

// DeleteUnverified implements domain.SignupOTPRepository
func (r *SignupOTPRepositoryImpl) DeleteUnverified(ctx context.Context, email string) error {
	return database.Conn(ctx, r.db).
		Where("email = ? AND verified = ?", email, false).
		Delete(&DBSignupOTP{}).Error
}

// FindUnverified looks up the pending row holding code. Expiry is left to the caller.
func (r *SignupOTPRepositoryImpl) FindUnverified(ctx context.Context, email, code string) (*domain.SignupOTP, error) {
	var row DBSignupOTP
	err := database.Conn(ctx, r.db).
		Where("email = ? AND otp = ? AND verified = ?", email, code, false).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPInvalidOrExpired
		}
		return nil, err
	}
	return signupOTPToDomain(&row), nil
}

// MarkVerified flips a pending row to verified. It fails when another
// caller got there first.
func (r *SignupOTPRepositoryImpl) MarkVerified(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Model(&DBSignupOTP{}).
		Where("id = ? AND verified = ?", id, false).
		Update("verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOTPInvalidOrExpired
	}
	return nil
}

// FindVerified implements domain.SignupOTPRepository
func (r *SignupOTPRepositoryImpl) FindVerified(ctx context.Context, email string) (*domain.SignupOTP, error) {
	var row DBSignupOTP
	err := database.Conn(ctx, r.db).
		Where("email = ? AND verified = ?", email, true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSignupNotVerified
		}
		return nil, err
	}
	return signupOTPToDomain(&row), nil
}

// DeleteVerified implements domain.SignupOTPRepository
func (r *SignupOTPRepositoryImpl) DeleteVerified(ctx context.Context, email string) error {
	return database.Conn(ctx, r.db).
		Where("email = ? AND verified = ?", email, true).
		Delete(&DBSignupOTP{}).Error
}

// DeleteByEmail implements domain.SignupOTPRepository
func (r *SignupOTPRepositoryImpl) DeleteByEmail(ctx context.Context, email string) error {
	return database.Conn(ctx, r.db).Where("email = ?", email).Delete(&DBSignupOTP{}).Error
}

func signupOTPToDomain(row *DBSignupOTP) *domain.SignupOTP {
	return &domain.SignupOTP{
		ID:        row.ID,
		Email:     row.Email,
		Code:      row.Code,
		Name:      row.Name,
		College:   row.College,
		Role:      domain.Role(row.Role),
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
		Verified:  row.Verified,
	}
}
