package mocks

import (
	"context"

	"github.com/festoofficial/festo/domain"
)

// MockSignupOTPRepository implements domain.SignupOTPRepository interface for testing
type MockSignupOTPRepository struct {
	UpsertFunc           func(ctx context.Context, otp *domain.SignupOTP) error
	DeleteUnverifiedFunc func(ctx context.Context, email string) error
	FindUnverifiedFunc   func(ctx context.Context, email, code string) (*domain.SignupOTP, error)
	MarkVerifiedFunc     func(ctx context.Context, id uint) error
	FindVerifiedFunc     func(ctx context.Context, email string) (*domain.SignupOTP, error)
	DeleteVerifiedFunc   func(ctx context.Context, email string) error
	DeleteByEmailFunc    func(ctx context.Context, email string) error
}

// NewMockSignupOTPRepository creates a new MockSignupOTPRepository with default behaviors
func NewMockSignupOTPRepository() *MockSignupOTPRepository {
	return &MockSignupOTPRepository{}
}

func (m *MockSignupOTPRepository) Upsert(ctx context.Context, otp *domain.SignupOTP) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, otp)
	}
	return nil
}

func (m *MockSignupOTPRepository) DeleteUnverified(ctx context.Context, email string) error {
	if m.DeleteUnverifiedFunc != nil {
		return m.DeleteUnverifiedFunc(ctx, email)
	}
	return nil
}

func (m *MockSignupOTPRepository) FindUnverified(ctx context.Context, email, code string) (*domain.SignupOTP, error) {
	if m.FindUnverifiedFunc != nil {
		return m.FindUnverifiedFunc(ctx, email, code)
	}
	// Default behavior: nothing pending
	return nil, domain.ErrOTPInvalidOrExpired
}

func (m *MockSignupOTPRepository) MarkVerified(ctx context.Context, id uint) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, id)
	}
	return nil
}

func (m *MockSignupOTPRepository) FindVerified(ctx context.Context, email string) (*domain.SignupOTP, error) {
	if m.FindVerifiedFunc != nil {
		return m.FindVerifiedFunc(ctx, email)
	}
	// Default behavior: not verified
	return nil, domain.ErrSignupNotVerified
}

func (m *MockSignupOTPRepository) DeleteVerified(ctx context.Context, email string) error {
	if m.DeleteVerifiedFunc != nil {
		return m.DeleteVerifiedFunc(ctx, email)
	}
	return nil
}

func (m *MockSignupOTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	if m.DeleteByEmailFunc != nil {
		return m.DeleteByEmailFunc(ctx, email)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.SignupOTPRepository = (*MockSignupOTPRepository)(nil)
