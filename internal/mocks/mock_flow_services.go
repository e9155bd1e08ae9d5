package mocks

import (
	"context"

	"github.com/festoofficial/festo/domain"
)

// MockSignupService implements domain.SignupService interface for testing
type MockSignupService struct {
	SendOTPFunc   func(ctx context.Context, payload domain.SignupPayload) (string, error)
	VerifyOTPFunc func(ctx context.Context, email, code string) (*domain.SignupPayload, error)
}

func NewMockSignupService() *MockSignupService {
	return &MockSignupService{}
}

func (m *MockSignupService) SendOTP(ctx context.Context, payload domain.SignupPayload) (string, error) {
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, payload)
	}
	return "OTP sent to your email", nil
}

func (m *MockSignupService) VerifyOTP(ctx context.Context, email, code string) (*domain.SignupPayload, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, code)
	}
	return nil, domain.ErrOTPInvalidOrExpired
}

// MockEmailChangeService implements domain.EmailChangeService interface for testing
type MockEmailChangeService struct {
	RequestFunc   func(ctx context.Context, userID uint, newEmail string) error
	VerifyOldFunc func(ctx context.Context, userID uint, code string) error
	VerifyNewFunc func(ctx context.Context, userID uint, code string) (*domain.User, error)
}

func NewMockEmailChangeService() *MockEmailChangeService {
	return &MockEmailChangeService{}
}

func (m *MockEmailChangeService) Request(ctx context.Context, userID uint, newEmail string) error {
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, userID, newEmail)
	}
	return nil
}

func (m *MockEmailChangeService) VerifyOld(ctx context.Context, userID uint, code string) error {
	if m.VerifyOldFunc != nil {
		return m.VerifyOldFunc(ctx, userID, code)
	}
	return nil
}

func (m *MockEmailChangeService) VerifyNew(ctx context.Context, userID uint, code string) (*domain.User, error) {
	if m.VerifyNewFunc != nil {
		return m.VerifyNewFunc(ctx, userID, code)
	}
	return nil, domain.ErrNoPendingRequest
}

// Compile-time interface compliance verification
var (
	_ domain.SignupService      = (*MockSignupService)(nil)
	_ domain.EmailChangeService = (*MockEmailChangeService)(nil)
)
