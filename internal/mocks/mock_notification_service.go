package mocks

import (
	"context"

	"github.com/festoofficial/festo/domain"
)

// SentCode records one delivered code
type SentCode struct {
	To    string
	Code  string
	Label string
}

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	SendSignupOTPFunc      func(ctx context.Context, to, code string) (string, error)
	SendEmailChangeOTPFunc func(ctx context.Context, to, code, label string) error

	// Sent holds every successful delivery in call order
	Sent []SentCode
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendSignupOTP delivers a signup code
func (m *MockNotificationService) SendSignupOTP(ctx context.Context, to, code string) (string, error) {
	if m.SendSignupOTPFunc != nil {
		msg, err := m.SendSignupOTPFunc(ctx, to, code)
		if err == nil {
			m.Sent = append(m.Sent, SentCode{To: to, Code: code})
		}
		return msg, err
	}
	// Default behavior: success (no actual email sent in tests)
	m.Sent = append(m.Sent, SentCode{To: to, Code: code})
	return "OTP sent to your email", nil
}

// SendEmailChangeOTP delivers an email change code
func (m *MockNotificationService) SendEmailChangeOTP(ctx context.Context, to, code, label string) error {
	if m.SendEmailChangeOTPFunc != nil {
		if err := m.SendEmailChangeOTPFunc(ctx, to, code, label); err != nil {
			return err
		}
	}
	m.Sent = append(m.Sent, SentCode{To: to, Code: code, Label: label})
	return nil
}

// LastCodeTo returns the most recent code sent to an address
func (m *MockNotificationService) LastCodeTo(to string) string {
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].To == to {
			return m.Sent[i].Code
		}
	}
	return ""
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
