package mocks

import (
	"context"
	"time"

	"github.com/festoofficial/festo/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	SignupFunc         func(ctx context.Context, email, password string) (*domain.User, error)
	LoginFunc          func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	LogoutFunc         func(ctx context.Context, sessionID string) error
	GetUserProfileFunc func(ctx context.Context, userID uint) (*domain.User, error)
	UpdateProfileFunc  func(ctx context.Context, userID uint, update domain.ProfileUpdate) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Signup creates the account for a verified email
func (m *MockAuthService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, email, password)
	}
	// Default behavior: return a mock user
	return &domain.User{
		ID:        1,
		Email:     email,
		Role:      domain.RoleParticipant,
		CreatedAt: time.Now(),
	}, nil
}

// Login authenticates a user
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	// Default behavior: invalid credentials
	return nil, domain.ErrInvalidCredentials
}

// Logout revokes a session
func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

// GetUserProfile retrieves a user's profile
func (m *MockAuthService) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

// UpdateProfile edits a user's profile
func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uint, update domain.ProfileUpdate) (*domain.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, update)
	}
	return nil, domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
