package mocks

import (
	"context"

	"github.com/festoofficial/festo/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *domain.User) error
	FindByEmailFunc   func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc      func(ctx context.Context, id uint) (*domain.User, error)
	UpdateProfileFunc func(ctx context.Context, user *domain.User) error
	UpdateEmailFunc   func(ctx context.Context, userID uint, email string) error
	EmailTakenFunc    func(ctx context.Context, email string, exceptUserID uint) (bool, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// UpdateProfile stores name, college and password hash
func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, user)
	}
	return nil
}

// UpdateEmail changes a user's email
func (m *MockUserRepository) UpdateEmail(ctx context.Context, userID uint, email string) error {
	if m.UpdateEmailFunc != nil {
		return m.UpdateEmailFunc(ctx, userID, email)
	}
	return nil
}

// EmailTaken reports whether another user owns the email
func (m *MockUserRepository) EmailTaken(ctx context.Context, email string, exceptUserID uint) (bool, error) {
	if m.EmailTakenFunc != nil {
		return m.EmailTakenFunc(ctx, email, exceptUserID)
	}
	// Default behavior: free
	return false, nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
