package mocks

import (
	"context"

	"github.com/festoofficial/festo/domain"
)

// MockEmailChangeRepository implements domain.EmailChangeRepository interface for testing
type MockEmailChangeRepository struct {
	ReplaceFunc         func(ctx context.Context, req *domain.EmailChangeRequest) error
	FindAwaitingOldFunc func(ctx context.Context, userID uint) (*domain.EmailChangeRequest, error)
	FindAwaitingNewFunc func(ctx context.Context, userID uint) (*domain.EmailChangeRequest, error)
	SaveStateFunc       func(ctx context.Context, req *domain.EmailChangeRequest) error
	DeleteFunc          func(ctx context.Context, id uint) error
}

// NewMockEmailChangeRepository creates a new MockEmailChangeRepository with default behaviors
func NewMockEmailChangeRepository() *MockEmailChangeRepository {
	return &MockEmailChangeRepository{}
}

func (m *MockEmailChangeRepository) Replace(ctx context.Context, req *domain.EmailChangeRequest) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, req)
	}
	return nil
}

func (m *MockEmailChangeRepository) FindAwaitingOld(ctx context.Context, userID uint) (*domain.EmailChangeRequest, error) {
	if m.FindAwaitingOldFunc != nil {
		return m.FindAwaitingOldFunc(ctx, userID)
	}
	return nil, domain.ErrNoPendingRequest
}

func (m *MockEmailChangeRepository) FindAwaitingNew(ctx context.Context, userID uint) (*domain.EmailChangeRequest, error) {
	if m.FindAwaitingNewFunc != nil {
		return m.FindAwaitingNewFunc(ctx, userID)
	}
	return nil, domain.ErrNoPendingRequest
}

func (m *MockEmailChangeRepository) SaveState(ctx context.Context, req *domain.EmailChangeRequest) error {
	if m.SaveStateFunc != nil {
		return m.SaveStateFunc(ctx, req)
	}
	return nil
}

func (m *MockEmailChangeRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.EmailChangeRepository = (*MockEmailChangeRepository)(nil)
