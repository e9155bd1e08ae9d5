package mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/festoofficial/festo/domain"
)

// MockRegistrationRepository implements domain.RegistrationRepository interface for testing
type MockRegistrationRepository struct {
	CreateFunc            func(ctx context.Context, reg *domain.Registration) error
	FindByIDFunc          func(ctx context.Context, id uint) (*domain.Registration, error)
	FindByIDForUpdateFunc func(ctx context.Context, id uint) (*domain.Registration, error)
	ExistsFunc            func(ctx context.Context, eventID, participantID uint) (bool, error)
	UpdatePaymentFunc     func(ctx context.Context, reg *domain.Registration) error
	DeleteFunc            func(ctx context.Context, id uint) error
	ListByEventFunc       func(ctx context.Context, eventID uint) ([]domain.Registration, error)
	ListByParticipantFunc func(ctx context.Context, participantID uint) ([]domain.Registration, error)
	PaidTotalsFunc        func(ctx context.Context, eventID uint) (int, decimal.Decimal, error)
}

// NewMockRegistrationRepository creates a new MockRegistrationRepository with default behaviors
func NewMockRegistrationRepository() *MockRegistrationRepository {
	return &MockRegistrationRepository{}
}

func (m *MockRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reg)
	}
	return nil
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id uint) (*domain.Registration, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrRegistrationNotFound
}

func (m *MockRegistrationRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Registration, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *MockRegistrationRepository) Exists(ctx context.Context, eventID, participantID uint) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, eventID, participantID)
	}
	return false, nil
}

func (m *MockRegistrationRepository) UpdatePayment(ctx context.Context, reg *domain.Registration) error {
	if m.UpdatePaymentFunc != nil {
		return m.UpdatePaymentFunc(ctx, reg)
	}
	return nil
}

func (m *MockRegistrationRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockRegistrationRepository) ListByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	if m.ListByEventFunc != nil {
		return m.ListByEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) ListByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	if m.ListByParticipantFunc != nil {
		return m.ListByParticipantFunc(ctx, participantID)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) PaidTotals(ctx context.Context, eventID uint) (int, decimal.Decimal, error) {
	if m.PaidTotalsFunc != nil {
		return m.PaidTotalsFunc(ctx, eventID)
	}
	return 0, decimal.Zero, nil
}

// Compile-time interface compliance verification
var _ domain.RegistrationRepository = (*MockRegistrationRepository)(nil)
