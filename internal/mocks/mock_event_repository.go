package mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/festoofficial/festo/domain"
)

// MockEventRepository implements domain.EventRepository interface for testing
type MockEventRepository struct {
	CreateFunc            func(ctx context.Context, event *domain.Event) error
	FindByIDFunc          func(ctx context.Context, id uint) (*domain.Event, error)
	FindByIDForUpdateFunc func(ctx context.Context, id uint) (*domain.Event, error)
	ListFunc              func(ctx context.Context) ([]domain.Event, error)
	ListByOrganizerFunc   func(ctx context.Context, organizerID uint) ([]domain.Event, error)
	UpdateFunc            func(ctx context.Context, event *domain.Event) error
	DeleteFunc            func(ctx context.Context, id uint) error
	SetQRCodeFunc         func(ctx context.Context, id uint, url string) error
	AdjustCountersFunc    func(ctx context.Context, id uint, delta domain.CounterDelta) error
	SetCountersFunc       func(ctx context.Context, id uint, registered int, revenue decimal.Decimal) error
}

// NewMockEventRepository creates a new MockEventRepository with default behaviors
func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) FindByID(ctx context.Context, id uint) (*domain.Event, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Event, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, id)
	}
	return m.FindByID(ctx, id)
}

func (m *MockEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockEventRepository) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	if m.ListByOrganizerFunc != nil {
		return m.ListByOrganizerFunc(ctx, organizerID)
	}
	return nil, nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockEventRepository) SetQRCode(ctx context.Context, id uint, url string) error {
	if m.SetQRCodeFunc != nil {
		return m.SetQRCodeFunc(ctx, id, url)
	}
	return nil
}

func (m *MockEventRepository) AdjustCounters(ctx context.Context, id uint, delta domain.CounterDelta) error {
	if m.AdjustCountersFunc != nil {
		return m.AdjustCountersFunc(ctx, id, delta)
	}
	return nil
}

func (m *MockEventRepository) SetCounters(ctx context.Context, id uint, registered int, revenue decimal.Decimal) error {
	if m.SetCountersFunc != nil {
		return m.SetCountersFunc(ctx, id, registered, revenue)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.EventRepository = (*MockEventRepository)(nil)
