package mocks

import (
	"context"

	"github.com/festoofficial/festo/domain"
)

// MockEventService implements domain.EventService interface for testing
type MockEventService struct {
	ListFunc              func(ctx context.Context) ([]domain.Event, error)
	GetFunc               func(ctx context.Context, id uint) (*domain.Event, error)
	ListByOrganizerFunc   func(ctx context.Context, organizerID uint) ([]domain.Event, error)
	CreateFunc            func(ctx context.Context, actor domain.Actor, event *domain.Event) error
	UpdateFunc            func(ctx context.Context, actor domain.Actor, event *domain.Event) error
	DeleteFunc            func(ctx context.Context, actor domain.Actor, id uint) error
	AttachQRCodeFunc      func(ctx context.Context, actor domain.Actor, id uint, url string) error
	ReconcileCountersFunc func(ctx context.Context, actor domain.Actor, id uint) (*domain.Event, error)
}

func NewMockEventService() *MockEventService {
	return &MockEventService{}
}

func (m *MockEventService) List(ctx context.Context) ([]domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Event{}, nil
}

func (m *MockEventService) Get(ctx context.Context, id uint) (*domain.Event, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventService) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	if m.ListByOrganizerFunc != nil {
		return m.ListByOrganizerFunc(ctx, organizerID)
	}
	return []domain.Event{}, nil
}

func (m *MockEventService) Create(ctx context.Context, actor domain.Actor, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, event)
	}
	event.ID = 1
	return nil
}

func (m *MockEventService) Update(ctx context.Context, actor domain.Actor, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, event)
	}
	return nil
}

func (m *MockEventService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, id)
	}
	return nil
}

func (m *MockEventService) AttachQRCode(ctx context.Context, actor domain.Actor, id uint, url string) error {
	if m.AttachQRCodeFunc != nil {
		return m.AttachQRCodeFunc(ctx, actor, id, url)
	}
	return nil
}

func (m *MockEventService) ReconcileCounters(ctx context.Context, actor domain.Actor, id uint) (*domain.Event, error) {
	if m.ReconcileCountersFunc != nil {
		return m.ReconcileCountersFunc(ctx, actor, id)
	}
	return nil, domain.ErrEventNotFound
}

// MockRegistrationService implements domain.RegistrationService interface for testing
type MockRegistrationService struct {
	RegisterFunc          func(ctx context.Context, actor domain.Actor, reg *domain.Registration) error
	ListByEventFunc       func(ctx context.Context, eventID uint) ([]domain.Registration, error)
	ListByParticipantFunc func(ctx context.Context, participantID uint) ([]domain.Registration, error)
	UpdateFunc            func(ctx context.Context, actor domain.Actor, id uint, update domain.RegistrationUpdate) (*domain.Registration, error)
	CancelFunc            func(ctx context.Context, actor domain.Actor, id uint) error
}

func NewMockRegistrationService() *MockRegistrationService {
	return &MockRegistrationService{}
}

func (m *MockRegistrationService) Register(ctx context.Context, actor domain.Actor, reg *domain.Registration) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, actor, reg)
	}
	reg.ID = 1
	return nil
}

func (m *MockRegistrationService) ListByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	if m.ListByEventFunc != nil {
		return m.ListByEventFunc(ctx, eventID)
	}
	return []domain.Registration{}, nil
}

func (m *MockRegistrationService) ListByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	if m.ListByParticipantFunc != nil {
		return m.ListByParticipantFunc(ctx, participantID)
	}
	return []domain.Registration{}, nil
}

func (m *MockRegistrationService) Update(ctx context.Context, actor domain.Actor, id uint, update domain.RegistrationUpdate) (*domain.Registration, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, id, update)
	}
	return nil, domain.ErrRegistrationNotFound
}

func (m *MockRegistrationService) Cancel(ctx context.Context, actor domain.Actor, id uint) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, actor, id)
	}
	return nil
}

// Compile-time interface compliance verification
var (
	_ domain.EventService        = (*MockEventService)(nil)
	_ domain.RegistrationService = (*MockRegistrationService)(nil)
)
