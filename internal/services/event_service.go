package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
)

// EventServiceImpl implements domain.EventService
type EventServiceImpl struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	tx               domain.Transactor
	auditSink        domain.AuditLogger
	log              *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	tx domain.Transactor,
	auditSink domain.AuditLogger,
	log *zap.Logger,
) domain.EventService {
	return &EventServiceImpl{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		tx:               tx,
		auditSink:        auditSink,
		log:              nopIfNil(log),
	}
}

func (s *EventServiceImpl) List(ctx context.Context) ([]domain.Event, error) {
	return s.eventRepo.List(ctx)
}

func (s *EventServiceImpl) Get(ctx context.Context, id uint) (*domain.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

func (s *EventServiceImpl) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	return s.eventRepo.ListByOrganizer(ctx, organizerID)
}

// Create stores a new event owned by the acting organizer
func (s *EventServiceImpl) Create(ctx context.Context, actor domain.Actor, event *domain.Event) error {
	if !actor.Role.Can(domain.CapManageEvents) {
		return domain.ErrForbidden
	}
	if err := validateEvent(event); err != nil {
		return err
	}
	event.OrganizerID = actor.UserID
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of an event the actor owns. On success
// event carries the stored counters and QR code.
func (s *EventServiceImpl) Update(ctx context.Context, actor domain.Actor, event *domain.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.ownedForUpdate(ctx, actor, event.ID)
		if err != nil {
			return err
		}
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return err
		}
		event.OrganizerID = existing.OrganizerID
		event.OrganizerName = existing.OrganizerName
		event.College = existing.College
		event.Registered = existing.Registered
		event.Revenue = existing.Revenue
		event.QRCodeURL = existing.QRCodeURL
		event.CreatedAt = existing.CreatedAt
		return nil
	})
}

// Delete removes an event the actor owns along with its registrations
func (s *EventServiceImpl) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.ownedForUpdate(ctx, actor, id); err != nil {
			return err
		}
		return s.eventRepo.Delete(ctx, id)
	})
}

// AttachQRCode records the payment QR image URL of an event
func (s *EventServiceImpl) AttachQRCode(ctx context.Context, actor domain.Actor, id uint, url string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.ownedForUpdate(ctx, actor, id); err != nil {
			return err
		}
		return s.eventRepo.SetQRCode(ctx, id, url)
	})
}

// ReconcileCounters recomputes registered and revenue from the paid
// registrations and stores them, replacing the incrementally kept values.
func (s *EventServiceImpl) ReconcileCounters(ctx context.Context, actor domain.Actor, id uint) (*domain.Event, error) {
	var (
		event   *domain.Event
		drifted bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.ownedForUpdate(ctx, actor, id)
		if err != nil {
			return err
		}
		count, revenue, err := s.registrationRepo.PaidTotals(ctx, id)
		if err != nil {
			return err
		}
		drifted = count != event.Registered || !revenue.Equal(event.Revenue)
		if !drifted {
			return nil
		}
		if err := s.eventRepo.SetCounters(ctx, id, count, revenue); err != nil {
			return err
		}
		event.Registered = count
		event.Revenue = revenue
		return nil
	})
	if err != nil {
		return nil, err
	}

	if drifted {
		s.log.Warn("event counters drifted", zap.Uint("event_id", id),
			zap.Int("registered", event.Registered), zap.String("revenue", event.Revenue.String()))
	}
	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.CountersReconciledEvent, actor.UserID).
		WithMetadata("event_id", id).
		WithMetadata("drifted", drifted))
	return event, nil
}

// ownedForUpdate locks the event and checks the actor organizes it
func (s *EventServiceImpl) ownedForUpdate(ctx context.Context, actor domain.Actor, id uint) (*domain.Event, error) {
	if !actor.Role.Can(domain.CapManageEvents) {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func validateEvent(event *domain.Event) error {
	if strings.TrimSpace(event.Name) == "" || strings.TrimSpace(event.Date) == "" {
		return domain.ErrInvalidEvent
	}
	if event.MaxParticipants <= 0 {
		return domain.ErrInvalidEvent
	}
	if event.Fee.IsNegative() {
		return domain.ErrInvalidAmount
	}
	return nil
}
