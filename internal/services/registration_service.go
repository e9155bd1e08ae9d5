package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
)

// RegistrationServiceImpl implements domain.RegistrationService. Every write
// locks the event row and applies the counter delta in the same transaction.
type RegistrationServiceImpl struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	tx               domain.Transactor
	auditSink        domain.AuditLogger
	log              *zap.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	tx domain.Transactor,
	auditSink domain.AuditLogger,
	log *zap.Logger,
) domain.RegistrationService {
	return &RegistrationServiceImpl{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		tx:               tx,
		auditSink:        auditSink,
		log:              nopIfNil(log),
	}
}

// Register records the actor's registration for an event
func (s *RegistrationServiceImpl) Register(ctx context.Context, actor domain.Actor, reg *domain.Registration) error {
	if !actor.Role.Can(domain.CapRegisterForEvent) {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(reg.PaymentProofURL) == "" {
		return domain.ErrProofRequired
	}
	status, err := domain.ParsePaymentStatus(string(reg.PaymentStatus))
	if err != nil {
		return err
	}
	if reg.PaidAmount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	reg.PaymentStatus = status
	reg.ParticipantID = actor.UserID

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.FindByIDForUpdate(ctx, reg.EventID); err != nil {
			return err
		}
		exists, err := s.registrationRepo.Exists(ctx, reg.EventID, reg.ParticipantID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyRegistered
		}
		if err := s.registrationRepo.Create(ctx, reg); err != nil {
			return err
		}
		after := reg.Snapshot()
		return s.eventRepo.AdjustCounters(ctx, reg.EventID, domain.ApplyPaymentTransition(nil, &after))
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.RegistrationCreatedEvent, actor.UserID).
		WithMetadata("event_id", reg.EventID).
		WithMetadata("registration_id", reg.ID).
		WithMetadata("payment_status", string(reg.PaymentStatus)))
	return nil
}

func (s *RegistrationServiceImpl) ListByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	return s.registrationRepo.ListByEvent(ctx, eventID)
}

func (s *RegistrationServiceImpl) ListByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	return s.registrationRepo.ListByParticipant(ctx, participantID)
}

// Update changes the payment status and/or amount of a registration. Only the
// organizer of the event may review payments.
func (s *RegistrationServiceImpl) Update(ctx context.Context, actor domain.Actor, id uint, update domain.RegistrationUpdate) (*domain.Registration, error) {
	if !actor.Role.Can(domain.CapReviewPayments) {
		return nil, domain.ErrForbidden
	}
	if update.PaymentStatus != nil {
		status, err := domain.ParsePaymentStatus(string(*update.PaymentStatus))
		if err != nil {
			return nil, err
		}
		update.PaymentStatus = &status
	}
	if update.PaidAmount != nil && update.PaidAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	var (
		reg   *domain.Registration
		delta domain.CounterDelta
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var (
			event  *domain.Event
			before domain.PaymentSnapshot
			err    error
		)
		reg, event, err = s.lockRegistration(ctx, id)
		if err != nil {
			return err
		}
		if event.OrganizerID != actor.UserID {
			return domain.ErrForbidden
		}

		before = reg.Snapshot()
		if update.PaymentStatus != nil {
			reg.PaymentStatus = *update.PaymentStatus
		}
		if update.PaidAmount != nil {
			reg.PaidAmount = *update.PaidAmount
		}
		after := reg.Snapshot()

		if err := s.registrationRepo.UpdatePayment(ctx, reg); err != nil {
			return err
		}
		delta = domain.ApplyPaymentTransition(&before, &after)
		if delta.IsZero() {
			return nil
		}
		return s.eventRepo.AdjustCounters(ctx, reg.EventID, delta)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.RegistrationUpdatedEvent, actor.UserID).
		WithMetadata("registration_id", id).
		WithMetadata("payment_status", string(reg.PaymentStatus)).
		WithMetadata("count_delta", delta.Count).
		WithMetadata("revenue_delta", delta.Revenue.String()))
	return reg, nil
}

// Cancel deletes a registration and reverses its counter contribution. The
// participant who registered and the event's organizer may cancel.
func (s *RegistrationServiceImpl) Cancel(ctx context.Context, actor domain.Actor, id uint) error {
	var eventID uint
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		reg, event, err := s.lockRegistration(ctx, id)
		if err != nil {
			return err
		}
		if reg.ParticipantID != actor.UserID && event.OrganizerID != actor.UserID {
			return domain.ErrForbidden
		}
		eventID = event.ID

		before := reg.Snapshot()
		if err := s.registrationRepo.Delete(ctx, id); err != nil {
			return err
		}
		delta := domain.ApplyPaymentTransition(&before, nil)
		if delta.IsZero() {
			return nil
		}
		return s.eventRepo.AdjustCounters(ctx, eventID, delta)
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.RegistrationCancelledEvent, actor.UserID).
		WithMetadata("registration_id", id).
		WithMetadata("event_id", eventID))
	return nil
}

// lockRegistration locks the owning event before the registration so every
// counter writer takes the locks in the same order.
func (s *RegistrationServiceImpl) lockRegistration(ctx context.Context, id uint) (*domain.Registration, *domain.Event, error) {
	found, err := s.registrationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	event, err := s.eventRepo.FindByIDForUpdate(ctx, found.EventID)
	if err != nil {
		return nil, nil, err
	}
	reg, err := s.registrationRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return reg, event, nil
}
