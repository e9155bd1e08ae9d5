package repositories

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/database"
)

// RegistrationRepositoryImpl implements domain.RegistrationRepository using GORM
type RegistrationRepositoryImpl struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *gorm.DB) domain.RegistrationRepository {
	return &RegistrationRepositoryImpl{db: db}
}

// Create implements domain.RegistrationRepository
func (r *RegistrationRepositoryImpl) Create(ctx context.Context, reg *domain.Registration) error {
	row := &DBRegistration{
		EventID:         reg.EventID,
		ParticipantID:   reg.ParticipantID,
		PaymentStatus:   string(reg.PaymentStatus),
		PaidAmount:      reg.PaidAmount,
		PaymentProofURL: reg.PaymentProofURL,
		TransactionRef:  reg.TransactionRef,
	}
	if err := database.Conn(ctx, r.db).Omit("Event", "Participant").Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	reg.ID = row.ID
	reg.CreatedAt = row.CreatedAt
	return nil
}

// FindByID implements domain.RegistrationRepository
func (r *RegistrationRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Registration, error) {
	var row DBRegistration
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, registrationNotFound(err)
	}
	return registrationToDomain(&row), nil
}

// FindByIDForUpdate loads the registration with its row locked
func (r *RegistrationRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Registration, error) {
	var row DBRegistration
	err := database.ForUpdate(database.Conn(ctx, r.db)).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, registrationNotFound(err)
	}
	return registrationToDomain(&row), nil
}

// Exists implements domain.RegistrationRepository
func (r *RegistrationRepositoryImpl) Exists(ctx context.Context, eventID, participantID uint) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&DBRegistration{}).
		Where("event_id = ? AND participant_id = ?", eventID, participantID).
		Count(&count).Error
	return count > 0, err
}

// UpdatePayment writes status and amount
func (r *RegistrationRepositoryImpl) UpdatePayment(ctx context.Context, reg *domain.Registration) error {
	return database.Conn(ctx, r.db).Model(&DBRegistration{}).Where("id = ?", reg.ID).Updates(map[string]interface{}{
		"payment_status": string(reg.PaymentStatus),
		"paid_amount":    reg.PaidAmount,
	}).Error
}

// Delete implements domain.RegistrationRepository
func (r *RegistrationRepositoryImpl) Delete(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&DBRegistration{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRegistrationNotFound
	}
	return nil
}

// ListByEvent returns the event's registrations with participant details
func (r *RegistrationRepositoryImpl) ListByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	var rows []DBRegistration
	err := database.Conn(ctx, r.db).
		Preload("Participant").
		Preload("Event").
		Where("event_id = ?", eventID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return registrationsToDomain(rows), nil
}

// ListByParticipant returns a participant's registrations with event details
func (r *RegistrationRepositoryImpl) ListByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	var rows []DBRegistration
	err := database.Conn(ctx, r.db).
		Preload("Participant").
		Preload("Event.Organizer").
		Where("participant_id = ?", participantID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return registrationsToDomain(rows), nil
}

// PaidTotals recomputes the counters of an event from its paid registrations
func (r *RegistrationRepositoryImpl) PaidTotals(ctx context.Context, eventID uint) (int, decimal.Decimal, error) {
	var totals struct {
		Count   int
		Revenue decimal.NullDecimal
	}
	err := database.Conn(ctx, r.db).Model(&DBRegistration{}).
		Select("COUNT(*) AS count, SUM(paid_amount) AS revenue").
		Where("event_id = ? AND payment_status = ?", eventID, string(domain.PaymentPaid)).
		Scan(&totals).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	if !totals.Revenue.Valid {
		return totals.Count, decimal.Zero, nil
	}
	return totals.Count, totals.Revenue.Decimal, nil
}

func registrationNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrRegistrationNotFound
	}
	return err
}

func registrationToDomain(row *DBRegistration) *domain.Registration {
	reg := &domain.Registration{
		ID:               row.ID,
		EventID:          row.EventID,
		ParticipantID:    row.ParticipantID,
		PaymentStatus:    domain.PaymentStatus(row.PaymentStatus),
		PaidAmount:       row.PaidAmount,
		PaymentProofURL:  row.PaymentProofURL,
		TransactionRef:   row.TransactionRef,
		CreatedAt:        row.CreatedAt,
		ParticipantName:  row.Participant.Name,
		ParticipantEmail: row.Participant.Email,
	}
	if row.Event.ID != 0 {
		reg.Event = eventToDomain(&row.Event)
	}
	return reg
}

func registrationsToDomain(rows []DBRegistration) []domain.Registration {
	regs := make([]domain.Registration, 0, len(rows))
	for i := range rows {
		regs = append(regs, *registrationToDomain(&rows[i]))
	}
	return regs
}
