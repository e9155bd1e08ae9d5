package repositories

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/database"
)

// EventRepositoryImpl implements domain.EventRepository using GORM
type EventRepositoryImpl struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) domain.EventRepository {
	return &EventRepositoryImpl{db: db}
}

// Create implements domain.EventRepository. Counters always start at zero.
func (r *EventRepositoryImpl) Create(ctx context.Context, event *domain.Event) error {
	row := eventToDB(event)
	row.Registered = 0
	row.Revenue = decimal.Zero
	if err := database.Conn(ctx, r.db).Omit("Organizer").Create(row).Error; err != nil {
		return err
	}
	event.ID = row.ID
	event.Registered = 0
	event.Revenue = decimal.Zero
	event.CreatedAt = row.CreatedAt
	return nil
}

// FindByID implements domain.EventRepository
func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Event, error) {
	var row DBEvent
	err := database.Conn(ctx, r.db).Preload("Organizer").Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, eventNotFound(err)
	}
	return eventToDomain(&row), nil
}

// FindByIDForUpdate loads the event with its row locked for the rest of the transaction
func (r *EventRepositoryImpl) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Event, error) {
	var row DBEvent
	err := database.ForUpdate(database.Conn(ctx, r.db)).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, eventNotFound(err)
	}
	return eventToDomain(&row), nil
}

// List returns all events, newest date first
func (r *EventRepositoryImpl) List(ctx context.Context) ([]domain.Event, error) {
	var rows []DBEvent
	err := database.Conn(ctx, r.db).Preload("Organizer").Order("date DESC, id DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// ListByOrganizer implements domain.EventRepository
func (r *EventRepositoryImpl) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	var rows []DBEvent
	err := database.Conn(ctx, r.db).Preload("Organizer").
		Where("organizer_id = ?", organizerID).
		Order("date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// Update writes the organizer-editable fields. Counters and the QR code are
// owned by other operations and left untouched.
func (r *EventRepositoryImpl) Update(ctx context.Context, event *domain.Event) error {
	res := database.Conn(ctx, r.db).Model(&DBEvent{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
		"name":             event.Name,
		"category":         event.Category,
		"description":      event.Description,
		"date":             event.Date,
		"time":             event.Time,
		"venue":            event.Venue,
		"fee":              event.Fee,
		"max_participants": event.MaxParticipants,
		"upi_id":           event.UPIID,
		"bank_details":     event.BankDetails,
	})
	return res.Error
}

// Delete removes the event and its registrations
func (r *EventRepositoryImpl) Delete(ctx context.Context, id uint) error {
	conn := database.Conn(ctx, r.db)
	if err := conn.Where("event_id = ?", id).Delete(&DBRegistration{}).Error; err != nil {
		return err
	}
	res := conn.Where("id = ?", id).Delete(&DBEvent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// SetQRCode implements domain.EventRepository
func (r *EventRepositoryImpl) SetQRCode(ctx context.Context, id uint, url string) error {
	return database.Conn(ctx, r.db).Model(&DBEvent{}).Where("id = ?", id).Update("qr_code_url", url).Error
}

// AdjustCounters applies a delta in the database so concurrent writers on
// other rows never overwrite each other's totals.
func (r *EventRepositoryImpl) AdjustCounters(ctx context.Context, id uint, delta domain.CounterDelta) error {
	if delta.IsZero() {
		return nil
	}
	res := database.Conn(ctx, r.db).Model(&DBEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"registered": gorm.Expr("registered + ?", delta.Count),
		"revenue":    gorm.Expr("revenue + ?", delta.Revenue),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// SetCounters overwrites both counters with recomputed values
func (r *EventRepositoryImpl) SetCounters(ctx context.Context, id uint, registered int, revenue decimal.Decimal) error {
	return database.Conn(ctx, r.db).Model(&DBEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"registered": registered,
		"revenue":    revenue,
	}).Error
}

func eventNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrEventNotFound
	}
	return err
}

func eventToDB(e *domain.Event) *DBEvent {
	return &DBEvent{
		ID:              e.ID,
		OrganizerID:     e.OrganizerID,
		Name:            e.Name,
		Category:        e.Category,
		Description:     e.Description,
		Date:            e.Date,
		Time:            e.Time,
		Venue:           e.Venue,
		Fee:             e.Fee,
		MaxParticipants: e.MaxParticipants,
		Registered:      e.Registered,
		Revenue:         e.Revenue,
		UPIID:           e.UPIID,
		BankDetails:     e.BankDetails,
		QRCodeURL:       e.QRCodeURL,
	}
}

func eventToDomain(row *DBEvent) *domain.Event {
	return &domain.Event{
		ID:              row.ID,
		OrganizerID:     row.OrganizerID,
		OrganizerName:   row.Organizer.Name,
		College:         row.Organizer.College,
		Name:            row.Name,
		Category:        row.Category,
		Description:     row.Description,
		Date:            row.Date,
		Time:            row.Time,
		Venue:           row.Venue,
		Fee:             row.Fee,
		MaxParticipants: row.MaxParticipants,
		Registered:      row.Registered,
		Revenue:         row.Revenue,
		UPIID:           row.UPIID,
		BankDetails:     row.BankDetails,
		QRCodeURL:       row.QRCodeURL,
		CreatedAt:       row.CreatedAt,
	}
}

func eventsToDomain(rows []DBEvent) []domain.Event {
	events := make([]domain.Event, 0, len(rows))
	for i := range rows {
		events = append(events, *eventToDomain(&rows[i]))
	}
	return events
}
