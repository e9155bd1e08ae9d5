package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/database"
	"github.com/festoofficial/festo/internal/infrastructure/repositories"
)

// store bundles sqlite backed repositories sharing one database
type store struct {
	db            *gorm.DB
	tx            domain.Transactor
	users         domain.UserRepository
	otps          domain.SignupOTPRepository
	emailChanges  domain.EmailChangeRepository
	events        domain.EventRepository
	registrations domain.RegistrationRepository
}

func newStore(t *testing.T) *store {
	t.Helper()

	db, err := database.Open(database.Options{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return &store{
		db:            db,
		tx:            database.NewTransactor(db),
		users:         repositories.NewUserRepository(db),
		otps:          repositories.NewSignupOTPRepository(db),
		emailChanges:  repositories.NewEmailChangeRepository(db),
		events:        repositories.NewEventRepository(db),
		registrations: repositories.NewRegistrationRepository(db),
	}
}

func (s *store) user(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()

	u := &domain.User{Name: "User " + email, Email: email, PasswordHash: "hashed_secret1", College: "NIT", Role: role}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func (s *store) event(t *testing.T, organizerID uint) *domain.Event {
	t.Helper()

	e := &domain.Event{
		OrganizerID:     organizerID,
		Name:            "Hackathon",
		Category:        "tech",
		Date:            "2026-03-01",
		Time:            "10:00",
		Venue:           "Main hall",
		Fee:             decimal.NewFromInt(500),
		MaxParticipants: 100,
	}
	require.NoError(t, s.events.Create(context.Background(), e))
	return e
}

// countersMatchPaidRows checks the stored counters against the paid registrations
func (s *store) countersMatchPaidRows(t *testing.T, eventID uint) *domain.Event {
	t.Helper()

	ctx := context.Background()
	event, err := s.events.FindByID(ctx, eventID)
	require.NoError(t, err)
	count, revenue, err := s.registrations.PaidTotals(ctx, eventID)
	require.NoError(t, err)

	require.Equal(t, count, event.Registered, "registered counter")
	require.True(t, revenue.Equal(event.Revenue), "revenue counter %s, paid sum %s", event.Revenue, revenue)
	return event
}

// clock is a settable time source for services
type clock struct{ t time.Time }

// newAttempts returns a Redis backed attempt limiter allowing max checks
func newAttempts(t *testing.T, max int) domain.AttemptLimiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repositories.NewOTPAttempts(client, max, 10*time.Minute)
}

func newClock() *clock { return &clock{t: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func statusPtr(s domain.PaymentStatus) *domain.PaymentStatus { return &s }

func amountPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
