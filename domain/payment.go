package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the review state of a registration's payment
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// ParsePaymentStatus converts a raw status, defaulting empty input to pending
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaymentPending:
		return PaymentPending, nil
	case PaymentPaid:
		return PaymentPaid, nil
	}
	return "", ErrInvalidPaymentStatus
}

// PaymentSnapshot is a registration's payment state at one point in time
type PaymentSnapshot struct {
	Status PaymentStatus
	Amount decimal.Decimal
}

// contribution is what the snapshot adds to its event's counters.
func (s *PaymentSnapshot) contribution() (int, decimal.Decimal) {
	if s == nil || s.Status != PaymentPaid {
		return 0, decimal.Zero
	}
	return 1, s.Amount
}

// CounterDelta is the change to apply to an event's registered/revenue counters
type CounterDelta struct {
	Count   int
	Revenue decimal.Decimal
}

// IsZero reports whether applying the delta would change nothing
func (d CounterDelta) IsZero() bool {
	return d.Count == 0 && d.Revenue.IsZero()
}

// ApplyPaymentTransition computes the counter delta for moving a registration
// from before to after. A nil before means the registration is being created;
// a nil after means it is being removed.
func ApplyPaymentTransition(before, after *PaymentSnapshot) CounterDelta {
	oldCount, oldRevenue := before.contribution()
	newCount, newRevenue := after.contribution()
	return CounterDelta{
		Count:   newCount - oldCount,
		Revenue: newRevenue.Sub(oldRevenue),
	}
}
