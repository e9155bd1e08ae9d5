package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/database"
)

const throttlePrefix = "festo:otp:resend:"

// OTPThrottleImpl implements domain.SendThrottle with expiring Redis keys
type OTPThrottleImpl struct {
	client *redis.Client
	window time.Duration
}

// NewOTPThrottle returns nil when window is not positive, which disables throttling
func NewOTPThrottle(client *redis.Client, window time.Duration) domain.SendThrottle {
	if window <= 0 {
		return nil
	}
	return &OTPThrottleImpl{client: client, window: window}
}

// Acquire reports whether a send for key may go ahead and starts the window if so
func (t *OTPThrottleImpl) Acquire(ctx context.Context, key string) (bool, error) {
	return database.SetNX(ctx, t.client, throttlePrefix+key, 1, t.window)
}

// Release reopens the window, used when the send it guarded failed
func (t *OTPThrottleImpl) Release(ctx context.Context, key string) error {
	return t.client.Del(ctx, throttlePrefix+key).Err()
}
