package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/festoofficial/festo/domain"
)

const attemptsPrefix = "festo:otp:att:"

// OTPAttemptsImpl implements domain.AttemptLimiter with Redis counters that
// expire together with the code they guard
type OTPAttemptsImpl struct {
	client *redis.Client
	max    int
	ttl    time.Duration
}

// NewOTPAttempts returns nil when max is not positive, which disables the limit
func NewOTPAttempts(client *redis.Client, max int, ttl time.Duration) domain.AttemptLimiter {
	if max <= 0 {
		return nil
	}
	return &OTPAttemptsImpl{client: client, max: max, ttl: ttl}
}

// Hit increments the counter for key atomically
func (a *OTPAttemptsImpl) Hit(ctx context.Context, key string) (bool, error) {
	attempts, err := a.client.Incr(ctx, attemptsPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment attempts: %w", err)
	}
	if attempts == 1 {
		if err := a.client.Expire(ctx, attemptsPrefix+key, a.ttl).Err(); err != nil {
			return false, fmt.Errorf("failed to expire attempts: %w", err)
		}
	}
	return attempts > int64(a.max), nil
}

// Reset clears the counter, used once a code is consumed or replaced
func (a *OTPAttemptsImpl) Reset(ctx context.Context, key string) error {
	return a.client.Del(ctx, attemptsPrefix+key).Err()
}
