package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
)

// OTPConfig controls one-time code generation
type OTPConfig struct {
	Length int
	TTL    time.Duration
}

func (c OTPConfig) withDefaults() OTPConfig {
	if c.Length <= 0 {
		c.Length = 6
	}
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	return c
}

// generateSecureCode returns length uniformly random digits, leading zeros kept
func generateSecureCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}

func signupAttemptsKey(email string) string {
	return "signup:" + strings.ToLower(email)
}

func emailChangeAttemptsKey(userID uint) string {
	return "email-change:" + strconv.FormatUint(uint64(userID), 10)
}

// hitAttempts counts one code check; a nil limiter never runs out
func hitAttempts(ctx context.Context, l domain.AttemptLimiter, key string) (bool, error) {
	if l == nil {
		return false, nil
	}
	exhausted, err := l.Hit(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to count OTP attempts: %w", err)
	}
	return exhausted, nil
}

func resetAttempts(ctx context.Context, l domain.AttemptLimiter, log *zap.Logger, key string) {
	if l == nil {
		return
	}
	if err := l.Reset(ctx, key); err != nil {
		log.Warn("failed to reset OTP attempts", zap.String("key", key), zap.Error(err))
	}
}
