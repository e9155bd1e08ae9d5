package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
)

// SignupServiceImpl implements domain.SignupService on the signup OTP ledger
type SignupServiceImpl struct {
	userRepo  domain.UserRepository
	otpRepo   domain.SignupOTPRepository
	tx        domain.Transactor
	notifier  domain.NotificationService
	throttle  domain.SendThrottle
	attempts  domain.AttemptLimiter
	auditSink domain.AuditLogger
	log       *zap.Logger
	config    OTPConfig
	now       func() time.Time
}

// NewSignupService creates a signup service. throttle and attempts may be nil
// to disable resend and verification limits.
func NewSignupService(
	userRepo domain.UserRepository,
	otpRepo domain.SignupOTPRepository,
	tx domain.Transactor,
	notifier domain.NotificationService,
	throttle domain.SendThrottle,
	attempts domain.AttemptLimiter,
	auditSink domain.AuditLogger,
	log *zap.Logger,
	config OTPConfig,
) domain.SignupService {
	return &SignupServiceImpl{
		userRepo:  userRepo,
		otpRepo:   otpRepo,
		tx:        tx,
		notifier:  notifier,
		throttle:  throttle,
		attempts:  attempts,
		auditSink: auditSink,
		log:       nopIfNil(log),
		config:    config.withDefaults(),
		now:       time.Now,
	}
}

// SendOTP implements domain.SignupService
func (s *SignupServiceImpl) SendOTP(ctx context.Context, payload domain.SignupPayload) (string, error) {
	email := strings.TrimSpace(payload.Email)
	if !payload.Role.Valid() {
		return "", domain.ErrInvalidRole
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return "", domain.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("failed to check email: %w", err)
	}

	if s.throttle != nil {
		ok, err := s.throttle.Acquire(ctx, email)
		if err != nil {
			return "", fmt.Errorf("failed to check resend window: %w", err)
		}
		if !ok {
			return "", domain.ErrOTPResendTooSoon
		}
	}

	code, err := generateSecureCode(s.config.Length)
	if err != nil {
		s.releaseThrottle(ctx, email)
		return "", err
	}

	now := s.now()
	otp := &domain.SignupOTP{
		Email:     email,
		Code:      code,
		Name:      strings.TrimSpace(payload.Name),
		College:   strings.TrimSpace(payload.College),
		Role:      payload.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.TTL),
	}
	if err := s.otpRepo.Upsert(ctx, otp); err != nil {
		s.releaseThrottle(ctx, email)
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	confirmation, err := s.notifier.SendSignupOTP(ctx, email, code)
	if err != nil {
		// the caller must start over, so no code may outlive the failed send
		cleanupCtx := context.WithoutCancel(ctx)
		if delErr := s.otpRepo.DeleteUnverified(cleanupCtx, email); delErr != nil {
			s.log.Error("failed to remove undelivered OTP", zap.String("email", email), zap.Error(delErr))
		}
		s.releaseThrottle(cleanupCtx, email)
		recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.SignupOTPRequestEvent, 0).WithEmail(email).WithError(err))
		return "", fmt.Errorf("%w: %v", domain.ErrEmailDeliveryFailed, err)
	}

	resetAttempts(ctx, s.attempts, s.log, signupAttemptsKey(email))
	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.SignupOTPRequestEvent, 0).WithEmail(email))
	return confirmation, nil
}

// VerifyOTP implements domain.SignupService. Wrong, expired, already used and
// never sent codes all fail with the same error, as does any check past the
// attempt limit, which also discards the pending code.
func (s *SignupServiceImpl) VerifyOTP(ctx context.Context, email, code string) (*domain.SignupPayload, error) {
	email = strings.TrimSpace(email)
	key := signupAttemptsKey(email)

	exhausted, err := hitAttempts(ctx, s.attempts, key)
	if err != nil {
		return nil, err
	}
	if exhausted {
		cleanupCtx := context.WithoutCancel(ctx)
		if err := s.otpRepo.DeleteUnverified(cleanupCtx, email); err != nil {
			s.log.Error("failed to discard OTP after too many attempts", zap.String("email", email), zap.Error(err))
		}
		resetAttempts(cleanupCtx, s.attempts, s.log, key)
		s.log.Warn("signup OTP attempts exhausted", zap.String("email", email))
		recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.SignupOTPVerifyEvent, 0).WithEmail(email).WithError(domain.ErrOTPInvalidOrExpired))
		return nil, domain.ErrOTPInvalidOrExpired
	}

	var payload domain.SignupPayload
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		otp, err := s.otpRepo.FindUnverified(ctx, email, code)
		if err != nil {
			return err
		}
		if otp.Expired(s.now()) {
			return domain.ErrOTPInvalidOrExpired
		}
		// a previous verification for this email would collide on (email, verified)
		if err := s.otpRepo.DeleteVerified(ctx, email); err != nil {
			return err
		}
		if err := s.otpRepo.MarkVerified(ctx, otp.ID); err != nil {
			return err
		}
		payload = otp.Payload()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrOTPInvalidOrExpired) {
			recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.SignupOTPVerifyEvent, 0).WithEmail(email).WithError(err))
			return nil, err
		}
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}

	resetAttempts(ctx, s.attempts, s.log, key)
	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.SignupOTPVerifyEvent, 0).WithEmail(email))
	return &payload, nil
}

func (s *SignupServiceImpl) releaseThrottle(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Release(ctx, email); err != nil {
		s.log.Warn("failed to release resend window", zap.String("email", email), zap.Error(err))
	}
}
