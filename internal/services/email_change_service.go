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

// Labels used in the email change messages
const (
	labelCurrent = "current"
	labelNew     = "new"
)

// EmailChangeServiceImpl implements domain.EmailChangeService
type EmailChangeServiceImpl struct {
	userRepo    domain.UserRepository
	requestRepo domain.EmailChangeRepository
	tx          domain.Transactor
	notifier    domain.NotificationService
	attempts    domain.AttemptLimiter
	auditSink   domain.AuditLogger
	log         *zap.Logger
	config      OTPConfig
	now         func() time.Time
}

// NewEmailChangeService creates a new email change service. attempts may be
// nil to leave verification unlimited.
func NewEmailChangeService(
	userRepo domain.UserRepository,
	requestRepo domain.EmailChangeRepository,
	tx domain.Transactor,
	notifier domain.NotificationService,
	attempts domain.AttemptLimiter,
	auditSink domain.AuditLogger,
	log *zap.Logger,
	config OTPConfig,
) domain.EmailChangeService {
	return &EmailChangeServiceImpl{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		tx:          tx,
		notifier:    notifier,
		attempts:    attempts,
		auditSink:   auditSink,
		log:         nopIfNil(log),
		config:      config.withDefaults(),
		now:         time.Now,
	}
}

// Request replaces any pending request of the user and sends one code to the
// current address and one to the new address.
func (s *EmailChangeServiceImpl) Request(ctx context.Context, userID uint, newEmail string) error {
	newEmail = strings.TrimSpace(newEmail)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if strings.EqualFold(user.Email, newEmail) {
		return domain.ErrSameEmail
	}
	taken, err := s.userRepo.EmailTaken(ctx, newEmail, userID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return domain.ErrEmailInUse
	}

	otpOld, err := generateSecureCode(s.config.Length)
	if err != nil {
		return err
	}
	otpNew, err := generateSecureCode(s.config.Length)
	if err != nil {
		return err
	}

	req := domain.NewEmailChangeRequest(userID, user.Email, newEmail, otpOld, otpNew, s.now(), s.config.TTL)
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.requestRepo.Replace(ctx, req)
	}); err != nil {
		return fmt.Errorf("failed to store email change request: %w", err)
	}

	if err := s.notifier.SendEmailChangeOTP(ctx, user.Email, otpOld, labelCurrent); err != nil {
		return s.abandon(ctx, req, err)
	}
	if err := s.notifier.SendEmailChangeOTP(ctx, newEmail, otpNew, labelNew); err != nil {
		return s.abandon(ctx, req, err)
	}

	resetAttempts(ctx, s.attempts, s.log, emailChangeAttemptsKey(userID))
	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.EmailChangeRequestEvent, userID).
		WithEmail(user.Email).
		WithMetadata("new_email", newEmail))
	return nil
}

// abandon drops a request whose codes could not both be delivered
func (s *EmailChangeServiceImpl) abandon(ctx context.Context, req *domain.EmailChangeRequest, sendErr error) error {
	if err := s.requestRepo.Delete(context.WithoutCancel(ctx), req.ID); err != nil {
		s.log.Error("failed to remove undelivered email change request",
			zap.Uint("user_id", req.UserID), zap.Error(err))
	}
	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.EmailChangeRequestEvent, req.UserID).
		WithEmail(req.OldEmail).
		WithError(sendErr))
	return fmt.Errorf("%w: %v", domain.ErrEmailDeliveryFailed, sendErr)
}

// VerifyOld confirms the current address. An expired request, or one checked
// more often than the attempt limit allows, is deleted.
func (s *EmailChangeServiceImpl) VerifyOld(ctx context.Context, userID uint, code string) error {
	exhausted, err := hitAttempts(ctx, s.attempts, emailChangeAttemptsKey(userID))
	if err != nil {
		return err
	}

	expired := false
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := s.requestRepo.FindAwaitingOld(ctx, userID)
		if err != nil {
			return err
		}
		if exhausted {
			expired = true
			return s.requestRepo.Delete(ctx, req.ID)
		}
		if err := req.VerifyOld(code, s.now()); err != nil {
			if errors.Is(err, domain.ErrOTPExpired) {
				expired = true
				return s.requestRepo.Delete(ctx, req.ID)
			}
			return err
		}
		return s.requestRepo.SaveState(ctx, req)
	})
	if err != nil {
		return err
	}
	if expired {
		s.abandonAttempts(ctx, userID, exhausted)
		return domain.ErrOTPExpired
	}

	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.EmailChangeOldVerifiedEvent, userID))
	return nil
}

// VerifyNew confirms the new address and applies it to the user. The attempt
// limit is shared with VerifyOld.
func (s *EmailChangeServiceImpl) VerifyNew(ctx context.Context, userID uint, code string) (*domain.User, error) {
	exhausted, err := hitAttempts(ctx, s.attempts, emailChangeAttemptsKey(userID))
	if err != nil {
		return nil, err
	}

	expired := false
	var newEmail string
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := s.requestRepo.FindAwaitingNew(ctx, userID)
		if err != nil {
			return err
		}
		if exhausted {
			expired = true
			return s.requestRepo.Delete(ctx, req.ID)
		}
		if err := req.VerifyNew(code, s.now()); err != nil {
			if errors.Is(err, domain.ErrOTPExpired) {
				expired = true
				return s.requestRepo.Delete(ctx, req.ID)
			}
			return err
		}

		taken, err := s.userRepo.EmailTaken(ctx, req.NewEmail, userID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailInUse
		}
		if err := s.userRepo.UpdateEmail(ctx, userID, req.NewEmail); err != nil {
			return err
		}
		newEmail = req.NewEmail
		return s.requestRepo.Delete(ctx, req.ID)
	})
	if err != nil {
		return nil, err
	}
	if expired {
		s.abandonAttempts(ctx, userID, exhausted)
		return nil, domain.ErrOTPExpired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resetAttempts(ctx, s.attempts, s.log, emailChangeAttemptsKey(userID))
	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.EmailChangeAppliedEvent, userID).WithEmail(newEmail))
	return user, nil
}

// abandonAttempts clears the counter of a request that was just deleted
func (s *EmailChangeServiceImpl) abandonAttempts(ctx context.Context, userID uint, exhausted bool) {
	if exhausted {
		s.log.Warn("email change attempts exhausted", zap.Uint("user_id", userID))
	}
	resetAttempts(context.WithoutCancel(ctx), s.attempts, s.log, emailChangeAttemptsKey(userID))
}
