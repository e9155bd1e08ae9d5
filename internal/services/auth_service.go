package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/festoofficial/festo/domain"
)

const minPasswordLength = 6

// AuthConfig holds token and session lifetimes
type AuthConfig struct {
	AccessTTL  time.Duration
	SessionTTL time.Duration
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	otpRepo     domain.SignupOTPRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	tx          domain.Transactor
	auditSink   domain.AuditLogger
	log         *zap.Logger
	config      AuthConfig
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	otpRepo domain.SignupOTPRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	tx domain.Transactor,
	auditSink domain.AuditLogger,
	log *zap.Logger,
	config AuthConfig,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		tx:          tx,
		auditSink:   auditSink,
		log:         nopIfNil(log),
		config:      config,
		now:         time.Now,
	}
}

// Signup creates the account for an email whose signup code was verified.
// Name, college and role come from the verified code, and every signup code
// for the email is consumed in the same transaction.
func (s *AuthServiceImpl) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *domain.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		otp, err := s.otpRepo.FindVerified(ctx, email)
		if err != nil {
			return err
		}
		user = &domain.User{
			Name:         otp.Name,
			Email:        otp.Email,
			PasswordHash: hashedPassword,
			College:      otp.College,
			Role:         otp.Role,
			CreatedAt:    s.now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.otpRepo.DeleteByEmail(ctx, email)
	})
	if err != nil {
		if errors.Is(err, domain.ErrSignupNotVerified) || errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.UserRegistrationEvent, user.ID).
		WithEmail(user.Email).
		WithMetadata("role", string(user.Role)))
	return user, nil
}

// Login implements domain.AuthService
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.TrimSpace(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		s.loginFailed(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		s.loginFailed(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, string(user.Role), session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).WithEmail(user.Email))
	return &domain.AuthResult{
		User:        user,
		AccessToken: accessToken,
		SessionID:   session.ID,
		ExpiresIn:   int64(s.config.AccessTTL.Seconds()),
	}, nil
}

func (s *AuthServiceImpl) loginFailed(ctx context.Context, email string) {
	recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.UserLoginFailureEvent, 0).
		WithEmail(email).
		WithError(domain.ErrInvalidCredentials))
}

// Logout implements domain.AuthService
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	if session != nil {
		recordAudit(ctx, s.auditSink, s.log, domain.NewAuditEvent(domain.UserLogoutEvent, session.UserID))
	}
	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateProfile changes name and college, and the password when a new one
// is supplied together with the current one.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, userID uint, update domain.ProfileUpdate) (*domain.User, error) {
	name := strings.TrimSpace(update.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(update.NewPassword) != "" {
		if strings.TrimSpace(update.CurrentPassword) == "" {
			return nil, domain.ErrCurrentPasswordNeeded
		}
		if len(update.NewPassword) < minPasswordLength {
			return nil, domain.ErrPasswordTooShort
		}
		if !s.passwordSvc.Verify(user.PasswordHash, update.CurrentPassword) {
			return nil, domain.ErrCurrentPasswordWrong
		}
		hashed, err := s.passwordSvc.Hash(update.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashed
	}

	user.Name = name
	user.College = strings.TrimSpace(update.College)
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
