package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/mocks"
)

type authMocks struct {
	users    *mocks.MockUserRepository
	otps     *mocks.MockSignupOTPRepository
	sessions *mocks.MockSessionRepository
	password *mocks.MockPasswordService
	tokens   *mocks.MockTokenService
	tx       *mocks.MockTransactor
	audit    *mocks.MockAuditLogger
}

func newAuthServiceForTest() (domain.AuthService, *authMocks) {
	m := &authMocks{
		users:    mocks.NewMockUserRepository(),
		otps:     mocks.NewMockSignupOTPRepository(),
		sessions: mocks.NewMockSessionRepository(),
		password: mocks.NewMockPasswordService(),
		tokens:   mocks.NewMockTokenService(),
		tx:       mocks.NewMockTransactor(),
		audit:    mocks.NewMockAuditLogger(),
	}
	svc := NewAuthService(m.users, m.otps, m.sessions, m.password, m.tokens, m.tx, m.audit, nil,
		AuthConfig{AccessTTL: 15 * time.Minute, SessionTTL: time.Hour})
	return svc, m
}

func storedUser() *domain.User {
	return &domain.User{
		ID:           7,
		Name:         "Asha",
		Email:        "asha@college.edu",
		PasswordHash: "hashed_secret1",
		College:      "NIT",
		Role:         domain.RoleParticipant,
	}
}

func TestAuthServiceImpl_Signup(t *testing.T) {
	verified := &domain.SignupOTP{ID: 3, Email: "asha@college.edu", Name: "Asha", College: "NIT", Role: domain.RoleOrganizer, Verified: true}

	tests := []struct {
		name          string
		setupMocks    func(m *authMocks)
		expectedError error
		validate      func(t *testing.T, m *authMocks, user *domain.User)
	}{
		{
			name: "creates user from verified code",
			setupMocks: func(m *authMocks) {
				m.otps.FindVerifiedFunc = func(ctx context.Context, email string) (*domain.SignupOTP, error) {
					return verified, nil
				}
				m.users.CreateFunc = func(ctx context.Context, user *domain.User) error {
					user.ID = 11
					return nil
				}
			},
			validate: func(t *testing.T, m *authMocks, user *domain.User) {
				assert.Equal(t, uint(11), user.ID)
				assert.Equal(t, "Asha", user.Name)
				assert.Equal(t, "NIT", user.College)
				assert.Equal(t, domain.RoleOrganizer, user.Role)
				assert.Equal(t, "hashed_secret1", user.PasswordHash)
				assert.Equal(t, 1, m.tx.Calls)
				assert.Equal(t, []domain.AuditEventType{domain.UserRegistrationEvent}, m.audit.Types())
			},
		},
		{
			name:          "email not verified",
			setupMocks:    func(m *authMocks) {},
			expectedError: domain.ErrSignupNotVerified,
		},
		{
			name: "email taken meanwhile",
			setupMocks: func(m *authMocks) {
				m.otps.FindVerifiedFunc = func(ctx context.Context, email string) (*domain.SignupOTP, error) {
					return verified, nil
				}
				m.users.CreateFunc = func(ctx context.Context, user *domain.User) error {
					return domain.ErrEmailAlreadyRegistered
				}
			},
			expectedError: domain.ErrEmailAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthServiceForTest()
			tt.setupMocks(m)

			user, err := svc.Signup(context.Background(), " asha@college.edu ", "secret1")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			tt.validate(t, m, user)
		})
	}
}

func TestAuthServiceImpl_SignupConsumesCodes(t *testing.T) {
	s := newStore(t)
	notifier := mocks.NewMockNotificationService()
	signup := newSignupServiceForTest(s, notifier, nil, nil, newClock())
	auth := NewAuthService(s.users, s.otps, mocks.NewMockSessionRepository(), mocks.NewMockPasswordService(),
		mocks.NewMockTokenService(), s.tx, nil, nil, AuthConfig{AccessTTL: time.Minute, SessionTTL: time.Minute})
	ctx := context.Background()

	_, err := signup.SendOTP(ctx, asha())
	require.NoError(t, err)
	_, err = signup.VerifyOTP(ctx, "asha@college.edu", notifier.LastCodeTo("asha@college.edu"))
	require.NoError(t, err)

	user, err := auth.Signup(ctx, "asha@college.edu", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	var rows int64
	require.NoError(t, s.db.Table("signup_otps").Where("email = ?", "asha@college.edu").Count(&rows).Error)
	assert.Zero(t, rows)

	_, err = auth.Signup(ctx, "asha@college.edu", "secret1")
	assert.ErrorIs(t, err, domain.ErrSignupNotVerified)

	// the account now blocks new signup codes for the address
	_, err = signup.SendOTP(ctx, asha())
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
}

func TestAuthServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMocks    func(m *authMocks)
		expectedError error
		expectedAudit domain.AuditEventType
	}{
		{
			name:     "successful login",
			email:    "asha@college.edu",
			password: "secret1",
			setupMocks: func(m *authMocks) {
				m.users.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return storedUser(), nil
				}
			},
			expectedAudit: domain.UserLoginEvent,
		},
		{
			name:          "unknown email",
			email:         "nobody@college.edu",
			password:      "secret1",
			setupMocks:    func(m *authMocks) {},
			expectedError: domain.ErrInvalidCredentials,
			expectedAudit: domain.UserLoginFailureEvent,
		},
		{
			name:     "wrong password",
			email:    "asha@college.edu",
			password: "guess",
			setupMocks: func(m *authMocks) {
				m.users.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return storedUser(), nil
				}
			},
			expectedError: domain.ErrInvalidCredentials,
			expectedAudit: domain.UserLoginFailureEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthServiceForTest()
			tt.setupMocks(m)
			var stored *domain.Session
			m.sessions.CreateFunc = func(ctx context.Context, session *domain.Session) error {
				stored = session
				return nil
			}

			result, err := svc.Login(context.Background(), tt.email, tt.password)
			assert.Equal(t, []domain.AuditEventType{tt.expectedAudit}, m.audit.Types())
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, stored)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, uint(7), stored.UserID)
			assert.Equal(t, stored.ID, result.SessionID)
			assert.Equal(t, time.Hour, stored.ExpiresAt.Sub(stored.CreatedAt))
			assert.Equal(t, "access_token_user_7_participant_"+stored.ID, result.AccessToken)
			assert.Equal(t, int64(900), result.ExpiresIn)
		})
	}
}

func TestAuthServiceImpl_LoginSessionStoreDown(t *testing.T) {
	svc, m := newAuthServiceForTest()
	m.users.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		return storedUser(), nil
	}
	m.sessions.CreateFunc = func(ctx context.Context, session *domain.Session) error {
		return errors.New("redis: connection refused")
	}

	_, err := svc.Login(context.Background(), "asha@college.edu", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create session")
}

func TestAuthServiceImpl_Logout(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(m *authMocks)
		expectedError bool
		expectedAudit int
	}{
		{
			name: "active session",
			setupMocks: func(m *authMocks) {
				m.sessions.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					return &domain.Session{ID: id, UserID: 7}, nil
				}
			},
			expectedAudit: 1,
		},
		{
			name:          "session already gone",
			setupMocks:    func(m *authMocks) {},
			expectedAudit: 0,
		},
		{
			name: "delete fails",
			setupMocks: func(m *authMocks) {
				m.sessions.DeleteFunc = func(ctx context.Context, id string) error { return errors.New("boom") }
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthServiceForTest()
			tt.setupMocks(m)

			err := svc.Logout(context.Background(), "sess-1")
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, m.audit.Events, tt.expectedAudit)
		})
	}
}

func TestAuthServiceImpl_UpdateProfile(t *testing.T) {
	tests := []struct {
		name          string
		update        domain.ProfileUpdate
		expectedError error
		expectedHash  string
	}{
		{
			name:         "name and college only",
			update:       domain.ProfileUpdate{Name: " Asha K ", College: "IIT"},
			expectedHash: "hashed_secret1",
		},
		{
			name:         "password change",
			update:       domain.ProfileUpdate{Name: "Asha", CurrentPassword: "secret1", NewPassword: "secret2"},
			expectedHash: "hashed_secret2",
		},
		{
			name:          "blank name",
			update:        domain.ProfileUpdate{Name: "   ", College: "IIT"},
			expectedError: domain.ErrNameRequired,
		},
		{
			name:          "new password without current",
			update:        domain.ProfileUpdate{Name: "Asha", NewPassword: "secret2"},
			expectedError: domain.ErrCurrentPasswordNeeded,
		},
		{
			name:          "new password too short",
			update:        domain.ProfileUpdate{Name: "Asha", CurrentPassword: "secret1", NewPassword: "abc"},
			expectedError: domain.ErrPasswordTooShort,
		},
		{
			name:          "current password wrong",
			update:        domain.ProfileUpdate{Name: "Asha", CurrentPassword: "nope", NewPassword: "secret2"},
			expectedError: domain.ErrCurrentPasswordWrong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthServiceForTest()
			m.users.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
				return storedUser(), nil
			}
			var saved *domain.User
			m.users.UpdateProfileFunc = func(ctx context.Context, user *domain.User) error {
				saved = user
				return nil
			}

			user, err := svc.UpdateProfile(context.Background(), 7, tt.update)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, saved)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, tt.expectedHash, saved.PasswordHash)
			assert.Equal(t, saved, user)
		})
	}
}

func TestAuthServiceImpl_UpdateProfileUnknownUser(t *testing.T) {
	svc, _ := newAuthServiceForTest()

	_, err := svc.UpdateProfile(context.Background(), 99, domain.ProfileUpdate{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
