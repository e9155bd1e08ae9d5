package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/festoofficial/festo/domain"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "festo", time.Hour)

	token, err := svc.GenerateAccessToken(42, "organizer", "sess-1")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "organizer", claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestJWTService_Rejections(t *testing.T) {
	svc := NewJWTService("secret", "festo", time.Hour).(*JWTServiceImpl)
	token, err := svc.GenerateAccessToken(1, "participant", "s")
	require.NoError(t, err)

	tests := []struct {
		name        string
		validator   *JWTServiceImpl
		token       string
		expectedErr error
	}{
		{
			name:        "wrong secret",
			validator:   NewJWTService("other", "festo", time.Hour).(*JWTServiceImpl),
			token:       token,
			expectedErr: domain.ErrTokenInvalid,
		},
		{
			name:        "wrong issuer",
			validator:   NewJWTService("secret", "someone-else", time.Hour).(*JWTServiceImpl),
			token:       token,
			expectedErr: domain.ErrTokenInvalid,
		},
		{
			name:        "garbage",
			validator:   svc,
			token:       "not-a-jwt",
			expectedErr: domain.ErrTokenMalformed,
		},
		{
			name: "expired",
			validator: func() *JWTServiceImpl {
				v := NewJWTService("secret", "festo", time.Hour).(*JWTServiceImpl)
				v.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
				return v
			}(),
			token:       token,
			expectedErr: domain.ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.validator.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestPasswordService(t *testing.T) {
	svc := NewPasswordService(bcrypt.MinCost)

	hash, err := svc.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, svc.Verify(hash, "secret1"))
	assert.False(t, svc.Verify(hash, "secret2"))
	assert.False(t, svc.Verify("not-a-hash", "secret1"))
}

func TestCasbinService_DefaultPolicies(t *testing.T) {
	cas, err := NewCasbinService(nil, "")
	require.NoError(t, err)
	for _, p := range DefaultPolicies() {
		_, err := cas.E.AddPolicy(p[0], p[1], p[2])
		require.NoError(t, err)
	}

	tests := []struct {
		sub, obj, act string
		allowed       bool
	}{
		{RoleSubject("organizer"), "/api/events", "POST", true},
		{RoleSubject("participant"), "/api/events", "POST", false},
		{RoleSubject("organizer"), "/api/events/12", "PUT", true},
		{RoleSubject("organizer"), "/api/events/12", "GET", false},
		{RoleSubject("organizer"), "/api/events/12/upload-qr", "POST", true},
		{RoleSubject("participant"), "/api/registrations", "POST", true},
		{RoleSubject("organizer"), "/api/registrations", "POST", false},
		{RoleSubject("participant"), "/api/registrations/3", "PUT", false},
		{RoleSubject("participant"), "/api/registrations/3", "DELETE", true},
		{RoleSubject("organizer"), "/api/registrations/3", "PUT", true},
		{SubjectOwner, "/api/auth/profile/5", "PUT", true},
		{SubjectOwner, "/api/auth/email-change/verify-old", "POST", true},
		{RoleSubject("organizer"), "/api/auth/profile/5", "GET", false},
	}

	for _, tt := range tests {
		t.Run(tt.sub+" "+tt.act+" "+tt.obj, func(t *testing.T) {
			ok, err := cas.E.Enforce(tt.sub, tt.obj, tt.act)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, ok)
		})
	}
}
