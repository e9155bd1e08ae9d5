package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/config"
	"github.com/festoofficial/festo/internal/infrastructure/auth"
	"github.com/festoofficial/festo/internal/mocks"
	"github.com/festoofficial/festo/internal/services"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		header         string
		setupMocks     func(tokens *mocks.MockTokenService, sessions *mocks.MockSessionRepository)
		expectedStatus int
		expectedActor  domain.Actor
	}{
		{
			name:   "valid token and live session",
			header: "Bearer good",
			setupMocks: func(tokens *mocks.MockTokenService, sessions *mocks.MockSessionRepository) {
				tokens.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: 7, Role: "organizer", SessionID: "s1"}, nil
				}
				sessions.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					return &domain.Session{ID: id, UserID: 7}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedActor:  domain.Actor{UserID: 7, Role: domain.RoleOrganizer},
		},
		{
			name:           "missing header",
			setupMocks:     func(*mocks.MockTokenService, *mocks.MockSessionRepository) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not a bearer token",
			header:         "Basic abc",
			setupMocks:     func(*mocks.MockTokenService, *mocks.MockSessionRepository) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			header: "Bearer old",
			setupMocks: func(tokens *mocks.MockTokenService, sessions *mocks.MockSessionRepository) {
				tokens.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return nil, domain.ErrTokenExpired
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "logged out session",
			header: "Bearer good",
			setupMocks: func(tokens *mocks.MockTokenService, sessions *mocks.MockSessionRepository) {
				tokens.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: 7, Role: "organizer", SessionID: "s1"}, nil
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "token without session",
			header: "Bearer forged",
			setupMocks: func(tokens *mocks.MockTokenService, sessions *mocks.MockSessionRepository) {
				tokens.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: 7, Role: "organizer"}, nil
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "session of another user",
			header: "Bearer good",
			setupMocks: func(tokens *mocks.MockTokenService, sessions *mocks.MockSessionRepository) {
				tokens.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: 7, Role: "organizer", SessionID: "s1"}, nil
				}
				sessions.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					return &domain.Session{ID: id, UserID: 8}, nil
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := mocks.NewMockTokenService()
			sessions := mocks.NewMockSessionRepository()
			tt.setupMocks(tokens, sessions)

			var got domain.Actor
			r := gin.New()
			r.GET("/me", NewAuthMW(tokens, sessions).WithJWT(), func(c *gin.Context) {
				got, _ = Actor(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedActor, got)
		})
	}
}

// withIdentity stands in for AuthMiddleware
func withIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(KeyUserID, userID)
		c.Set(KeyUserRole, role)
		c.Next()
	}
}

func newRouteTestRouter(t *testing.T, userID, role string) *gin.Engine {
	t.Helper()

	casbinSvc, err := auth.NewCasbinService(nil, "")
	require.NoError(t, err)
	policies := services.NewPolicyService(casbinSvc.E)
	_, err = policies.SeedDefaults(auth.DefaultPolicies())
	require.NoError(t, err)

	ok := func(c *gin.Context) {
		// the body must still be readable after ownership extraction
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	}
	mw := NewCasbinMW(policies, config.DefaultOwnershipRules(), nil)
	r := gin.New()
	api := r.Group("/api", withIdentity(userID, role), mw.Enforce())
	api.POST("/events", ok)
	api.PUT("/registrations/:id", ok)
	api.GET("/auth/profile/:userId", ok)
	api.POST("/auth/email-change/request", ok)
	return r
}

func TestCasbinMW_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		userID         string
		role           string
		method         string
		path           string
		body           string
		headers        map[string]string
		expectedStatus int
	}{
		{name: "organizer creates event", userID: "1", role: "organizer", method: "POST", path: "/api/events", expectedStatus: http.StatusOK},
		{name: "participant cannot create event", userID: "2", role: "participant", method: "POST", path: "/api/events", expectedStatus: http.StatusForbidden},
		{name: "organizer reviews payment", userID: "1", role: "organizer", method: "PUT", path: "/api/registrations/5", expectedStatus: http.StatusOK},
		{name: "participant cannot review payment", userID: "2", role: "participant", method: "PUT", path: "/api/registrations/5", expectedStatus: http.StatusForbidden},
		{name: "own profile", userID: "2", role: "participant", method: "GET", path: "/api/auth/profile/2", expectedStatus: http.StatusOK},
		{name: "someone else's profile", userID: "2", role: "participant", method: "GET", path: "/api/auth/profile/3", expectedStatus: http.StatusForbidden},
		{name: "email change with numeric body id", userID: "2", role: "participant", method: "POST", path: "/api/auth/email-change/request", body: `{"userId":2,"newEmail":"n@c.edu"}`, expectedStatus: http.StatusOK},
		{name: "email change with string body id", userID: "2", role: "organizer", method: "POST", path: "/api/auth/email-change/request", body: `{"userId":"2","newEmail":"n@c.edu"}`, expectedStatus: http.StatusOK},
		{name: "email change for another user", userID: "2", role: "participant", method: "POST", path: "/api/auth/email-change/request", body: `{"userId":3,"newEmail":"n@c.edu"}`, expectedStatus: http.StatusForbidden},
		{name: "email change with case-variant id key", userID: "2", role: "participant", method: "POST", path: "/api/auth/email-change/request", body: `{"userId":2,"USERID":3,"newEmail":"n@c.edu"}`, expectedStatus: http.StatusForbidden},
		{name: "email change with only a case-variant key", userID: "2", role: "participant", method: "POST", path: "/api/auth/email-change/request", body: `{"UserId":2,"newEmail":"n@c.edu"}`, expectedStatus: http.StatusOK},
		{name: "email change with broken body", userID: "2", role: "participant", method: "POST", path: "/api/auth/email-change/request", body: `{"userId":`, expectedStatus: http.StatusForbidden},
		{name: "spoofed x-user-id", userID: "1", role: "organizer", method: "POST", path: "/api/events", headers: map[string]string{"x-user-id": "9"}, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouteTestRouter(t, tt.userID, tt.role)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestCasbinMW_PolicyStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	policies := mocks.NewMockPolicyService()
	policies.CheckPermissionFunc = func(role, resource, action string) (bool, error) {
		return false, errors.New("adapter closed")
	}
	r := gin.New()
	r.POST("/api/events", withIdentity("1", "organizer"), NewCasbinMW(policies, nil, nil).Enforce(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/events", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCasbinMW_MissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/api/events", NewCasbinMW(mocks.NewMockPolicyService(), nil, nil).Enforce(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/events", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
