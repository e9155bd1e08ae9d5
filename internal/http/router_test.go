package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festoofficial/festo/internal/http/handlers"
	"github.com/festoofficial/festo/internal/http/middleware"
	"github.com/festoofficial/festo/internal/mocks"
)

func testRouter(origins []string, dbCheck func(ctx context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	files := mocks.NewMockFileStore()
	h := Handlers{
		Auth:          handlers.NewAuthHandlers(mocks.NewMockAuthService()),
		OTP:           handlers.NewOTPHandlers(mocks.NewMockSignupService()),
		EmailChange:   handlers.NewEmailChangeHandlers(mocks.NewMockEmailChangeService()),
		Events:        handlers.NewEventHandlers(mocks.NewMockEventService(), files),
		Registrations: handlers.NewRegistrationHandlers(mocks.NewMockRegistrationService(), files),
	}
	jwt := middleware.NewAuthMW(mocks.NewMockTokenService(), mocks.NewMockSessionRepository())
	cb := middleware.NewCasbinMW(mocks.NewMockPolicyService(), nil, nil)
	return BuildRouter(h, jwt, cb, Options{CORSOrigins: origins, DBCheck: dbCheck})
}

func TestBuildRouter_Routes(t *testing.T) {
	r := testRouter(nil, nil)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "db health without check", method: http.MethodGet, path: "/health/db", expectedStatus: http.StatusOK},
		{name: "public event list", method: http.MethodGet, path: "/api/events", expectedStatus: http.StatusOK},
		{name: "public registrations by event", method: http.MethodGet, path: "/api/registrations/event/5", expectedStatus: http.StatusOK},
		{name: "create event needs a token", method: http.MethodPost, path: "/api/events", expectedStatus: http.StatusUnauthorized},
		{name: "profile needs a token", method: http.MethodGet, path: "/api/auth/profile/7", expectedStatus: http.StatusUnauthorized},
		{name: "proof upload needs a token", method: http.MethodPost, path: "/api/registrations/upload-proof", expectedStatus: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/api/nothing", expectedStatus: http.StatusNotFound},
		{name: "old mount point is gone", method: http.MethodGet, path: "/events", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBuildRouter_DBHealth(t *testing.T) {
	r := testRouter(nil, func(ctx context.Context) error { return errors.New("connection refused") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Database connection failed")
}

func TestBuildRouter_CORS(t *testing.T) {
	tests := []struct {
		name           string
		origins        []string
		origin         string
		expectedHeader string
	}{
		{name: "listed origin", origins: []string{"https://festo.app"}, origin: "https://festo.app", expectedHeader: "https://festo.app"},
		{name: "unlisted origin", origins: []string{"https://festo.app"}, origin: "https://evil.example", expectedHeader: ""},
		{name: "wildcard", origins: []string{"*"}, origin: "https://anywhere.example", expectedHeader: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRouter(tt.origins, nil)
			req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestBuildRouter_UploadsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "proofs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "proofs", "a.png"), []byte("png"), 0o644))

	r := BuildRouter(Handlers{
		Auth:          handlers.NewAuthHandlers(mocks.NewMockAuthService()),
		OTP:           handlers.NewOTPHandlers(mocks.NewMockSignupService()),
		EmailChange:   handlers.NewEmailChangeHandlers(mocks.NewMockEmailChangeService()),
		Events:        handlers.NewEventHandlers(mocks.NewMockEventService(), mocks.NewMockFileStore()),
		Registrations: handlers.NewRegistrationHandlers(mocks.NewMockRegistrationService(), mocks.NewMockFileStore()),
	}, middleware.NewAuthMW(mocks.NewMockTokenService(), mocks.NewMockSessionRepository()),
		middleware.NewCasbinMW(mocks.NewMockPolicyService(), nil, nil), Options{UploadsDir: dir})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/proofs/a.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'", w.Header().Get("Content-Security-Policy"))
}
