package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/festoofficial/festo/internal/app"
	"github.com/festoofficial/festo/internal/config"
	"github.com/festoofficial/festo/internal/infrastructure/notifications"
)

// TestSuite runs the whole service in-process: sqlite for the relational
// store, miniredis for sessions and a mailbox in place of the mail provider
type TestSuite struct {
	Container *app.Container
	Server    *httptest.Server
	Mailbox   *mailbox
	Redis     *miniredis.Miniredis
}

func newSuite(t *testing.T) *TestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Port:            "0",
		UploadsDir:      t.TempDir(),
		DBDriver:        "sqlite",
		DSN:             ":memory:",
		DBMaxOpenConns:  1,
		DBLogLevel:      "silent",
		RedisAddr:       mr.Addr(),
		JWTSecret:       "e2e-secret",
		JWTIssuer:       "festo",
		AccessTTL:       time.Hour,
		SessionTTL:      24 * time.Hour,
		OTPTTL:          10 * time.Minute,
		OTPLength:       6,
		OTPResendWindow: 30 * time.Second,
		OTPMaxAttempts:  5,
		MailFrom:        "no-reply@festo.com",
		MailFromName:    "Festo",
		MailTimeout:     5 * time.Second,
		OwnershipRules:  config.DefaultOwnershipRules(),
	}

	box := &mailbox{}
	c, err := app.NewContainerWithSender(context.Background(), cfg, zaptest.NewLogger(t), box)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	r, err := c.Router()
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &TestSuite{Container: c, Server: srv, Mailbox: box, Redis: mr}
}

var codePattern = regexp.MustCompile(`Your OTP is (\d{6})`)

// mailbox is a notifications.Sender that keeps every message
type mailbox struct {
	mu       sync.Mutex
	messages []notifications.Message
}

func (m *mailbox) Name() string { return "mailbox" }

func (m *mailbox) Send(ctx context.Context, msg notifications.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// LastCode returns the code in the newest message sent to addr
func (m *mailbox) LastCode(t *testing.T, addr string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].To != addr {
			continue
		}
		match := codePattern.FindStringSubmatch(m.messages[i].Text)
		require.Len(t, match, 2, "no code in %q", m.messages[i].Text)
		return match[1]
	}
	t.Fatalf("no mail sent to %s", addr)
	return ""
}

func (m *mailbox) CountTo(addr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.messages {
		if msg.To == addr {
			n++
		}
	}
	return n
}

type response struct {
	Status int
	Body   map[string]interface{}
}

func (r response) Object(key string) map[string]interface{} {
	obj, _ := r.Body[key].(map[string]interface{})
	return obj
}

func (r response) List(key string) []interface{} {
	list, _ := r.Body[key].([]interface{})
	return list
}

// Do sends a JSON request, with a bearer token when token is set
func (s *TestSuite) Do(t *testing.T, method, path, token string, body interface{}) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.Server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return s.send(t, req, token)
}

// Upload posts data as a multipart file field
func (s *TestSuite) Upload(t *testing.T, path, token, field string, data []byte) response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "upload.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.send(t, req, token)
}

func (s *TestSuite) send(t *testing.T, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.Body), string(raw))
	}
	return out
}

type account struct {
	ID    uint
	Email string
	Token string
}

// SignUp walks send-otp, verify-otp, signup and login for a new account
func (s *TestSuite) SignUp(t *testing.T, name, email, role string) account {
	t.Helper()
	resp := s.Do(t, http.MethodPost, "/api/otp/send-otp", "", map[string]string{
		"email": email, "name": name, "college": "NIT Trichy", "role": role,
	})
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)

	resp = s.Do(t, http.MethodPost, "/api/otp/verify-otp", "", map[string]string{
		"email": email, "otp": s.Mailbox.LastCode(t, email),
	})
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)

	resp = s.Do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Status, resp.Body)
	id := uint(resp.Body["userId"].(float64))

	return account{ID: id, Email: email, Token: s.Login(t, email, "secret123")}
}

func (s *TestSuite) Login(t *testing.T, email, password string) string {
	t.Helper()
	resp := s.Do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.Status, resp.Body)
	return resp.Body["token"].(string)
}

// pngBytes is a 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
