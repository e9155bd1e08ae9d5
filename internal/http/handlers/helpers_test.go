package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/http/middleware"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	organizer   = &domain.Actor{UserID: 3, Role: domain.RoleOrganizer}
	participant = &domain.Actor{UserID: 7, Role: domain.RoleParticipant}
)

// newRouter mounts h at pattern, with the caller stored the way the auth
// middleware does it when a is set
func newRouter(a *domain.Actor, method, pattern string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, pattern, func(c *gin.Context) {
		if a != nil {
			c.Set(middleware.KeyUserID, strconv.FormatUint(uint64(a.UserID), 10))
			c.Set(middleware.KeyUserRole, string(a.Role))
			c.Set(middleware.KeySessionID, "session-1")
		}
		c.Next()
	}, h)
	return r
}

// serveJSON sends body (marshalled unless it is already a string) and
// decodes the response
func serveJSON(t *testing.T, r http.Handler, method, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code, decode(t, w)
}

// serveUpload posts data as the multipart field
func serveUpload(t *testing.T, r http.Handler, url, field string, data []byte) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, "upload.png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code, decode(t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if w.Body.Len() == 0 {
		return out
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
