package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/mocks"
)

func hackathonBody() gin.H {
	return gin.H{
		"name":             "Hackathon",
		"category":         "Tech",
		"date":             "2026-03-14",
		"time":             "10:00",
		"venue":            "Main hall",
		"fee":              500,
		"max_participants": 100,
		"upi_id":           "festo@upi",
	}
}

func TestEventHandlers_Create(t *testing.T) {
	tests := []struct {
		name           string
		actor          *domain.Actor
		mutate         func(b gin.H)
		createErr      error
		expectedStatus int
		expectCall     bool
	}{
		{name: "organizer creates", actor: organizer, expectedStatus: http.StatusCreated, expectCall: true},
		{name: "organizer id matches caller", actor: organizer, mutate: func(b gin.H) { b["organizer_id"] = 3 }, expectedStatus: http.StatusCreated, expectCall: true},
		{name: "organizer id names someone else", actor: organizer, mutate: func(b gin.H) { b["organizer_id"] = 4 }, expectedStatus: http.StatusForbidden},
		{name: "name missing", actor: organizer, mutate: func(b gin.H) { delete(b, "name") }, expectedStatus: http.StatusBadRequest},
		{name: "zero capacity", actor: organizer, mutate: func(b gin.H) { b["max_participants"] = 0 }, expectedStatus: http.StatusBadRequest},
		{name: "participant refused by service", actor: participant, createErr: domain.ErrForbidden, expectedStatus: http.StatusForbidden, expectCall: true},
		{name: "negative fee", actor: organizer, mutate: func(b gin.H) { b["fee"] = -1 }, createErr: domain.ErrInvalidAmount, expectedStatus: http.StatusBadRequest, expectCall: true},
		{name: "anonymous", actor: nil, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockEventService()
			var created *domain.Event
			var by domain.Actor
			svc.CreateFunc = func(ctx context.Context, a domain.Actor, e *domain.Event) error {
				created, by = e, a
				if tt.createErr != nil {
					return tt.createErr
				}
				e.ID = 42
				return nil
			}
			body := hackathonBody()
			if tt.mutate != nil {
				tt.mutate(body)
			}
			r := newRouter(tt.actor, http.MethodPost, "/api/events", NewEventHandlers(svc, mocks.NewMockFileStore()).Create)

			status, resp := serveJSON(t, r, http.MethodPost, "/api/events", body)

			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectCall, created != nil)
			if status == http.StatusCreated {
				assert.Equal(t, float64(42), resp["eventId"])
				assert.Equal(t, uint(3), by.UserID)
				assert.True(t, created.Fee.Equal(decimal.NewFromInt(500)))
				assert.Equal(t, "festo@upi", created.UPIID)
			}
		})
	}
}

func TestEventHandlers_Reads(t *testing.T) {
	svc := mocks.NewMockEventService()
	event := domain.Event{ID: 5, OrganizerID: 3, OrganizerName: "Ravi", College: "NIT", Name: "Hackathon", Fee: decimal.NewFromInt(500), Registered: 2, Revenue: decimal.NewFromInt(1000)}
	svc.ListFunc = func(ctx context.Context) ([]domain.Event, error) { return []domain.Event{event}, nil }
	svc.GetFunc = func(ctx context.Context, id uint) (*domain.Event, error) {
		if id != 5 {
			return nil, domain.ErrEventNotFound
		}
		return &event, nil
	}
	svc.ListByOrganizerFunc = func(ctx context.Context, organizerID uint) ([]domain.Event, error) {
		assert.Equal(t, uint(3), organizerID)
		return nil, nil
	}
	h := NewEventHandlers(svc, mocks.NewMockFileStore())
	r := gin.New()
	r.GET("/api/events", h.List)
	r.GET("/api/events/:id", h.Get)
	r.GET("/api/events/organizer/:id", h.ListByOrganizer)

	status, body := serveJSON(t, r, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, status)
	events := body["events"].([]interface{})
	require.Len(t, events, 1)
	first := events[0].(map[string]interface{})
	assert.Equal(t, "Ravi", first["organizer_name"])
	assert.Equal(t, "1000", first["revenue"])

	status, body = serveJSON(t, r, http.MethodGet, "/api/events/5", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hackathon", body["event"].(map[string]interface{})["name"])

	status, body = serveJSON(t, r, http.MethodGet, "/api/events/6", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Event not found", body["message"])

	status, body = serveJSON(t, r, http.MethodGet, "/api/events/organizer/3", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["events"])
}

func TestEventHandlers_UpdateAndDelete(t *testing.T) {
	svc := mocks.NewMockEventService()
	var updated *domain.Event
	svc.UpdateFunc = func(ctx context.Context, a domain.Actor, e *domain.Event) error {
		updated = e
		return nil
	}
	svc.DeleteFunc = func(ctx context.Context, a domain.Actor, id uint) error {
		if id == 9 {
			return domain.ErrForbidden
		}
		return nil
	}
	h := NewEventHandlers(svc, mocks.NewMockFileStore())
	r := newRouter(organizer, http.MethodPut, "/api/events/:id", h.Update)
	r.DELETE("/api/events/:id", func(c *gin.Context) {
		c.Set("user_id", "3")
		c.Set("user_role", "organizer")
	}, h.Delete)

	status, body := serveJSON(t, r, http.MethodPut, "/api/events/5", hackathonBody())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Event updated successfully", body["message"])
	require.NotNil(t, updated)
	assert.Equal(t, uint(5), updated.ID)

	status, body = serveJSON(t, r, http.MethodDelete, "/api/events/5", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Event deleted successfully", body["message"])

	status, _ = serveJSON(t, r, http.MethodDelete, "/api/events/9", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestEventHandlers_UploadQR(t *testing.T) {
	tests := []struct {
		name           string
		actor          *domain.Actor
		field          string
		saveErr        error
		expectedStatus int
		expectSave     bool
	}{
		{name: "owner uploads", actor: organizer, field: "qr", expectedStatus: http.StatusOK, expectSave: true},
		{name: "no file", actor: organizer, field: "", expectedStatus: http.StatusBadRequest},
		{name: "wrong field", actor: organizer, field: "proof", expectedStatus: http.StatusBadRequest},
		{name: "someone else's event", actor: &domain.Actor{UserID: 4, Role: domain.RoleOrganizer}, field: "qr", expectedStatus: http.StatusForbidden},
		{name: "not an image", actor: organizer, field: "qr", saveErr: domain.ErrInvalidUpload, expectedStatus: http.StatusBadRequest, expectSave: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockEventService()
			svc.GetFunc = func(ctx context.Context, id uint) (*domain.Event, error) {
				return &domain.Event{ID: id, OrganizerID: 3}, nil
			}
			var attached string
			svc.AttachQRCodeFunc = func(ctx context.Context, a domain.Actor, id uint, url string) error {
				attached = url
				return nil
			}
			files := mocks.NewMockFileStore()
			saved := false
			files.SaveFunc = func(ctx context.Context, folder, filename string, data []byte) (string, error) {
				saved = true
				assert.Equal(t, "qr", folder)
				if tt.saveErr != nil {
					return "", tt.saveErr
				}
				return "/uploads/qr/abc.png", nil
			}
			r := newRouter(tt.actor, http.MethodPost, "/api/events/:id/upload-qr", NewEventHandlers(svc, files).UploadQR)

			status, body := serveUpload(t, r, "/api/events/5/upload-qr", tt.field, []byte("\x89PNG\r\n\x1a\n"))

			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectSave, saved)
			if status == http.StatusOK {
				assert.Equal(t, "/uploads/qr/abc.png", body["qr_code_url"])
				assert.Equal(t, "/uploads/qr/abc.png", attached)
			}
		})
	}
}

func TestEventHandlers_Reconcile(t *testing.T) {
	svc := mocks.NewMockEventService()
	svc.ReconcileCountersFunc = func(ctx context.Context, a domain.Actor, id uint) (*domain.Event, error) {
		return &domain.Event{ID: id, Registered: 1, Revenue: decimal.NewFromInt(350)}, nil
	}
	r := newRouter(organizer, http.MethodPost, "/api/events/:id/reconcile", NewEventHandlers(svc, mocks.NewMockFileStore()).Reconcile)

	status, body := serveJSON(t, r, http.MethodPost, "/api/events/5/reconcile", nil)
	assert.Equal(t, http.StatusOK, status)
	event := body["event"].(map[string]interface{})
	assert.Equal(t, float64(1), event["registered"])
	assert.Equal(t, "350", event["revenue"])
}
