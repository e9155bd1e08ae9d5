package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/storage"
)

// EventHandlers serves event CRUD, QR upload and counter reconciliation
type EventHandlers struct {
	events domain.EventService
	files  domain.FileStore
}

func NewEventHandlers(events domain.EventService, files domain.FileStore) *EventHandlers {
	return &EventHandlers{events: events, files: files}
}

// EventRequest is the editable part of an event. organizer_id is optional
// and, when present, must name the caller.
type EventRequest struct {
	OrganizerID     uint            `json:"organizer_id"`
	Name            string          `json:"name" binding:"required"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Date            string          `json:"date" binding:"required"`
	Time            string          `json:"time"`
	Venue           string          `json:"venue"`
	Fee             decimal.Decimal `json:"fee"`
	MaxParticipants int             `json:"max_participants" binding:"required,gt=0"`
	UPIID           string          `json:"upi_id"`
	BankDetails     string          `json:"bank_details"`
}

func (r EventRequest) toEvent() *domain.Event {
	return &domain.Event{
		Name:            r.Name,
		Category:        r.Category,
		Description:     r.Description,
		Date:            r.Date,
		Time:            r.Time,
		Venue:           r.Venue,
		Fee:             r.Fee,
		MaxParticipants: r.MaxParticipants,
		UPIID:           r.UPIID,
		BankDetails:     r.BankDetails,
	}
}

// bindEvent binds the body and checks the optional organizer_id against the caller
func bindEvent(c *gin.Context, a domain.Actor) (*domain.Event, bool) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing required fields", err)
		return nil, false
	}
	if req.OrganizerID != 0 && req.OrganizerID != a.UserID {
		respondError(c, domain.ErrForbidden, "")
		return nil, false
	}
	return req.toEvent(), true
}

// List returns every event, newest first
func (h *EventHandlers) List(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": eventsView(events)})
}

// Get returns one event
func (h *EventHandlers) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": eventView(event)})
}

// ListByOrganizer returns the events an organizer owns
func (h *EventHandlers) ListByOrganizer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	events, err := h.events.ListByOrganizer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": eventsView(events)})
}

// Create adds an event owned by the caller
func (h *EventHandlers) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	event, ok := bindEvent(c, a)
	if !ok {
		return
	}

	if err := h.events.Create(c.Request.Context(), a, event); err != nil {
		respondError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"eventId": event.ID,
	})
}

// Update replaces the editable fields of an owned event
func (h *EventHandlers) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	event, ok := bindEvent(c, a)
	if !ok {
		return
	}
	event.ID = id

	if err := h.events.Update(c.Request.Context(), a, event); err != nil {
		respondError(c, err, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully"})
}

// Delete removes an owned event together with its registrations
func (h *EventHandlers) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.events.Delete(c.Request.Context(), a, id); err != nil {
		respondError(c, err, "Failed to delete event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// UploadQR stores the payment QR image (multipart field "qr") and links it to the event
func (h *EventHandlers) UploadQR(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	// refuse before the file is written
	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to upload QR code")
		return
	}
	if event.OrganizerID != a.UserID {
		respondError(c, domain.ErrForbidden, "")
		return
	}
	header, data, ok := readUpload(c, "qr", "No file uploaded")
	if !ok {
		return
	}

	url, err := h.files.Save(c.Request.Context(), storage.FolderQR, header.Filename, data)
	if err != nil {
		respondError(c, err, "Failed to upload QR code")
		return
	}
	if err := h.events.AttachQRCode(c.Request.Context(), a, id, url); err != nil {
		respondError(c, err, "Failed to upload QR code")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "QR code uploaded successfully",
		"qr_code_url": url,
	})
}

// Reconcile recomputes the registered and revenue counters from paid registrations
func (h *EventHandlers) Reconcile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	event, err := h.events.ReconcileCounters(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err, "Failed to reconcile counters")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Counters reconciled",
		"event":   eventView(event),
	})
}
