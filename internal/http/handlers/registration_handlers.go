package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/storage"
)

// RegistrationHandlers serves registrations and payment proof uploads
type RegistrationHandlers struct {
	registrations domain.RegistrationService
	files         domain.FileStore
}

func NewRegistrationHandlers(registrations domain.RegistrationService, files domain.FileStore) *RegistrationHandlers {
	return &RegistrationHandlers{registrations: registrations, files: files}
}

// RegistrationRequest represents a new registration. participant_id is
// optional and, when present, must name the caller.
type RegistrationRequest struct {
	EventID         uint            `json:"event_id" binding:"required"`
	ParticipantID   uint            `json:"participant_id"`
	PaymentStatus   string          `json:"payment_status" binding:"omitempty,payment_status"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PaymentProofURL string          `json:"payment_proof_url"`
	TransactionRef  string          `json:"transaction_ref"`
}

// RegistrationUpdateRequest carries optional payment changes
type RegistrationUpdateRequest struct {
	PaymentStatus *string          `json:"payment_status" binding:"omitempty,payment_status"`
	PaidAmount    *decimal.Decimal `json:"paid_amount"`
}

// Register records the caller's registration for an event
func (h *RegistrationHandlers) Register(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Event ID is required", err)
		return
	}
	if req.ParticipantID != 0 && req.ParticipantID != a.UserID {
		respondError(c, domain.ErrForbidden, "")
		return
	}
	status, err := domain.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		respondError(c, err, "")
		return
	}

	reg := &domain.Registration{
		EventID:         req.EventID,
		PaymentStatus:   status,
		PaidAmount:      req.PaidAmount,
		PaymentProofURL: req.PaymentProofURL,
		TransactionRef:  req.TransactionRef,
	}
	if err := h.registrations.Register(c.Request.Context(), a, reg); err != nil {
		respondError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Registration successful",
		"registrationId": reg.ID,
	})
}

// ListByEvent returns an event's registrations with participant details
func (h *RegistrationHandlers) ListByEvent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	regs, err := h.registrations.ListByEvent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch registrations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": registrationsView(regs)})
}

// ListByParticipant returns a participant's registrations with event details
func (h *RegistrationHandlers) ListByParticipant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	regs, err := h.registrations.ListByParticipant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch registrations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": registrationsView(regs)})
}

// Update changes payment status and/or amount
func (h *RegistrationHandlers) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RegistrationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid registration update", err)
		return
	}

	var update domain.RegistrationUpdate
	if req.PaymentStatus != nil {
		status, err := domain.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			respondError(c, err, "")
			return
		}
		update.PaymentStatus = &status
	}
	update.PaidAmount = req.PaidAmount

	reg, err := h.registrations.Update(c.Request.Context(), a, id, update)
	if err != nil {
		respondError(c, err, "Failed to update registration")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Registration updated successfully",
		"registration": registrationView(reg),
	})
}

// Cancel removes a registration and reverses its counter contribution
func (h *RegistrationHandlers) Cancel(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.registrations.Cancel(c.Request.Context(), a, id); err != nil {
		respondError(c, err, "Failed to cancel registration")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration cancelled successfully"})
}

// UploadProof stores a payment proof image (multipart field "proof") and
// returns its URL for a following registration
func (h *RegistrationHandlers) UploadProof(c *gin.Context) {
	header, data, ok := readUpload(c, "proof", "No file uploaded")
	if !ok {
		return
	}

	url, err := h.files.Save(c.Request.Context(), storage.FolderProofs, header.Filename, data)
	if err != nil {
		respondError(c, err, "Failed to upload proof")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Proof uploaded",
		"payment_proof_url": url,
	})
}
