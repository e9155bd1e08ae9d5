package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/festoofficial/festo/domain"
)

func userView(u *domain.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"college":    u.College,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
}

func eventView(e *domain.Event) gin.H {
	return gin.H{
		"id":               e.ID,
		"organizer_id":     e.OrganizerID,
		"organizer_name":   e.OrganizerName,
		"college":          e.College,
		"name":             e.Name,
		"category":         e.Category,
		"description":      e.Description,
		"date":             e.Date,
		"time":             e.Time,
		"venue":            e.Venue,
		"fee":              e.Fee,
		"max_participants": e.MaxParticipants,
		"registered":       e.Registered,
		"revenue":          e.Revenue,
		"upi_id":           e.UPIID,
		"bank_details":     e.BankDetails,
		"qr_code_url":      e.QRCodeURL,
		"created_at":       e.CreatedAt,
	}
}

func eventsView(events []domain.Event) []gin.H {
	out := make([]gin.H, 0, len(events))
	for i := range events {
		out = append(out, eventView(&events[i]))
	}
	return out
}

// registrationView flattens the registration with whatever the listing
// query joined in: participant details and/or the event.
func registrationView(r *domain.Registration) gin.H {
	view := gin.H{
		"id":                r.ID,
		"event_id":          r.EventID,
		"participant_id":    r.ParticipantID,
		"payment_status":    r.PaymentStatus,
		"paid_amount":       r.PaidAmount,
		"payment_proof_url": r.PaymentProofURL,
		"transaction_ref":   r.TransactionRef,
		"created_at":        r.CreatedAt,
	}
	if r.ParticipantEmail != "" {
		view["name"] = r.ParticipantName
		view["email"] = r.ParticipantEmail
	}
	if e := r.Event; e != nil {
		view["event_name"] = e.Name
		view["event_date"] = e.Date
		view["event_fee"] = e.Fee
		view["date"] = e.Date
		view["time"] = e.Time
		view["venue"] = e.Venue
		view["category"] = e.Category
		view["description"] = e.Description
		view["fee"] = e.Fee
		view["max_participants"] = e.MaxParticipants
		view["registered"] = e.Registered
		view["revenue"] = e.Revenue
		view["organizer_name"] = e.OrganizerName
	}
	return view
}

func registrationsView(regs []domain.Registration) []gin.H {
	out := make([]gin.H, 0, len(regs))
	for i := range regs {
		out = append(out, registrationView(&regs[i]))
	}
	return out
}
