package ticketing

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventick/eventick/internal/models"
	"github.com/eventick/eventick/internal/monitoring"
	"github.com/eventick/eventick/internal/signer"
)

// TicketStatus classifies a ticket on a public status check.
type TicketStatus string

const (
	StatusValid   TicketStatus = "Valid"
	StatusUsed    TicketStatus = "Used"
	StatusExpired TicketStatus = "Expired"
)

// Actor is the authenticated caller attempting a staff operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Verifier validates scanned payloads and drives the one-way check-in
// transition.
type Verifier struct {
	store  Store
	signer *signer.Signer
	log    *zap.Logger
}

func NewVerifier(store Store, sig *signer.Signer, log *zap.Logger) *Verifier {
	return &Verifier{store: store, signer: sig, log: log}
}

// VerifyAndCheckIn validates a scanned payload and marks the ticket used.
// Only the event's organizer or an admin may check in; the flag flip is a
// conditional write, so concurrent scans of one ticket yield exactly one
// success.
func (v *Verifier) VerifyAndCheckIn(ctx context.Context, ticketID uuid.UUID, payload string, actor Actor) (*models.Ticket, error) {
	ticket, err := v.store.TicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if actor.Role != models.RoleAdmin && (ticket.Event == nil || ticket.Event.OrganizerID != actor.ID) {
		return nil, ErrAccessDenied
	}

	if ticket.IsCheckedIn {
		return nil, ErrAlreadyCheckedIn
	}

	params, err := signer.ParseLink(payload)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if params.TicketID != ticket.ID.String() {
		return nil, ErrInvalidSignature
	}
	if !v.signer.Verify(signer.ScopeVerify, params.Signature,
		ticket.ID.String(), ticket.EventID.String(), strconv.FormatInt(params.Timestamp, 10)) {
		v.log.Warn("check-in signature mismatch",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("actor_id", actor.ID.String()))
		monitoring.CheckIn("invalid_signature")
		return nil, ErrInvalidSignature
	}

	if err := v.store.CheckIn(ctx, ticket.ID); err != nil {
		if err == ErrAlreadyCheckedIn {
			monitoring.CheckIn("already_checked_in")
		}
		return nil, err
	}
	monitoring.CheckIn("ok")

	ticket.IsCheckedIn = true
	return ticket, nil
}

// PublicTicket is the read-only view returned by a public status check.
type PublicTicket struct {
	ID           uuid.UUID   `json:"id"`
	TicketNumber string      `json:"ticket_number"`
	TicketType   string      `json:"ticket_type"`
	Quantity     int         `json:"quantity"`
	UnitPrice    int         `json:"unit_price"`
	TotalAmount  int         `json:"total_amount"`
	IsCheckedIn  bool        `json:"is_checked_in"`
	PurchasedAt  time.Time   `json:"purchased_at"`
	Event        PublicEvent `json:"event"`
}

type PublicEvent struct {
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Location  string    `json:"location"`
}

// PublicVerify classifies a ticket for the public verification link. It is a
// pure read: no authorization, no mutation. An expired link is rejected even
// when the signature would verify.
func (v *Verifier) PublicVerify(ctx context.Context, ticketID uuid.UUID, sig string, timestampMillis int64, now time.Time) (TicketStatus, *PublicTicket, error) {
	if signer.Expired(timestampMillis, now) {
		return "", nil, ErrExpiredLink
	}

	ticket, err := v.store.TicketByID(ctx, ticketID)
	if err != nil {
		return "", nil, err
	}

	if !v.signer.Verify(signer.ScopeVerify, sig,
		ticket.ID.String(), ticket.EventID.String(), strconv.FormatInt(timestampMillis, 10)) {
		v.log.Warn("public verification signature mismatch",
			zap.String("ticket_id", ticket.ID.String()))
		return "", nil, ErrInvalidSignature
	}

	status := StatusValid
	if ticket.IsCheckedIn {
		status = StatusUsed
	} else if ticket.Event != nil && ticket.Event.StartDate.Before(now) {
		status = StatusExpired
	}

	view := &PublicTicket{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		TicketType:   ticket.TicketType,
		Quantity:     ticket.Quantity,
		UnitPrice:    ticket.UnitPrice,
		TotalAmount:  ticket.TotalAmount,
		IsCheckedIn:  ticket.IsCheckedIn,
		PurchasedAt:  ticket.PurchasedAt,
	}
	if ticket.Event != nil {
		view.Event = PublicEvent{
			Title:     ticket.Event.Title,
			StartDate: ticket.Event.StartDate,
			EndDate:   ticket.Event.EndDate,
			Location:  ticket.Event.Location,
		}
	}
	return status, view, nil
}
