package payments

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Note keys attached to provider orders at creation and read back on
// confirmation. Both confirmation paths extract the same canonical fields.
const (
	NoteEventID      = "eventId"
	NoteTicketTypeID = "ticketTypeId"
	NoteQuantity     = "quantity"
	NoteUserID       = "userId"
	NoteContactName  = "contactName"
	NoteContactEmail = "contactEmail"
	NoteContactPhone = "contactPhone"
)

// BookingNotes are the canonical booking fields carried in provider notes.
type BookingNotes struct {
	EventID      uuid.UUID
	TicketTypeID uuid.UUID
	UserID       uuid.UUID
	Quantity     int
	ContactName  string
	ContactEmail string
	ContactPhone string
}

func (n BookingNotes) ToMap() map[string]string {
	return map[string]string{
		NoteEventID:      n.EventID.String(),
		NoteTicketTypeID: n.TicketTypeID.String(),
		NoteQuantity:     strconv.Itoa(n.Quantity),
		NoteUserID:       n.UserID.String(),
		NoteContactName:  n.ContactName,
		NoteContactEmail: n.ContactEmail,
		NoteContactPhone: n.ContactPhone,
	}
}

// ParseBookingNotes validates and decodes provider notes. Every identifying
// field is mandatory.
func ParseBookingNotes(notes map[string]string) (*BookingNotes, error) {
	eventID, err := uuid.Parse(notes[NoteEventID])
	if err != nil {
		return nil, fmt.Errorf("notes missing event id: %w", err)
	}
	ticketTypeID, err := uuid.Parse(notes[NoteTicketTypeID])
	if err != nil {
		return nil, fmt.Errorf("notes missing ticket type id: %w", err)
	}
	userID, err := uuid.Parse(notes[NoteUserID])
	if err != nil {
		return nil, fmt.Errorf("notes missing user id: %w", err)
	}
	qty, err := strconv.Atoi(notes[NoteQuantity])
	if err != nil || qty < 1 {
		return nil, fmt.Errorf("notes carry invalid quantity %q", notes[NoteQuantity])
	}
	return &BookingNotes{
		EventID:      eventID,
		TicketTypeID: ticketTypeID,
		UserID:       userID,
		Quantity:     qty,
		ContactName:  notes[NoteContactName],
		ContactEmail: notes[NoteContactEmail],
		ContactPhone: notes[NoteContactPhone],
	}, nil
}
