package ticketing

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventick/eventick/internal/models"
)

// Ledger answers availability questions for a ticket type. Reads here are
// advisory: order creation checks availability but never reserves stock, the
// hard reservation is the conditional decrement inside Store.IssueTicket.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// CheckAvailability returns the current available units for a ticket type.
func (l *Ledger) CheckAvailability(ctx context.Context, eventID, ticketTypeID uuid.UUID) (int, error) {
	event, err := l.store.EventByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	tt := event.TicketTypeByID(ticketTypeID)
	if tt == nil {
		return 0, ErrTicketTypeNotFound
	}
	return tt.Available, nil
}

// MergeTicketTypes applies an organizer's ticket-type edit on top of the
// existing tiers, preserving the sold count: available becomes
// new_quantity - sold, clamped at zero. Tiers without a matching ID are new
// and start fully available. Incoming order is kept as the display order.
func MergeTicketTypes(existing, incoming []models.TicketType) []models.TicketType {
	byID := make(map[uuid.UUID]*models.TicketType, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	merged := make([]models.TicketType, 0, len(incoming))
	for i, in := range incoming {
		in.Position = i
		if old, ok := byID[in.ID]; in.ID != uuid.Nil && ok {
			in.EventID = old.EventID
			in.Available = in.Quantity - old.Sold()
			if in.Available < 0 {
				in.Available = 0
			}
		} else {
			in.ID = uuid.Nil // assigned on create
			in.Available = in.Quantity
		}
		merged = append(merged, in)
	}
	return merged
}
