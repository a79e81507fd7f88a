package ticketing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventick/eventick/internal/models"
	"github.com/eventick/eventick/internal/monitoring"
	"github.com/eventick/eventick/internal/signer"
)

// ContactInfo is the recipient the confirmation goes to. Explicitly supplied
// contact info wins over the purchaser's account defaults.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Notifier delivers the purchase confirmation. Delivery failure never affects
// issuance.
type Notifier interface {
	SendTicketConfirmation(ctx context.Context, to ContactInfo, ticket *models.Ticket, event *models.Event) error
}

type IssueRequest struct {
	EventID      uuid.UUID
	UserID       uuid.UUID
	TicketTypeID uuid.UUID
	Quantity     int
	PaymentRef   string
	Contact      *ContactInfo
	// Source tags metrics with the path that triggered issuance
	// (verify, webhook, free).
	Source string
}

type IssueResult struct {
	Ticket *models.Ticket
	// AlreadyIssued is true when the payment reference had been processed
	// before; Ticket is then the pre-existing record.
	AlreadyIssued bool
	EmailSent     bool
	EmailError    string
}

// Issuer is the single authorized path by which a Ticket comes to exist.
type Issuer struct {
	store    Store
	signer   *signer.Signer
	notifier Notifier
	baseURL  string
	log      *zap.Logger
}

func NewIssuer(store Store, sig *signer.Signer, notifier Notifier, baseURL string, log *zap.Logger) *Issuer {
	return &Issuer{store: store, signer: sig, notifier: notifier, baseURL: baseURL, log: log}
}

// IssueTicket creates exactly one ticket per payment reference. The lookup by
// reference runs first so a replay from any confirmation path returns the
// existing ticket; a race where two paths pass the lookup together is settled
// by the store's unique constraint and recovered here as "already processed".
func (i *Issuer) IssueTicket(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	if req.PaymentRef == "" {
		return nil, fmt.Errorf("payment reference is required")
	}

	if existing, err := i.store.TicketByPaymentRef(ctx, req.PaymentRef); err != nil {
		return nil, err
	} else if existing != nil {
		return &IssueResult{Ticket: existing, AlreadyIssued: true}, nil
	}

	event, err := i.store.EventByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	tt := event.TicketTypeByID(req.TicketTypeID)
	if tt == nil {
		return nil, ErrTicketTypeNotFound
	}
	if req.Quantity > tt.Available {
		return nil, ErrInsufficientInventory
	}

	user, err := i.store.UserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	number, err := NewTicketNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ticket := &models.Ticket{
		ID:            uuid.New(),
		EventID:       event.ID,
		UserID:        user.ID,
		TicketType:    tt.Name,
		Quantity:      req.Quantity,
		UnitPrice:     tt.Price,
		TotalAmount:   tt.Price * req.Quantity,
		PaymentRef:    req.PaymentRef,
		PaymentStatus: models.PaymentCompleted,
		TicketNumber:  number,
		PurchasedAt:   now,
	}
	ticket.QRCode = i.signer.VerificationURL(i.baseURL, ticket.ID.String(), event.ID.String(), now)

	if err := i.store.IssueTicket(ctx, ticket, tt.ID); err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			// The other confirmation path won the insert race.
			existing, lookupErr := i.store.TicketByPaymentRef(ctx, req.PaymentRef)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing == nil {
				return nil, err
			}
			return &IssueResult{Ticket: existing, AlreadyIssued: true}, nil
		}
		if errors.Is(err, ErrInsufficientInventory) {
			monitoring.IssuanceFailed("insufficient_inventory")
		}
		return nil, err
	}
	monitoring.TicketIssued(req.Source, req.Quantity)

	result := &IssueResult{Ticket: ticket}
	result.EmailSent, result.EmailError = i.notify(ctx, req.Contact, user, ticket, event)
	return result, nil
}

func (i *Issuer) notify(ctx context.Context, contact *ContactInfo, user *models.User, ticket *models.Ticket, event *models.Event) (bool, string) {
	if i.notifier == nil {
		return false, "notifications not configured"
	}
	to := ContactInfo{Name: user.Name, Email: user.Email, Phone: user.PhoneNumber}
	if contact != nil {
		if contact.Name != "" {
			to.Name = contact.Name
		}
		if contact.Email != "" {
			to.Email = contact.Email
		}
		if contact.Phone != "" {
			to.Phone = contact.Phone
		}
	}
	if err := i.notifier.SendTicketConfirmation(ctx, to, ticket, event); err != nil {
		i.log.Warn("ticket confirmation email failed",
			zap.String("ticket_number", ticket.TicketNumber),
			zap.String("recipient", to.Email),
			zap.Error(err))
		return false, err.Error()
	}
	return true, ""
}
