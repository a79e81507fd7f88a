package ticketing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventick/eventick/internal/models"
)

// Store is the persistence boundary for the issuance core. The two mutating
// operations carry the atomicity contract: IssueTicket applies the inventory
// decrement and the ticket insert as one unit, CheckIn flips the check-in flag
// as a conditional write.
type Store interface {
	EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	TicketByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	// TicketByPaymentRef returns (nil, nil) when no ticket exists for the
	// reference; absence is the normal case on first issuance.
	TicketByPaymentRef(ctx context.Context, ref string) (*models.Ticket, error)
	TicketsByUser(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error)
	TicketsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error)

	// IssueTicket decrements the ticket type's available pool by
	// ticket.Quantity and inserts the ticket, atomically. Fails with
	// ErrInsufficientInventory when the pool is short and ErrDuplicatePayment
	// when the payment reference is already taken; in both cases nothing is
	// applied.
	IssueTicket(ctx context.Context, ticket *models.Ticket, ticketTypeID uuid.UUID) error

	// CheckIn sets is_checked_in on a ticket that does not have it set.
	// ErrAlreadyCheckedIn when the flag was already up; exactly one of any
	// number of concurrent calls succeeds.
	CheckIn(ctx context.Context, ticketID uuid.UUID) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Preload("TicketTypes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *GormStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) TicketByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).Preload("Event").Preload("User").First(&ticket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *GormStore) TicketByPaymentRef(ctx context.Context, ref string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).First(&ticket, "payment_ref = ?", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *GormStore) TicketsByUser(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).Preload("Event").
		Where("user_id = ?", userID).Order("purchased_at DESC").Find(&tickets).Error
	return tickets, err
}

func (s *GormStore) TicketsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).Preload("User").
		Where("event_id = ?", eventID).Order("purchased_at DESC").Find(&tickets).Error
	return tickets, err
}

func (s *GormStore) IssueTicket(ctx context.Context, ticket *models.Ticket, ticketTypeID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional decrement: one UPDATE, no read-then-write window.
		res := tx.Model(&models.TicketType{}).
			Where("id = ? AND available >= ?", ticketTypeID, ticket.Quantity).
			UpdateColumn("available", gorm.Expr("available - ?", ticket.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientInventory
		}

		if err := tx.Create(ticket).Error; err != nil {
			// The unique index on payment_ref is the final idempotency
			// backstop; the rollback undoes the decrement.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicatePayment
			}
			return err
		}
		return nil
	})
}

func (s *GormStore) CheckIn(ctx context.Context, ticketID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ? AND is_checked_in = ?", ticketID, false).
		Update("is_checked_in", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyCheckedIn
	}
	return nil
}
