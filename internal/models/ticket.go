package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Ticket is the attendee's durable proof of purchase. TicketType is a name
// snapshot, not a live reference, so it survives ticket-type edits and event
// deletion. The unique index on PaymentRef is the idempotency backstop: the
// database rejects a second insert for the same payment no matter how the
// verify call and the webhook interleave.
type Ticket struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	EventID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"event_id"`
	Event         *Event        `gorm:"foreignKey:EventID" json:"event,omitempty"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TicketType    string        `gorm:"not null" json:"ticket_type"`
	Quantity      int           `gorm:"not null;default:1" json:"quantity"`
	UnitPrice     int           `gorm:"not null" json:"unit_price"`
	TotalAmount   int           `gorm:"not null" json:"total_amount"`
	PaymentRef    string        `gorm:"uniqueIndex;not null" json:"payment_ref"`
	PaymentStatus PaymentStatus `gorm:"not null;default:'pending'" json:"payment_status"`
	QRCode        string        `json:"qr_code"`
	TicketNumber  string        `gorm:"uniqueIndex;not null" json:"ticket_number"`
	IsCheckedIn   bool          `gorm:"not null;default:false" json:"is_checked_in"`
	PurchasedAt   time.Time     `gorm:"not null" json:"purchased_at"`
	CreatedAt     time.Time     `json:"-"`
	UpdatedAt     time.Time     `json:"-"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if ticket.PurchasedAt.IsZero() {
		ticket.PurchasedAt = time.Now().UTC()
	}
	return
}
