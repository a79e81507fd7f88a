package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketType is a flat named tier with a quantity pool. Available is mutated
// only by the issuer's conditional decrement; 0 <= Available <= Quantity.
type TicketType struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int       `gorm:"not null" json:"price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Available   int       `gorm:"not null" json:"available"`
	Position    int       `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (tt *TicketType) BeforeCreate(tx *gorm.DB) (err error) {
	if tt.ID == uuid.Nil {
		tt.ID = uuid.New()
	}
	return
}

// Sold is the number of units already issued against this tier.
func (tt *TicketType) Sold() int {
	return tt.Quantity - tt.Available
}
