package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusCancelled EventStatus = "cancelled"
)

// allowedTransitions is the only legal status graph. There is no way out of
// cancelled, and a published event cannot go back to draft.
var allowedTransitions = map[EventStatus][]EventStatus{
	StatusDraft:     {StatusPublished, StatusCancelled},
	StatusPublished: {StatusCancelled},
	StatusCancelled: {},
}

func ValidStatus(s EventStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

func CanTransition(from, to EventStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Event struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"not null" json:"description"`
	Image       string         `json:"image,omitempty"`
	Location    string         `gorm:"not null" json:"location"`
	StartDate   time.Time      `gorm:"not null" json:"start_date"`
	EndDate     time.Time      `gorm:"not null" json:"end_date"`
	Status      EventStatus    `gorm:"not null;default:'draft'" json:"status"`
	Tags        []string       `gorm:"serializer:json" json:"tags"`
	OrganizerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer   *User          `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	TicketTypes []TicketType   `gorm:"foreignKey:EventID" json:"ticket_types"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = StatusDraft
	}
	if !ValidStatus(event.Status) {
		return fmt.Errorf("invalid event status %q", event.Status)
	}
	return
}

// TicketTypeByID finds an embedded ticket type by its identifier.
func (event *Event) TicketTypeByID(id uuid.UUID) *TicketType {
	for i := range event.TicketTypes {
		if event.TicketTypes[i].ID == id {
			return &event.TicketTypes[i]
		}
	}
	return nil
}
