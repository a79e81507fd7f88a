package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to EventStatus
		want     bool
	}{
		{StatusDraft, StatusPublished, true},
		{StatusDraft, StatusCancelled, true},
		{StatusPublished, StatusCancelled, true},
		{StatusPublished, StatusDraft, false},
		{StatusCancelled, StatusDraft, false},
		{StatusCancelled, StatusPublished, false},
		// No-op transitions are always allowed.
		{StatusDraft, StatusDraft, true},
		{StatusPublished, StatusPublished, true},
		{StatusCancelled, StatusCancelled, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusDraft))
	assert.True(t, ValidStatus(StatusPublished))
	assert.True(t, ValidStatus(StatusCancelled))
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
}

func TestTicketTypeByID(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	event := Event{TicketTypes: []TicketType{
		{ID: a, Name: "Standard"},
		{ID: b, Name: "VIP"},
	}}

	found := event.TicketTypeByID(b)
	if assert.NotNil(t, found) {
		assert.Equal(t, "VIP", found.Name)
	}
	assert.Nil(t, event.TicketTypeByID(uuid.New()))

	// The pointer aliases the slice element, so callers can mutate in place.
	found.Available = 5
	assert.Equal(t, 5, event.TicketTypes[1].Available)
}

func TestTicketTypeSold(t *testing.T) {
	tt := TicketType{Quantity: 100, Available: 37}
	assert.Equal(t, 63, tt.Sold())
}
