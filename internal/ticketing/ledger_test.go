package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventick/eventick/internal/models"
)

func TestCheckAvailability(t *testing.T) {
	store := newMemStore()
	tier := models.TicketType{ID: uuid.New(), Name: "Standard", Quantity: 100, Available: 37}
	event := models.Event{
		ID:          uuid.New(),
		Title:       "Art Expo",
		StartDate:   time.Now().Add(time.Hour),
		EndDate:     time.Now().Add(2 * time.Hour),
		Status:      models.StatusPublished,
		OrganizerID: uuid.New(),
		TicketTypes: []models.TicketType{tier},
	}
	store.addEvent(event)

	ledger := NewLedger(store)
	ctx := context.Background()

	available, err := ledger.CheckAvailability(ctx, event.ID, tier.ID)
	require.NoError(t, err)
	assert.Equal(t, 37, available)

	_, err = ledger.CheckAvailability(ctx, uuid.New(), tier.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = ledger.CheckAvailability(ctx, event.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)
}

func TestMergeTicketTypesPreservesSold(t *testing.T) {
	id := uuid.New()
	existing := []models.TicketType{
		{ID: id, Name: "Standard", Quantity: 100, Available: 60}, // 40 sold
	}
	incoming := []models.TicketType{
		{ID: id, Name: "Standard", Quantity: 150},
	}

	merged := MergeTicketTypes(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, 150, merged[0].Quantity)
	assert.Equal(t, 110, merged[0].Available)
}

func TestMergeTicketTypesClampsAtZero(t *testing.T) {
	id := uuid.New()
	existing := []models.TicketType{
		{ID: id, Name: "Standard", Quantity: 100, Available: 40}, // 60 sold
	}
	incoming := []models.TicketType{
		{ID: id, Name: "Standard", Quantity: 50},
	}

	// Shrinking below the sold count never goes negative.
	merged := MergeTicketTypes(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, 50, merged[0].Quantity)
	assert.Equal(t, 0, merged[0].Available)
}

func TestMergeTicketTypesNewTier(t *testing.T) {
	merged := MergeTicketTypes(nil, []models.TicketType{
		{Name: "Early Bird", Quantity: 25},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, uuid.Nil, merged[0].ID)
	assert.Equal(t, 25, merged[0].Available)
}

func TestMergeTicketTypesUnknownIDTreatedAsNew(t *testing.T) {
	existing := []models.TicketType{
		{ID: uuid.New(), Name: "Standard", Quantity: 100, Available: 50},
	}
	incoming := []models.TicketType{
		{ID: uuid.New(), Name: "Imported", Quantity: 30},
	}

	merged := MergeTicketTypes(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, uuid.Nil, merged[0].ID)
	assert.Equal(t, 30, merged[0].Available)
}

func TestMergeTicketTypesKeepsIncomingOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	existing := []models.TicketType{
		{ID: a, Name: "A", Quantity: 10, Available: 10, Position: 0},
		{ID: b, Name: "B", Quantity: 10, Available: 10, Position: 1},
	}
	incoming := []models.TicketType{
		{ID: b, Name: "B", Quantity: 10},
		{ID: a, Name: "A", Quantity: 10},
		{Name: "C", Quantity: 5},
	}

	merged := MergeTicketTypes(existing, incoming)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{merged[0].Name, merged[1].Name, merged[2].Name})
	for i := range merged {
		assert.Equal(t, i, merged[i].Position)
	}
}

func TestMergeTicketTypesDropsRemovedTiers(t *testing.T) {
	kept, removed := uuid.New(), uuid.New()
	existing := []models.TicketType{
		{ID: kept, Name: "Kept", Quantity: 10, Available: 5},
		{ID: removed, Name: "Removed", Quantity: 10, Available: 10},
	}
	incoming := []models.TicketType{
		{ID: kept, Name: "Kept", Quantity: 10},
	}

	merged := MergeTicketTypes(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, kept, merged[0].ID)
}
