package ticketing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/eventick/eventick/internal/models"
)

// memStore is an in-memory Store with the same atomicity guarantees as the
// SQL implementation, so the concurrency properties can be exercised without
// a database.
type memStore struct {
	mu      sync.Mutex
	events  map[uuid.UUID]*models.Event
	users   map[uuid.UUID]*models.User
	tickets map[uuid.UUID]*models.Ticket
	byRef   map[string]uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		events:  make(map[uuid.UUID]*models.Event),
		users:   make(map[uuid.UUID]*models.User),
		tickets: make(map[uuid.UUID]*models.Ticket),
		byRef:   make(map[string]uuid.UUID),
	}
}

func (s *memStore) addEvent(e models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = &e
}

func (s *memStore) addUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

func copyEvent(e *models.Event) *models.Event {
	cp := *e
	cp.TicketTypes = append([]models.TicketType(nil), e.TicketTypes...)
	return &cp
}

func (s *memStore) EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return copyEvent(e), nil
}

func (s *memStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) TicketByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	cp := *t
	if e, ok := s.events[t.EventID]; ok {
		cp.Event = copyEvent(e)
	}
	return &cp, nil
}

func (s *memStore) TicketByPaymentRef(ctx context.Context, ref string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byRef[ref]
	if !ok {
		return nil, nil
	}
	cp := *s.tickets[id]
	return &cp, nil
}

func (s *memStore) TicketsByUser(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ticket
	for _, t := range s.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memStore) TicketsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ticket
	for _, t := range s.tickets {
		if t.EventID == eventID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memStore) IssueTicket(ctx context.Context, ticket *models.Ticket, ticketTypeID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byRef[ticket.PaymentRef]; exists {
		return ErrDuplicatePayment
	}

	event, ok := s.events[ticket.EventID]
	if !ok {
		return ErrEventNotFound
	}
	tt := event.TicketTypeByID(ticketTypeID)
	if tt == nil {
		return ErrTicketTypeNotFound
	}
	if tt.Available < ticket.Quantity {
		return ErrInsufficientInventory
	}

	tt.Available -= ticket.Quantity
	cp := *ticket
	s.tickets[cp.ID] = &cp
	s.byRef[cp.PaymentRef] = cp.ID
	return nil
}

func (s *memStore) CheckIn(ctx context.Context, ticketID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return ErrTicketNotFound
	}
	if t.IsCheckedIn {
		return ErrAlreadyCheckedIn
	}
	t.IsCheckedIn = true
	return nil
}

func (s *memStore) available(eventID, ticketTypeID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[eventID]; ok {
		if tt := e.TicketTypeByID(ticketTypeID); tt != nil {
			return tt.Available
		}
	}
	return -1
}

func (s *memStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}
