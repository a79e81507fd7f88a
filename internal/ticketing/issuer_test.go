package ticketing

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventick/eventick/internal/models"
	"github.com/eventick/eventick/internal/signer"
)

// recordingNotifier captures confirmation sends and can be told to fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []ContactInfo
	fail error
}

func (n *recordingNotifier) SendTicketConfirmation(ctx context.Context, to ContactInfo, ticket *models.Ticket, event *models.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, to)
	return nil
}

type issuerFixture struct {
	store    *memStore
	issuer   *Issuer
	notifier *recordingNotifier
	signer   *signer.Signer

	event models.Event
	tier  models.TicketType
	user  models.User
}

func newIssuerFixture(t *testing.T, available int) *issuerFixture {
	t.Helper()

	store := newMemStore()
	sig := signer.New("test-secret")
	notifier := &recordingNotifier{}

	tier := models.TicketType{
		ID:        uuid.New(),
		Name:      "General Admission",
		Price:     50000,
		Quantity:  available,
		Available: available,
	}
	event := models.Event{
		ID:          uuid.New(),
		Title:       "Summer Music Festival",
		Location:    "Mumbai",
		StartDate:   time.Now().Add(48 * time.Hour),
		EndDate:     time.Now().Add(72 * time.Hour),
		Status:      models.StatusPublished,
		OrganizerID: uuid.New(),
		TicketTypes: []models.TicketType{tier},
	}
	tier.EventID = event.ID
	user := models.User{
		ID:    uuid.New(),
		Name:  "Asha Rao",
		Email: "asha@example.com",
	}
	store.addEvent(event)
	store.addUser(user)

	return &issuerFixture{
		store:    store,
		issuer:   NewIssuer(store, sig, notifier, "http://localhost:3000", zap.NewNop()),
		notifier: notifier,
		signer:   sig,
		event:    event,
		tier:     tier,
		user:     user,
	}
}

func (f *issuerFixture) request(ref string, quantity int) IssueRequest {
	return IssueRequest{
		EventID:      f.event.ID,
		UserID:       f.user.ID,
		TicketTypeID: f.tier.ID,
		Quantity:     quantity,
		PaymentRef:   ref,
		Source:       "verify",
	}
}

func TestIssueTicket(t *testing.T) {
	f := newIssuerFixture(t, 10)

	result, err := f.issuer.IssueTicket(context.Background(), f.request("pay_001", 2))
	require.NoError(t, err)
	require.NotNil(t, result.Ticket)

	assert.False(t, result.AlreadyIssued)
	assert.Equal(t, "pay_001", result.Ticket.PaymentRef)
	assert.Equal(t, models.PaymentCompleted, result.Ticket.PaymentStatus)
	assert.Equal(t, "General Admission", result.Ticket.TicketType)
	assert.Equal(t, 2, result.Ticket.Quantity)
	assert.Equal(t, 50000, result.Ticket.UnitPrice)
	assert.Equal(t, 100000, result.Ticket.TotalAmount)
	assert.Regexp(t, `^TKT-\d+-[0-9A-F]{8}$`, result.Ticket.TicketNumber)
	assert.Equal(t, 8, f.store.available(f.event.ID, f.tier.ID))

	assert.True(t, result.EmailSent)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "asha@example.com", f.notifier.sent[0].Email)
}

func TestIssueTicketQRPayloadVerifies(t *testing.T) {
	f := newIssuerFixture(t, 10)

	result, err := f.issuer.IssueTicket(context.Background(), f.request("pay_001", 1))
	require.NoError(t, err)

	params, err := signer.ParseLink(result.Ticket.QRCode)
	require.NoError(t, err)
	assert.Equal(t, result.Ticket.ID.String(), params.TicketID)
	assert.True(t, f.signer.Verify(signer.ScopeVerify, params.Signature,
		result.Ticket.ID.String(), f.event.ID.String(), strconv.FormatInt(params.Timestamp, 10)))
}

func TestIssueTicketIdempotent(t *testing.T) {
	f := newIssuerFixture(t, 10)
	ctx := context.Background()

	first, err := f.issuer.IssueTicket(ctx, f.request("pay_001", 2))
	require.NoError(t, err)

	second, err := f.issuer.IssueTicket(ctx, f.request("pay_001", 2))
	require.NoError(t, err)

	assert.True(t, second.AlreadyIssued)
	assert.Equal(t, first.Ticket.ID, second.Ticket.ID)
	assert.Equal(t, 1, f.store.ticketCount())
	// Inventory was only decremented once.
	assert.Equal(t, 8, f.store.available(f.event.ID, f.tier.ID))
	// The replay does not resend the confirmation.
	assert.Len(t, f.notifier.sent, 1)
}

func TestIssueTicketConcurrentSamePaymentRef(t *testing.T) {
	f := newIssuerFixture(t, 100)
	ctx := context.Background()

	const workers = 16
	results := make([]*IssueResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results[w], errs[w] = f.issuer.IssueTicket(ctx, f.request("pay_race", 1))
		}(w)
	}
	wg.Wait()

	var issued int
	for w := 0; w < workers; w++ {
		require.NoError(t, errs[w])
		require.NotNil(t, results[w].Ticket)
		assert.Equal(t, "pay_race", results[w].Ticket.PaymentRef)
		if !results[w].AlreadyIssued {
			issued++
		}
	}
	assert.Equal(t, 1, issued, "exactly one call should create the ticket")
	assert.Equal(t, 1, f.store.ticketCount())
	assert.Equal(t, 99, f.store.available(f.event.ID, f.tier.ID))
}

func TestIssueTicketConcurrentInventoryRace(t *testing.T) {
	f := newIssuerFixture(t, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			_, errs[w] = f.issuer.IssueTicket(ctx, f.request("pay_"+strconv.Itoa(w), 6))
		}(w)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientInventory):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 4, f.store.available(f.event.ID, f.tier.ID))
}

func TestIssueTicketInsufficientInventory(t *testing.T) {
	f := newIssuerFixture(t, 3)

	_, err := f.issuer.IssueTicket(context.Background(), f.request("pay_001", 4))
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Equal(t, 0, f.store.ticketCount())
	assert.Equal(t, 3, f.store.available(f.event.ID, f.tier.ID))
}

func TestIssueTicketExhaustsInventoryExactly(t *testing.T) {
	f := newIssuerFixture(t, 3)
	ctx := context.Background()

	_, err := f.issuer.IssueTicket(ctx, f.request("pay_001", 3))
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.available(f.event.ID, f.tier.ID))

	_, err = f.issuer.IssueTicket(ctx, f.request("pay_002", 1))
	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestIssueTicketValidation(t *testing.T) {
	f := newIssuerFixture(t, 10)
	ctx := context.Background()

	_, err := f.issuer.IssueTicket(ctx, f.request("pay_001", 0))
	assert.Error(t, err)

	_, err = f.issuer.IssueTicket(ctx, f.request("", 1))
	assert.Error(t, err)

	assert.Equal(t, 0, f.store.ticketCount())
}

func TestIssueTicketUnknownReferences(t *testing.T) {
	f := newIssuerFixture(t, 10)
	ctx := context.Background()

	req := f.request("pay_001", 1)
	req.EventID = uuid.New()
	_, err := f.issuer.IssueTicket(ctx, req)
	assert.ErrorIs(t, err, ErrEventNotFound)

	req = f.request("pay_002", 1)
	req.TicketTypeID = uuid.New()
	_, err = f.issuer.IssueTicket(ctx, req)
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)

	req = f.request("pay_003", 1)
	req.UserID = uuid.New()
	_, err = f.issuer.IssueTicket(ctx, req)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIssueTicketEmailFailureDoesNotFailIssuance(t *testing.T) {
	f := newIssuerFixture(t, 10)
	f.notifier.fail = errors.New("smtp: connection refused")

	result, err := f.issuer.IssueTicket(context.Background(), f.request("pay_001", 1))
	require.NoError(t, err)

	assert.False(t, result.EmailSent)
	assert.Equal(t, "smtp: connection refused", result.EmailError)
	assert.Equal(t, 1, f.store.ticketCount())
}

func TestIssueTicketContactInfoPreferred(t *testing.T) {
	f := newIssuerFixture(t, 10)

	req := f.request("pay_001", 1)
	req.Contact = &ContactInfo{Name: "Gift Recipient", Email: "gift@example.com"}
	_, err := f.issuer.IssueTicket(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "gift@example.com", f.notifier.sent[0].Email)
	assert.Equal(t, "Gift Recipient", f.notifier.sent[0].Name)
}

func TestIssueTicketPartialContactFallsBack(t *testing.T) {
	f := newIssuerFixture(t, 10)

	req := f.request("pay_001", 1)
	req.Contact = &ContactInfo{Phone: "+911234567890"}
	_, err := f.issuer.IssueTicket(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "asha@example.com", f.notifier.sent[0].Email)
	assert.Equal(t, "Asha Rao", f.notifier.sent[0].Name)
	assert.Equal(t, "+911234567890", f.notifier.sent[0].Phone)
}
