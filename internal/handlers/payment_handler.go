package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventick/eventick/internal/helpers"
	"github.com/eventick/eventick/internal/logging"
	"github.com/eventick/eventick/internal/middleware"
	"github.com/eventick/eventick/internal/models"
	"github.com/eventick/eventick/internal/monitoring"
	"github.com/eventick/eventick/internal/payments"
	"github.com/eventick/eventick/internal/ticketing"
)

type ContactInfoRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

type PaymentOrderRequest struct {
	EventID      uuid.UUID          `json:"event_id" binding:"required"`
	TicketTypeID uuid.UUID          `json:"ticket_type_id" binding:"required"`
	Quantity     int                `json:"quantity" binding:"required,min=1"`
	ContactInfo  ContactInfoRequest `json:"contact_info" binding:"required"`
}

// CreatePaymentOrder opens a provider order for a ticket purchase. The
// availability check here is advisory; stock is only reserved when the
// confirmed payment reaches the issuer.
func CreatePaymentOrder(c *gin.Context) {
	var req PaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB := middleware.GetDB(c)
	svc := middleware.GetServices(c)
	if gormDB == nil || svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Service not available.")
		return
	}

	var event models.Event
	err := gormDB.
		Preload("TicketTypes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", req.EventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if event.Status != models.StatusPublished {
		helpers.RespondWithError(c, http.StatusBadRequest, "Event is not open for booking.")
		return
	}

	ticketType := event.TicketTypeByID(req.TicketTypeID)
	if ticketType == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket type not found.")
		return
	}
	if req.Quantity > ticketType.Available {
		helpers.RespondWithError(c, http.StatusBadRequest, "Not enough tickets available.")
		return
	}

	notes := payments.BookingNotes{
		EventID:      event.ID,
		TicketTypeID: ticketType.ID,
		UserID:       userID,
		Quantity:     req.Quantity,
		ContactName:  req.ContactInfo.Name,
		ContactEmail: req.ContactInfo.Email,
		ContactPhone: req.ContactInfo.Phone,
	}

	// Provider amounts are in minor currency units.
	amount := int64(ticketType.Price) * int64(req.Quantity) * 100

	order, err := svc.Payments.CreateOrder(c.Request.Context(), payments.CreateOrderRequest{
		Amount:   amount,
		Currency: "INR",
		Receipt:  payments.NewReceipt(),
		Notes:    notes.ToMap(),
	})
	if err != nil {
		logging.Get().Error("payment order creation failed", zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create payment order.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"order_id":         order.ID,
		"amount":           order.Amount,
		"currency":         order.Currency,
		"event_title":      event.Title,
		"ticket_type_name": ticketType.Name,
		"quantity":         req.Quantity,
	})
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment is the synchronous confirmation path: the client returns from
// checkout with order, payment and signature. Nothing the client sent is
// trusted until the signature check passes and the order is re-fetched from
// the provider.
func VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required payment parameters.")
		return
	}

	svc := middleware.GetServices(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Service not available.")
		return
	}

	if !svc.Payments.VerifyCheckoutSignature(req.OrderID, req.PaymentID, req.Signature) {
		logging.Get().Warn("checkout signature verification failed",
			zap.String("order_id", req.OrderID),
			zap.String("payment_id", req.PaymentID))
		helpers.RespondWithError(c, http.StatusBadRequest, "Payment verification failed - invalid signature.")
		return
	}

	ctx := c.Request.Context()
	order, err := svc.Payments.FetchOrder(ctx, req.OrderID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch payment order.")
		return
	}
	payment, err := svc.Payments.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch payment.")
		return
	}
	if payment.Status != "captured" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Payment not captured.")
		return
	}

	notes, err := payments.ParseBookingNotes(order.Notes)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid order data.")
		return
	}

	result, err := svc.Issuer.IssueTicket(ctx, ticketing.IssueRequest{
		EventID:      notes.EventID,
		UserID:       notes.UserID,
		TicketTypeID: notes.TicketTypeID,
		Quantity:     notes.Quantity,
		PaymentRef:   payment.ID,
		Contact: &ticketing.ContactInfo{
			Name:  notes.ContactName,
			Email: notes.ContactEmail,
			Phone: notes.ContactPhone,
		},
		Source: "verify",
	})
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	message := "Payment verified and ticket created successfully."
	if result.AlreadyIssued {
		message = "Payment already processed."
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     message,
		"ticket_id":   result.Ticket.ID,
		"payment_id":  payment.ID,
		"email_sent":  result.EmailSent,
		"email_error": result.EmailError,
	})
}

// HandleWebhook is the asynchronous confirmation path. The provider signs the
// raw body with the webhook secret; an unverifiable delivery is rejected with
// no side effects. Only payment.captured triggers issuance, every other event
// type is acknowledged and ignored.
func HandleWebhook(c *gin.Context) {
	svc := middleware.GetServices(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Service not available.")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Failed to read request body.")
		return
	}

	if !svc.Payments.WebhookConfigured() {
		logging.Get().Warn("webhook rejected: signing secret not configured")
		helpers.RespondWithError(c, http.StatusBadRequest, "Webhook secret not configured.")
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" {
		monitoring.WebhookEvent("unknown", "missing_signature")
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing signature.")
		return
	}

	if !svc.Payments.VerifyWebhookSignature(body, signature) {
		logging.Get().Warn("webhook signature verification failed")
		monitoring.WebhookEvent("unknown", "invalid_signature")
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid signature.")
		return
	}

	var event payments.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload.")
		return
	}

	if event.Event != payments.EventPaymentCaptured {
		monitoring.WebhookEvent(event.Event, "ignored")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	payment := event.Payload.Payment.Entity
	notes, err := payments.ParseBookingNotes(payment.Notes)
	if err != nil {
		monitoring.WebhookEvent(event.Event, "invalid_notes")
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment data.")
		return
	}

	result, err := svc.Issuer.IssueTicket(c.Request.Context(), ticketing.IssueRequest{
		EventID:      notes.EventID,
		UserID:       notes.UserID,
		TicketTypeID: notes.TicketTypeID,
		Quantity:     notes.Quantity,
		PaymentRef:   payment.ID,
		Contact: &ticketing.ContactInfo{
			Name:  notes.ContactName,
			Email: notes.ContactEmail,
			Phone: notes.ContactPhone,
		},
		Source: "webhook",
	})
	if err != nil {
		monitoring.WebhookEvent(event.Event, "failed")
		helpers.RespondWithDomainError(c, err)
		return
	}

	monitoring.WebhookEvent(event.Event, "processed")
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"ticket_id": result.Ticket.ID,
	})
}
