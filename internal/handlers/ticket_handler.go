package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/eventick/eventick/internal/helpers"
	"github.com/eventick/eventick/internal/middleware"
	"github.com/eventick/eventick/internal/models"
	"github.com/eventick/eventick/internal/ticketing"
)

type FreeBookingRequest struct {
	EventID      uuid.UUID           `json:"event_id" binding:"required"`
	TicketTypeID uuid.UUID           `json:"ticket_type_id" binding:"required"`
	Quantity     int                 `json:"quantity" binding:"required,min=1"`
	ContactInfo  *ContactInfoRequest `json:"contact_info"`
}

// CreateFreeTicket books a zero-price tier without a payment order. It runs
// through the same issuer as paid tickets, with a synthetic payment reference.
func CreateFreeTicket(c *gin.Context) {
	var req FreeBookingRequest
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
	if err := gormDB.First(&event, "id = ?", req.EventID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}
	if event.Status != models.StatusPublished {
		helpers.RespondWithError(c, http.StatusBadRequest, "Event is not open for booking.")
		return
	}

	var ticketType models.TicketType
	err := gormDB.Where("id = ? AND event_id = ?", req.TicketTypeID, req.EventID).First(&ticketType).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket type not found.")
		return
	}
	if ticketType.Price != 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "This ticket type requires payment.")
		return
	}

	available, err := svc.Ledger.CheckAvailability(c.Request.Context(), req.EventID, req.TicketTypeID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}
	if req.Quantity > available {
		helpers.RespondWithError(c, http.StatusBadRequest, "Not enough tickets available.")
		return
	}

	var contact *ticketing.ContactInfo
	if req.ContactInfo != nil {
		contact = &ticketing.ContactInfo{
			Name:  req.ContactInfo.Name,
			Email: req.ContactInfo.Email,
			Phone: req.ContactInfo.Phone,
		}
	}

	result, err := svc.Issuer.IssueTicket(c.Request.Context(), ticketing.IssueRequest{
		EventID:      req.EventID,
		UserID:       userID,
		TicketTypeID: req.TicketTypeID,
		Quantity:     req.Quantity,
		PaymentRef:   "free-booking-" + uuid.NewString(),
		Contact:      contact,
		Source:       "free",
	})
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Ticket created successfully.",
		"ticket":      result.Ticket,
		"email_sent":  result.EmailSent,
		"email_error": result.EmailError,
	})
}

func GetMyTickets(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var tickets []models.Ticket
	err := gormDB.Preload("Event").
		Where("user_id = ?", userID).Order("purchased_at DESC").Find(&tickets).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func GetTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	role := middleware.GetRole(c)

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var ticket models.Ticket
	if err := gormDB.Preload("Event").Preload("User").First(&ticket, "id = ?", ticketID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	isOwner := ticket.UserID == userID
	isOrganizer := ticket.Event != nil && ticket.Event.OrganizerID == userID
	if !isOwner && !isOrganizer && role != models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusForbidden, "Access denied.")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// GetEventTickets lists an event's attendees for its organizer or an admin.
func GetEventTickets(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	role := middleware.GetRole(c)

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.First(&event, "id = ?", eventID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}
	if role != models.RoleAdmin && event.OrganizerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "Access denied.")
		return
	}

	var tickets []models.Ticket
	err = gormDB.Preload("User").
		Where("event_id = ?", eventID).Order("purchased_at DESC").Find(&tickets).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// TicketQR renders the ticket's verification URL as a PNG for the owner.
func TicketQR(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var ticket models.Ticket
	if err := gormDB.First(&ticket, "id = ?", ticketID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}
	if ticket.UserID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this ticket's QR code.")
		return
	}

	png, err := qrcode.Encode(ticket.QRCode, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// ShareTicketLink mints a fresh public share link under its own signature
// scope. The link ages out after thirty days.
func ShareTicketLink(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
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

	var ticket models.Ticket
	if err := gormDB.First(&ticket, "id = ?", ticketID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}
	if ticket.UserID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to share this ticket.")
		return
	}

	url := svc.Signer.ShareURL(svc.BaseURL, ticket.ID.String(), ticket.EventID.String(), time.Now())
	c.JSON(http.StatusOK, gin.H{"share_url": url})
}

type CheckInRequest struct {
	TicketID uuid.UUID `json:"ticket_id" binding:"required"`
	QRData   string    `json:"qr_data" binding:"required"`
}

// VerifyTicket is the staff check-in endpoint.
func VerifyTicket(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	role := middleware.GetRole(c)

	svc := middleware.GetServices(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Service not available.")
		return
	}

	ticket, err := svc.Verifier.VerifyAndCheckIn(c.Request.Context(), req.TicketID, req.QRData,
		ticketing.Actor{ID: userID, Role: role})
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ticket verified successfully.",
		"ticket":  ticket,
	})
}

type PublicVerifyRequest struct {
	TicketID  uuid.UUID `json:"ticket_id" binding:"required"`
	Signature string    `json:"signature" binding:"required"`
	Timestamp int64     `json:"timestamp" binding:"required"`
}

// PublicVerifyTicket is the unauthenticated status check behind the QR link.
func PublicVerifyTicket(c *gin.Context) {
	var req PublicVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required verification parameters.")
		return
	}

	svc := middleware.GetServices(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Service not available.")
		return
	}

	status, view, err := svc.Verifier.PublicVerify(c.Request.Context(),
		req.TicketID, req.Signature, req.Timestamp, time.Now())
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"ticket": view,
	})
}
