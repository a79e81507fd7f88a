package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventick/eventick/internal/helpers"
	"github.com/eventick/eventick/internal/middleware"
	"github.com/eventick/eventick/internal/models"
	"github.com/eventick/eventick/internal/ticketing"
)

type TicketTypeRequest struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Price       int        `json:"price"`
	Quantity    int        `json:"quantity" binding:"required,min=1"`
}

type EventRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description" binding:"required"`
	Image       string              `json:"image"`
	Location    string              `json:"location" binding:"required"`
	StartDate   time.Time           `json:"start_date" binding:"required"`
	EndDate     time.Time           `json:"end_date" binding:"required"`
	Tags        []string            `json:"tags"`
	Status      models.EventStatus  `json:"status"`
	TicketTypes []TicketTypeRequest `json:"ticket_types" binding:"required,min=1,dive"`
}

func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	for _, tt := range req.TicketTypes {
		if tt.Price < 0 {
			helpers.RespondWithError(c, http.StatusBadRequest, "Ticket price cannot be negative.")
			return
		}
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

	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !models.ValidStatus(status) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event status.")
		return
	}

	ticketTypes := make([]models.TicketType, 0, len(req.TicketTypes))
	for i, tt := range req.TicketTypes {
		ticketTypes = append(ticketTypes, models.TicketType{
			Name:        tt.Name,
			Description: tt.Description,
			Price:       tt.Price,
			Quantity:    tt.Quantity,
			Available:   tt.Quantity,
			Position:    i,
		})
	}

	event := models.Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      status,
		Tags:        req.Tags,
		OrganizerID: userID,
		TicketTypes: ticketTypes,
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Event created successfully.",
		"event_id": event.ID,
	})
}

func GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	err := gormDB.
		Preload("TicketTypes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Organizer").
		Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, event)
}

func ListEvents(c *gin.Context) {
	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := gormDB.Model(&models.Event{}).Where("status = ?", models.StatusPublished)
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("tags LIKE ?", "%\""+tag+"\"%")
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location = ?", location)
	}

	var totalCount int64
	query.Count(&totalCount)

	var events []models.Event
	offset := (pageNum - 1) * limitNum
	err = query.
		Preload("TicketTypes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Organizer").
		Offset(offset).Limit(limitNum).Order("start_date ASC").Find(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":      events,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func UpdateEvent(c *gin.Context) {
	eventID := c.Param("id")
	userID, exists := middleware.GetUserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	role := middleware.GetRole(c)

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB := middleware.GetDB(c)
	if gormDB == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	err := gormDB.
		Preload("TicketTypes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}

	if role != models.RoleAdmin && event.OrganizerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to update this event.")
		return
	}

	if req.Status != "" && req.Status != event.Status {
		if !models.ValidStatus(req.Status) || !models.CanTransition(event.Status, req.Status) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid status transition.")
			return
		}
		event.Status = req.Status
	}

	event.Title = req.Title
	event.Description = req.Description
	if req.Image != "" {
		event.Image = req.Image
	}
	event.Location = req.Location
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	if req.Tags != nil {
		event.Tags = req.Tags
	}

	incoming := make([]models.TicketType, 0, len(req.TicketTypes))
	for _, tt := range req.TicketTypes {
		if tt.Price < 0 {
			helpers.RespondWithError(c, http.StatusBadRequest, "Ticket price cannot be negative.")
			return
		}
		in := models.TicketType{
			Name:        tt.Name,
			Description: tt.Description,
			Price:       tt.Price,
			Quantity:    tt.Quantity,
		}
		if tt.ID != nil {
			in.ID = *tt.ID
		}
		incoming = append(incoming, in)
	}
	merged := ticketing.MergeTicketTypes(event.TicketTypes, incoming)

	keep := make(map[uuid.UUID]bool, len(merged))
	err = gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("TicketTypes").Save(&event).Error; err != nil {
			return err
		}
		for i := range merged {
			merged[i].EventID = event.ID
			if merged[i].ID == uuid.Nil {
				if err := tx.Create(&merged[i]).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Save(&merged[i]).Error; err != nil {
					return err
				}
			}
			keep[merged[i].ID] = true
		}
		for _, old := range event.TicketTypes {
			if !keep[old.ID] {
				if err := tx.Delete(&models.TicketType{}, "id = ?", old.ID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	event.TicketTypes = merged
	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

// DeleteEvent removes an event. Tickets already issued are the attendee's
// proof of purchase and are never cascade-deleted.
func DeleteEvent(c *gin.Context) {
	eventID := c.Param("id")
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

	query := gormDB.Where("id = ?", eventID)
	if role != models.RoleAdmin {
		query = query.Where("organizer_id = ?", userID)
	}

	result := query.Delete(&models.Event{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to delete.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully.",
	})
}
