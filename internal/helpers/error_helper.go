package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventick/eventick/internal/ticketing"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithDomainError maps a ticketing error to its HTTP status. Unknown
// errors become a 500 with no internal detail leaked.
func RespondWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ticketing.ErrEventNotFound),
		errors.Is(err, ticketing.ErrTicketTypeNotFound),
		errors.Is(err, ticketing.ErrUserNotFound),
		errors.Is(err, ticketing.ErrTicketNotFound):
		RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ticketing.ErrInsufficientInventory),
		errors.Is(err, ticketing.ErrAlreadyCheckedIn),
		errors.Is(err, ticketing.ErrInvalidSignature),
		errors.Is(err, ticketing.ErrExpiredLink):
		RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ticketing.ErrAccessDenied):
		RespondWithError(c, http.StatusForbidden, err.Error())
	default:
		RespondWithError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
