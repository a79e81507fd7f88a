package ticketing

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTicketNotFound     = errors.New("ticket not found")

	// ErrInsufficientInventory means the requested quantity exceeded the
	// available pool at decrement time. A client error, retryable with a
	// lower quantity.
	ErrInsufficientInventory = errors.New("not enough tickets available")

	// ErrDuplicatePayment is raised by the store when the unique constraint
	// on the payment reference rejects a second insert. The issuer recovers
	// it into "already processed"; it never reaches a caller.
	ErrDuplicatePayment = errors.New("ticket already exists for payment reference")

	ErrAlreadyCheckedIn = errors.New("ticket already used for check-in")
	ErrInvalidSignature = errors.New("invalid ticket verification data")
	ErrExpiredLink      = errors.New("verification link has expired")
	ErrAccessDenied     = errors.New("access denied")
)
