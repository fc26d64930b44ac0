package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Configuration errors
	ErrCopilotUnavailable = errors.New("copilot is not configured")

	// Not found errors
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrDraftNotFound    = errors.New("draft not found")
	ErrCustomerNotFound = errors.New("customer not found")

	// Validation errors
	ErrInvalidTicket      = errors.New("invalid ticket")
	ErrInvalidDraftStatus = errors.New("invalid draft status")
	ErrEmptyQuery         = errors.New("query cannot be empty")
)

// Context keys for error values
const (
	TicketIDKey   = "ticket_id"
	DraftIDKey    = "draft_id"
	CustomerIDKey = "customer_id"
	ScopeKey      = "scope"
)
