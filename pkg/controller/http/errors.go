package http

import (
	"errors"
	"net/http"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/secmon-lab/briareos/pkg/utils/errutil"
)

var validationDetails = []struct {
	err    error
	detail string
}{
	{model.ErrMissingRequired, "Invalid ticket: a required field is missing"},
	{model.ErrInvalidEmail, "Invalid ticket: customer_email is not a valid email address"},
	{model.ErrTooShort, "Invalid ticket: subject must be at least 3 and description at least 10 characters"},
	{model.ErrInvalidPriority, "Invalid ticket: priority must be one of low, medium, high, urgent"},
}

// statusOf maps use case sentinels to a status code and a client-facing detail.
// An empty detail means the error message is shown.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrTicketNotFound):
		return http.StatusNotFound, "Ticket not found"
	case errors.Is(err, usecase.ErrDraftNotFound):
		return http.StatusNotFound, "Draft not found"
	case errors.Is(err, usecase.ErrCustomerNotFound):
		return http.StatusNotFound, "Customer not found"
	case errors.Is(err, usecase.ErrEmptyQuery):
		return http.StatusBadRequest, "Query cannot be empty"
	case errors.Is(err, usecase.ErrInvalidDraftStatus):
		return http.StatusUnprocessableEntity, "Status must be one of pending, accepted, discarded"
	case errors.Is(err, usecase.ErrInvalidTicket):
		for _, v := range validationDetails {
			if errors.Is(err, v.err) {
				return http.StatusUnprocessableEntity, v.detail
			}
		}
		return http.StatusUnprocessableEntity, "Invalid ticket"
	case errors.Is(err, usecase.ErrCopilotUnavailable):
		return http.StatusServiceUnavailable, "Copilot unavailable: " + usecase.ErrCopilotUnavailable.Error()
	default:
		return http.StatusInternalServerError, ""
	}
}

// handleError writes the mapped response. prefix is put in front of the
// message of unexpected errors.
func handleError(w http.ResponseWriter, r *http.Request, err error, prefix string) {
	status, detail := statusOf(err)
	if detail == "" && prefix != "" {
		detail = prefix + ": " + err.Error()
	}
	errutil.HandleHTTP(r.Context(), w, err, status, detail)
}
