package model

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/types"
)

const (
	minSubjectLength     = 3
	minDescriptionLength = 10
)

// NewTicket is the input for opening a ticket on behalf of a customer
type NewTicket struct {
	CustomerEmail   string
	CustomerName    string
	CustomerCompany string
	Subject         string
	Description     string
	Priority        types.TicketPriority
	AutoGenerate    bool
}

// Validate checks the input and normalizes the email and priority in place
func (x *NewTicket) Validate() error {
	email := strings.TrimSpace(x.CustomerEmail)
	if email == "" {
		return goerr.Wrap(ErrMissingRequired, "customer email is required",
			goerr.V(FieldNameKey, "customer_email"))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return goerr.Wrap(ErrInvalidEmail, "customer email is not a plain address",
			goerr.V(FieldValueKey, email))
	}
	x.CustomerEmail = email

	if err := validateMinLength("subject", x.Subject, minSubjectLength); err != nil {
		return err
	}
	if err := validateMinLength("description", x.Description, minDescriptionLength); err != nil {
		return err
	}

	x.Priority = x.Priority.Normalize()
	if !x.Priority.IsValid() {
		return goerr.Wrap(ErrInvalidPriority, "unknown ticket priority",
			goerr.V(FieldValueKey, x.Priority))
	}
	return nil
}

func validateMinLength(field, value string, minLength int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < minLength {
		return goerr.Wrap(ErrTooShort, "field value is too short",
			goerr.V(FieldNameKey, field),
			goerr.V(MinLengthKey, minLength),
		)
	}
	return nil
}
