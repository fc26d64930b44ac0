package model

import (
	"time"

	"github.com/secmon-lab/briareos/pkg/domain/types"
)

// Ticket is a customer support request
type Ticket struct {
	ID          int64
	CustomerID  int64
	Subject     string
	Description string
	Status      types.TicketStatus
	Priority    types.TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketWithCustomer is a ticket joined with the customer who raised it
type TicketWithCustomer struct {
	Ticket   *Ticket
	Customer *Customer
}
